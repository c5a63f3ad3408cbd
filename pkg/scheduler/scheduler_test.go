package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFired ожидает срабатывание с запасом по времени
func waitFired(t *testing.T, fired <-chan string, want string) {
	t.Helper()
	select {
	case id := <-fired:
		assert.Equal(t, want, id)
	case <-time.After(2 * time.Second):
		t.Fatalf("deadline for %q never fired", want)
	}
}

// assertSilent проверяет, что срабатываний не было
func assertSilent(t *testing.T, fired <-chan string, within time.Duration) {
	t.Helper()
	select {
	case id := <-fired:
		t.Fatalf("unexpected fire for %q", id)
	case <-time.After(within):
	}
}

// TestSchedulerFiresOnce: дедлайн срабатывает ровно один раз
func TestSchedulerFiresOnce(t *testing.T) {
	fired := make(chan string, 4)
	s := New(func(id string) { fired <- id })
	defer s.Stop()

	s.Schedule("ticket-1", time.Now().Add(20*time.Millisecond))
	assert.Equal(t, 1, s.Len())

	waitFired(t, fired, "ticket-1")
	assert.Equal(t, 0, s.Len())
	assertSilent(t, fired, 100*time.Millisecond)
}

// TestSchedulerCancel: отмененный дедлайн не срабатывает
func TestSchedulerCancel(t *testing.T) {
	fired := make(chan string, 4)
	s := New(func(id string) { fired <- id })
	defer s.Stop()

	s.Schedule("ticket-1", time.Now().Add(30*time.Millisecond))
	s.Cancel("ticket-1")
	assert.Equal(t, 0, s.Len())

	assertSilent(t, fired, 100*time.Millisecond)

	// Отмена отсутствующего дедлайна — no-op
	s.Cancel("ticket-1")
	s.Cancel("никогда не было")
}

// TestSchedulerReschedule: повторный Schedule заменяет прежний таймер,
// срабатывание — одно
func TestSchedulerReschedule(t *testing.T) {
	fired := make(chan string, 4)
	s := New(func(id string) { fired <- id })
	defer s.Stop()

	s.Schedule("ticket-1", time.Now().Add(time.Hour))
	s.Schedule("ticket-1", time.Now().Add(20*time.Millisecond))
	assert.Equal(t, 1, s.Len())

	waitFired(t, fired, "ticket-1")
	assertSilent(t, fired, 100*time.Millisecond)
}

// TestSchedulerStop: после Stop ничего не срабатывает и не регистрируется
func TestSchedulerStop(t *testing.T) {
	fired := make(chan string, 4)
	s := New(func(id string) { fired <- id })

	s.Schedule("ticket-1", time.Now().Add(30*time.Millisecond))
	s.Schedule("ticket-2", time.Now().Add(30*time.Millisecond))
	s.Stop()
	assert.Equal(t, 0, s.Len())

	s.Schedule("ticket-3", time.Now().Add(10*time.Millisecond))
	assert.Equal(t, 0, s.Len())

	assertSilent(t, fired, 100*time.Millisecond)
}

// TestSchedulerConcurrent: параллельные Schedule/Cancel не теряют и не
// дублируют срабатывания
func TestSchedulerConcurrent(t *testing.T) {
	var mu sync.Mutex
	firedCount := make(map[string]int)
	s := New(func(id string) {
		mu.Lock()
		firedCount[id]++
		mu.Unlock()
	})
	defer s.Stop()

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				s.Schedule(id, time.Now().Add(50*time.Millisecond))
			}
		}(id)
	}
	wg.Wait()

	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, id := range ids {
		assert.Equalf(t, 1, firedCount[id], "id %s fired %d times", id, firedCount[id])
	}
}
