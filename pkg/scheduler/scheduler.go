package scheduler

import (
	"sync"
	"time"
)

// ExpireFunc вызывается ровно один раз, когда дедлайн тикета наступил.
type ExpireFunc func(id string)

type entry struct {
	timer *time.Timer
	gen   uint64
}

// Scheduler отслеживает дедлайны тикетов и запускает истечение по таймауту.
// На каждый тикет заводится отдельный таймер; запись удаляется до вызова
// колбэка и независимо от его исхода — повторных срабатываний не бывает.
type Scheduler struct {
	mu      sync.Mutex
	entries map[string]entry
	gen     uint64
	expire  ExpireFunc
	stopped bool
}

func New(expire ExpireFunc) *Scheduler {
	return &Scheduler{
		entries: make(map[string]entry),
		expire:  expire,
	}
}

// Schedule регистрирует дедлайн тикета. Повторный вызов для того же id
// заменяет прежний таймер.
func (s *Scheduler) Schedule(id string, deadline time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.entries[id]; ok {
		prev.timer.Stop()
	}

	s.gen++
	gen := s.gen
	s.entries[id] = entry{
		timer: time.AfterFunc(time.Until(deadline), func() { s.fire(id, gen) }),
		gen:   gen,
	}
}

func (s *Scheduler) fire(id string, gen uint64) {
	s.mu.Lock()
	current, ok := s.entries[id]
	// Дедлайн могли отменить или заменить, пока сработавший таймер ждал
	// мьютекс — тогда это истечение уже не наше.
	if !ok || current.gen != gen || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.mu.Unlock()

	s.expire(id)
}

// Cancel снимает дедлайн тикета. Отмена отсутствующего дедлайна — no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok {
		e.timer.Stop()
		delete(s.entries, id)
	}
}

// Len возвращает количество отслеживаемых дедлайнов.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop отменяет все дедлайны; планировщик больше ничего не запустит.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
}
