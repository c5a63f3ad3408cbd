package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/pkg/discord"
)

// fakePlatform записывает исходящие вызовы чат-платформы
type fakePlatform struct {
	mu      sync.Mutex
	nextID  int
	created []string
	edited  []string
	deleted []string
}

func (f *fakePlatform) CreateMessage(_ context.Context, _ string, _ *discord.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("msg-%d", f.nextID)
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakePlatform) EditMessage(_ context.Context, _ string, messageID string, _ *discord.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, messageID)
	return nil
}

func (f *fakePlatform) DeleteMessage(_ context.Context, _ string, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakePlatform) deletedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

// fakePublisher собирает опубликованные события жизненного цикла
type fakePublisher struct {
	mu     sync.Mutex
	events []*entity.LifecycleEvent
}

func (f *fakePublisher) Publish(_ context.Context, message interface{}) error {
	ev, ok := message.(*entity.LifecycleEvent)
	if !ok {
		return errors.New("unexpected message type")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) byKind(kind entity.EventKind) []*entity.LifecycleEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.LifecycleEvent
	for _, ev := range f.events {
		if ev.Event == kind {
			out = append(out, ev)
		}
	}
	return out
}

// terminalEvents возвращает терминальные события тикета (closed/expired/completed)
func (f *fakePublisher) terminalEvents(id entity.MessageID) []*entity.LifecycleEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.LifecycleEvent
	for _, ev := range f.events {
		if ev.TicketID != id {
			continue
		}
		switch ev.Event {
		case entity.EventTicketCompleted, entity.EventTicketClosed, entity.EventTicketExpired:
			out = append(out, ev)
		}
	}
	return out
}

func newTestSettings(t *testing.T) SettingsService {
	t.Helper()
	settings, err := NewSettingsService(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	require.NoError(t, settings.SetLFGChannel("lfg-channel"))
	return settings
}

func newTestService(t *testing.T) (TicketService, *fakePlatform, *fakePublisher) {
	t.Helper()
	platform := &fakePlatform{}
	publisher := &fakePublisher{}
	svc := NewTicketService(platform, newTestSettings(t), publisher)
	t.Cleanup(svc.Stop)
	return svc, platform, publisher
}

func openCascade(t *testing.T, svc TicketService, creator entity.UserID) *entity.Snapshot {
	t.Helper()
	snap, err := svc.OpenTicket(context.Background(), &OpenTicketRequest{
		Creator:     creator,
		Offer:       entity.NewCascadeOffer(),
		InitialSeat: entity.CascadeSlots[0],
	})
	require.NoError(t, err)
	return snap
}

// TestOpenTicketRequiresChannel: без настроенного канала сбора тикет не создается
func TestOpenTicketRequiresChannel(t *testing.T) {
	settings, err := NewSettingsService(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	svc := NewTicketService(&fakePlatform{}, settings, nil)
	defer svc.Stop()

	_, err = svc.OpenTicket(context.Background(), &OpenTicketRequest{
		Creator:     "creator",
		Offer:       entity.NewCascadeOffer(),
		InitialSeat: entity.CascadeSlots[0],
	})
	assert.ErrorIs(t, err, entity.ErrChannelNotConfigured)
	assert.Equal(t, 0, svc.ActiveTickets())
}

// TestOpenTicket проверяет создание тикета и публикацию объявления
func TestOpenTicket(t *testing.T) {
	svc, platform, publisher := newTestService(t)

	snap := openCascade(t, svc, "creator")
	assert.Equal(t, entity.MessageID("msg-1"), snap.ID)
	assert.Equal(t, entity.StateOpen, snap.State)
	assert.Equal(t, 1, svc.ActiveTickets())

	// Заглушка создана и перерисована в полный борд
	assert.Equal(t, []string{"msg-1"}, platform.created)
	assert.Contains(t, platform.edited, "msg-1")
	assert.Len(t, publisher.byKind(entity.EventTicketCreated), 1)

	got, err := svc.GetTicket(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.Occupant("creator"), got.Seats[0].Occupant)
}

// TestOpenTicketDisplacesPrevious: у создателя не больше одного активного тикета
func TestOpenTicketDisplacesPrevious(t *testing.T) {
	svc, platform, publisher := newTestService(t)

	first := openCascade(t, svc, "creator")
	second := openCascade(t, svc, "creator")

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 1, svc.ActiveTickets())

	// Прежний тикет принудительно закрыт: событие, удаление объявления
	_, err := svc.GetTicket(first.ID)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)
	require.Len(t, publisher.byKind(entity.EventTicketClosed), 1)
	assert.Equal(t, first.ID, publisher.byKind(entity.EventTicketClosed)[0].TicketID)
	assert.Contains(t, platform.deletedIDs(), string(first.ID))

	// Чужой тикет вытеснение не затрагивает
	openCascade(t, svc, "other")
	assert.Equal(t, 2, svc.ActiveTickets())
}

// TestClaimCompletesTicket: заполнение состава закрывает тикет и публикует итог
func TestClaimCompletesTicket(t *testing.T) {
	svc, platform, publisher := newTestService(t)
	ctx := context.Background()

	snap := openCascade(t, svc, "creator")
	for i, user := range []entity.UserID{"user2", "user3"} {
		_, err := svc.Claim(ctx, snap.ID, user, entity.CascadeSlots[i+1])
		require.NoError(t, err)
	}

	upd, err := svc.Claim(ctx, snap.ID, "user4", entity.CascadeSlots[3])
	require.NoError(t, err)
	assert.Equal(t, entity.EventTicketCompleted, upd.Event)

	assert.Equal(t, 0, svc.ActiveTickets())
	_, err = svc.GetTicket(snap.ID)
	assert.ErrorIs(t, err, entity.ErrTicketNotFound)

	// Итоговый борд создан, объявление сбора удалено
	assert.Len(t, platform.created, 2)
	assert.Contains(t, platform.deletedIDs(), string(snap.ID))
	require.Len(t, publisher.terminalEvents(snap.ID), 1)
	assert.Equal(t, entity.EventTicketCompleted, publisher.terminalEvents(snap.ID)[0].Event)
}

// TestHandleActionDispatch проверяет единую точку диспетчеризации интеракций
func TestHandleActionDispatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	snap := openCascade(t, svc, "creator")

	tests := []struct {
		name    string
		req     *ActionRequest
		event   entity.EventKind
		wantErr error
	}{
		{
			name:  "claim seats the actor",
			req:   &ActionRequest{TicketID: snap.ID, Actor: "user2", Action: ActionClaim, Seat: "Слот 2"},
			event: entity.EventRosterUpdated,
		},
		{
			name:    "note by non-creator rejected",
			req:     &ActionRequest{TicketID: snap.ID, Actor: "user2", Action: ActionNote, Note: "берем быстро"},
			wantErr: entity.ErrNotCreator,
		},
		{
			name:  "note by creator",
			req:   &ActionRequest{TicketID: snap.ID, Actor: "creator", Action: ActionNote, Note: "берем быстро"},
			event: entity.EventRosterUpdated,
		},
		{
			name:  "leave vacates the seat",
			req:   &ActionRequest{TicketID: snap.ID, Actor: "user2", Action: ActionVacate},
			event: entity.EventRosterUpdated,
		},
		{
			name:    "close by non-creator rejected",
			req:     &ActionRequest{TicketID: snap.ID, Actor: "user2", Action: ActionClose},
			wantErr: entity.ErrNotCreator,
		},
		{
			name:    "unknown action",
			req:     &ActionRequest{TicketID: snap.ID, Actor: "creator", Action: "whatever"},
			wantErr: entity.ErrUnknownAction,
		},
		{
			name:  "close by creator",
			req:   &ActionRequest{TicketID: snap.ID, Actor: "creator", Action: ActionClose},
			event: entity.EventTicketClosed,
		},
		{
			name:    "action on closed ticket",
			req:     &ActionRequest{TicketID: snap.ID, Actor: "user2", Action: ActionClaim, Seat: "Слот 2"},
			wantErr: entity.ErrTicketNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd, err := svc.HandleAction(ctx, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.event, upd.Event)
		})
	}
}

// TestVacateCreatorAlone: создатель-одиночка не может покинуть слот
func TestVacateCreatorAlone(t *testing.T) {
	svc, _, _ := newTestService(t)
	snap := openCascade(t, svc, "creator")

	_, err := svc.Vacate(context.Background(), snap.ID, "creator")
	assert.ErrorIs(t, err, entity.ErrCreatorMustClose)
	assert.Equal(t, 1, svc.ActiveTickets())
}

// TestCloseTicket: закрытие создателем убирает тикет и объявление
func TestCloseTicket(t *testing.T) {
	svc, platform, publisher := newTestService(t)
	snap := openCascade(t, svc, "creator")

	upd, err := svc.Close(context.Background(), snap.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, entity.EventTicketClosed, upd.Event)

	assert.Equal(t, 0, svc.ActiveTickets())
	assert.Contains(t, platform.deletedIDs(), string(snap.ID))
	assert.Len(t, publisher.terminalEvents(snap.ID), 1)

	// Создатель может открыть новый тикет сразу после закрытия
	openCascade(t, svc, "creator")
	assert.Equal(t, 1, svc.ActiveTickets())
}

// TestExpireTicket: истечение убирает тикет ровно один раз
func TestExpireTicket(t *testing.T) {
	svc, platform, publisher := newTestService(t)
	snap := openCascade(t, svc, "creator")

	svc.Expire(string(snap.ID))
	assert.Equal(t, 0, svc.ActiveTickets())
	assert.Contains(t, platform.deletedIDs(), string(snap.ID))

	// Повторное срабатывание — no-op
	svc.Expire(string(snap.ID))
	events := publisher.terminalEvents(snap.ID)
	require.Len(t, events, 1)
	assert.Equal(t, entity.EventTicketExpired, events[0].Event)
}

// TestExpireRacesCompletion: истечение и заполнение последнего слота
// конкурируют — терминальное событие ровно одно
func TestExpireRacesCompletion(t *testing.T) {
	svc, _, publisher := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		snap := openCascade(t, svc, entity.UserID(fmt.Sprintf("creator-%d", i)))
		for j, user := range []entity.UserID{"user2", "user3"} {
			_, err := svc.Claim(ctx, snap.ID, user, entity.CascadeSlots[j+1])
			require.NoError(t, err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			svc.Expire(string(snap.ID))
		}()
		go func() {
			defer wg.Done()
			svc.Claim(ctx, snap.ID, "user4", entity.CascadeSlots[3]) //nolint:errcheck
		}()
		wg.Wait()

		events := publisher.terminalEvents(snap.ID)
		require.Lenf(t, events, 1, "ticket %s got %d terminal events", snap.ID, len(events))
		assert.Contains(t,
			[]entity.EventKind{entity.EventTicketCompleted, entity.EventTicketExpired},
			events[0].Event)
		assert.Equal(t, 0, svc.ActiveTickets())
	}
}

// TestAnnounceNavigation проверяет публикацию навигационного окна
func TestAnnounceNavigation(t *testing.T) {
	platform := &fakePlatform{}
	settings := newTestSettings(t)
	svc := NewTicketService(platform, settings, nil)
	defer svc.Stop()

	// Канал навигации не настроен
	err := svc.AnnounceNavigation(context.Background())
	assert.ErrorIs(t, err, entity.ErrChannelNotConfigured)

	require.NoError(t, settings.SetNavChannel("nav-channel"))
	require.NoError(t, svc.AnnounceNavigation(context.Background()))
	assert.Len(t, platform.created, 1)
}

// TestServiceWithoutPlatform: без чат-платформы переходы состояний работают
func TestServiceWithoutPlatform(t *testing.T) {
	svc := NewTicketService(nil, newTestSettings(t), nil)
	defer svc.Stop()
	ctx := context.Background()

	snap, err := svc.OpenTicket(ctx, &OpenTicketRequest{
		Creator:     "creator",
		Offer:       entity.NewCascadeOffer(),
		InitialSeat: entity.CascadeSlots[0],
		Note:        "собираемся в 20:00",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "собираемся в 20:00", snap.Note)

	_, err = svc.Claim(ctx, snap.ID, "user2", "Слот 2")
	require.NoError(t, err)
	_, err = svc.Close(ctx, snap.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, 0, svc.ActiveTickets())
}
