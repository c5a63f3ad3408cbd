package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/internal/presenter"
	"github.com/ds124wfegd/lfg-bot/monitoring"
	"github.com/ds124wfegd/lfg-bot/pkg/scheduler"
)

// ticketService — реестр активных тикетов: у каждого создателя не больше
// одного открытого тикета. Карты реестра защищены собственным RWMutex;
// мьютекс тикета и мьютекс реестра никогда не удерживаются одновременно,
// реестр правится короткими вставками/удалениями уже после перехода
// состояния тикета.
type ticketService struct {
	mu        sync.RWMutex
	byID      map[entity.MessageID]*entity.Ticket
	byCreator map[entity.UserID]entity.MessageID

	platform Platform
	settings SettingsService
	events   EventPublisher
	sched    *scheduler.Scheduler
}

// NewTicketService создает реестр тикетов с собственным планировщиком
// дедлайнов. platform и events могут быть nil: переходы состояний работают,
// исходящие уведомления отключены (полезно локально и в тестах).
func NewTicketService(platform Platform, settings SettingsService, events EventPublisher) TicketService {
	s := &ticketService{
		byID:      make(map[entity.MessageID]*entity.Ticket),
		byCreator: make(map[entity.UserID]entity.MessageID),
		platform:  platform,
		settings:  settings,
		events:    events,
	}
	s.sched = scheduler.New(func(id string) { s.Expire(id) })
	return s
}

func (s *ticketService) OpenTicket(ctx context.Context, req *OpenTicketRequest) (*entity.Snapshot, error) {
	cfg := s.settings.Get()
	if cfg.LFGChannelID == "" {
		return nil, entity.ErrChannelNotConfigured
	}

	// Принудительно закрываем предыдущий активный тикет создателя
	if prev := s.activeTicket(req.Creator); prev != nil {
		s.forceClose(ctx, prev)
	}

	// Объявление-заглушка: id сообщения становится id тикета
	id := entity.MessageID(uuid.NewString())
	if s.platform != nil {
		msgID, err := s.platform.CreateMessage(ctx, cfg.LFGChannelID, presenter.LoadingBoard(req.Offer))
		if err != nil {
			return nil, fmt.Errorf("failed to create announcement: %w", err)
		}
		id = entity.MessageID(msgID)
	}

	t, err := entity.NewTicket(id, req.Creator, req.Offer, req.InitialSeat, time.Now())
	if err == nil && req.Note != "" {
		_, err = t.SetNote(req.Creator, req.Note)
	}
	if err != nil {
		s.deleteAnnouncement(ctx, cfg.LFGChannelID, id)
		return nil, err
	}

	// Если за время создания объявления у создателя успел появиться другой
	// тикет, реестр вытесняет его — инвариант "один тикет на создателя"
	if displaced := s.register(t); displaced != nil {
		s.forceClose(ctx, displaced)
	}
	s.sched.Schedule(string(id), t.ExpiresAt())

	snap := t.Snapshot()
	monitoring.TicketEvent(string(entity.EventTicketCreated), string(req.Offer.Kind))
	s.publish(&entity.TicketUpdate{Event: entity.EventTicketCreated, Snapshot: snap})

	if s.platform != nil {
		msg := presenter.RosterBoard(snap)
		msg.Content = presenter.AnnouncementContent(snap, cfg.RoleMention(req.Offer))
		if err := s.platform.EditMessage(ctx, cfg.LFGChannelID, string(id), msg); err != nil {
			monitoring.NotifyFailed()
			logrus.Warnf("Failed to render announcement %s: %v", id, err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"ticket_id": id,
		"creator":   req.Creator,
		"offer":     req.Offer.Kind,
	}).Info("Ticket opened")

	return &snap, nil
}

func (s *ticketService) HandleAction(ctx context.Context, req *ActionRequest) (*entity.TicketUpdate, error) {
	switch req.Action {
	case ActionClaim:
		return s.Claim(ctx, req.TicketID, req.Actor, req.Seat)
	case ActionVacate:
		return s.Vacate(ctx, req.TicketID, req.Actor)
	case ActionClose:
		return s.Close(ctx, req.TicketID, req.Actor)
	case ActionNote:
		return s.SetNote(ctx, req.TicketID, req.Actor, req.Note)
	default:
		return nil, entity.ErrUnknownAction
	}
}

func (s *ticketService) Claim(ctx context.Context, id entity.MessageID, actor entity.UserID, seat string) (*entity.TicketUpdate, error) {
	t, err := s.ticket(id)
	if err != nil {
		monitoring.ClaimProcessed("not_found")
		return nil, err
	}

	upd, err := t.Claim(actor, seat)
	if err != nil {
		monitoring.ClaimProcessed(claimOutcome(err))
		return nil, err
	}

	if upd.Event == entity.EventTicketCompleted {
		s.unregister(t)
		s.sched.Cancel(string(id))
		monitoring.ClaimProcessed("completed")
		monitoring.TicketEvent(string(entity.EventTicketCompleted), string(upd.Snapshot.Offer.Kind))
		s.publish(upd)
		s.announceCompletion(ctx, upd.Snapshot)

		logrus.WithFields(logrus.Fields{
			"ticket_id": id,
			"actor":     actor,
		}).Info("Ticket completed")
		return upd, nil
	}

	monitoring.ClaimProcessed("ok")
	s.publish(upd)
	s.refreshAnnouncement(ctx, upd.Snapshot)
	return upd, nil
}

func (s *ticketService) Vacate(ctx context.Context, id entity.MessageID, actor entity.UserID) (*entity.TicketUpdate, error) {
	t, err := s.ticket(id)
	if err != nil {
		return nil, err
	}

	upd, err := t.Vacate(actor)
	if err != nil {
		return nil, err
	}

	s.publish(upd)
	s.refreshAnnouncement(ctx, upd.Snapshot)
	return upd, nil
}

func (s *ticketService) Close(ctx context.Context, id entity.MessageID, actor entity.UserID) (*entity.TicketUpdate, error) {
	t, err := s.ticket(id)
	if err != nil {
		return nil, err
	}

	upd, err := t.Close(actor)
	if err != nil {
		return nil, err
	}

	s.unregister(t)
	s.sched.Cancel(string(id))
	monitoring.TicketEvent(string(entity.EventTicketClosed), string(upd.Snapshot.Offer.Kind))
	s.publish(upd)
	s.deleteAnnouncement(ctx, s.settings.Get().LFGChannelID, id)

	logrus.WithFields(logrus.Fields{
		"ticket_id": id,
		"actor":     actor,
	}).Info("Ticket closed by creator")
	return upd, nil
}

func (s *ticketService) SetNote(ctx context.Context, id entity.MessageID, actor entity.UserID, note string) (*entity.TicketUpdate, error) {
	t, err := s.ticket(id)
	if err != nil {
		return nil, err
	}

	upd, err := t.SetNote(actor, note)
	if err != nil {
		return nil, err
	}

	s.refreshAnnouncement(ctx, upd.Snapshot)
	return upd, nil
}

// Expire вызывается планировщиком по дедлайну тикета. Если тикет уже
// закрыт или заполнен, срабатывание — no-op: повторов не бывает.
func (s *ticketService) Expire(id string) {
	s.mu.RLock()
	t, ok := s.byID[entity.MessageID(id)]
	s.mu.RUnlock()
	if !ok {
		return
	}

	upd, err := t.Expire()
	if err != nil {
		// Тикет успел покинуть open до срабатывания таймера
		return
	}

	s.unregister(t)
	monitoring.TicketEvent(string(entity.EventTicketExpired), string(upd.Snapshot.Offer.Kind))
	s.publish(upd)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.deleteAnnouncement(ctx, s.settings.Get().LFGChannelID, t.ID())

	logrus.WithField("ticket_id", id).Info("Ticket expired")
}

func (s *ticketService) GetTicket(id entity.MessageID) (*entity.Snapshot, error) {
	t, err := s.ticket(id)
	if err != nil {
		return nil, err
	}
	snap := t.Snapshot()
	return &snap, nil
}

func (s *ticketService) ActiveTickets() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *ticketService) AnnounceNavigation(ctx context.Context) error {
	cfg := s.settings.Get()
	if cfg.NavChannelID == "" {
		return entity.ErrChannelNotConfigured
	}
	if s.platform == nil {
		return nil
	}
	if _, err := s.platform.CreateMessage(ctx, cfg.NavChannelID, presenter.NavigationBoard()); err != nil {
		return fmt.Errorf("failed to publish navigation board: %w", err)
	}
	return nil
}

func (s *ticketService) Stop() {
	s.sched.Stop()
}

// --- внутренняя кухня реестра ---

func (s *ticketService) ticket(id entity.MessageID) (*entity.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok {
		return nil, entity.ErrTicketNotFound
	}
	return t, nil
}

func (s *ticketService) activeTicket(creator entity.UserID) *entity.Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byCreator[creator]; ok {
		return s.byID[id]
	}
	return nil
}

// register добавляет тикет и возвращает вытесненный тикет того же
// создателя, если он появился конкурентно.
func (s *ticketService) register(t *entity.Ticket) *entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	var displaced *entity.Ticket
	if prevID, ok := s.byCreator[t.Creator()]; ok && prevID != t.ID() {
		displaced = s.byID[prevID]
	}
	s.byID[t.ID()] = t
	s.byCreator[t.Creator()] = t.ID()
	monitoring.SetActiveTickets(len(s.byID))
	return displaced
}

// unregister удаляет терминальный тикет из реестра; идемпотентен.
func (s *ticketService) unregister(t *entity.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, t.ID())
	if id, ok := s.byCreator[t.Creator()]; ok && id == t.ID() {
		delete(s.byCreator, t.Creator())
	}
	monitoring.SetActiveTickets(len(s.byID))
}

// forceClose закрывает тикет от имени его создателя (вытеснение при
// открытии нового). Ошибка означает, что тикет уже терминален.
func (s *ticketService) forceClose(ctx context.Context, t *entity.Ticket) {
	upd, err := t.Close(t.Creator())
	if err != nil {
		return
	}

	s.unregister(t)
	s.sched.Cancel(string(t.ID()))
	monitoring.TicketEvent(string(entity.EventTicketClosed), string(upd.Snapshot.Offer.Kind))
	s.publish(upd)
	s.deleteAnnouncement(ctx, s.settings.Get().LFGChannelID, t.ID())

	logrus.WithFields(logrus.Fields{
		"ticket_id": t.ID(),
		"creator":   t.Creator(),
	}).Info("Previous ticket force-closed")
}

// publish отправляет событие жизненного цикла во внешнюю очередь, если она
// настроена. Неудача публикации переход состояния не затрагивает.
func (s *ticketService) publish(upd *entity.TicketUpdate) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.Publish(ctx, entity.NewLifecycleEvent(upd, time.Now())); err != nil {
		logrus.Errorf("Failed to publish lifecycle event %s: %v", upd.Event, err)
	}
}

// refreshAnnouncement перерисовывает объявление после изменения состава.
func (s *ticketService) refreshAnnouncement(ctx context.Context, snap entity.Snapshot) {
	if s.platform == nil {
		return
	}
	cfg := s.settings.Get()
	msg := presenter.RosterBoard(snap)
	msg.Content = presenter.AnnouncementContent(snap, cfg.RoleMention(snap.Offer))
	if err := s.platform.EditMessage(ctx, cfg.LFGChannelID, string(snap.ID), msg); err != nil {
		monitoring.NotifyFailed()
		logrus.Warnf("Failed to refresh announcement %s: %v", snap.ID, err)
	}
}

// announceCompletion публикует финальный борд и удаляет объявление сбора.
func (s *ticketService) announceCompletion(ctx context.Context, snap entity.Snapshot) {
	if s.platform == nil {
		return
	}
	cfg := s.settings.Get()
	if _, err := s.platform.CreateMessage(ctx, cfg.LFGChannelID, presenter.SummaryBoard(snap)); err != nil {
		monitoring.NotifyFailed()
		logrus.Warnf("Failed to announce completion of %s: %v", snap.ID, err)
	}
	s.deleteAnnouncement(ctx, cfg.LFGChannelID, snap.ID)
}

func (s *ticketService) deleteAnnouncement(ctx context.Context, channelID string, id entity.MessageID) {
	if s.platform == nil || channelID == "" {
		return
	}
	if err := s.platform.DeleteMessage(ctx, channelID, string(id)); err != nil {
		monitoring.NotifyFailed()
		logrus.Warnf("Failed to delete announcement %s: %v", id, err)
	}
}

func claimOutcome(err error) string {
	switch {
	case errors.Is(err, entity.ErrAlreadyInSeat):
		return "already_in_seat"
	case errors.Is(err, entity.ErrSeatRaceLost):
		return "race_lost"
	case errors.Is(err, entity.ErrSeatNotFound):
		return "seat_not_found"
	case errors.Is(err, entity.ErrTicketNotFound):
		return "not_found"
	default:
		return "rejected"
	}
}
