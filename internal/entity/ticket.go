package entity

import (
	"sync"
	"time"
	"unicode/utf8"
)

// TicketTimeout — время жизни тикета с момента создания.
const TicketTimeout = 3600 * time.Second

// NoteMaxLength — ограничение длины комментария создателя (в рунах).
const NoteMaxLength = 100

type TicketState string

const (
	StateOpen TicketState = "open"
	// StateFull — переходное состояние "все слоты заняты, закрываемся".
	// Снаружи не наблюдается: заполнение и закрытие происходят в одной
	// критической секции.
	StateFull    TicketState = "full"
	StateClosed  TicketState = "closed"
	StateExpired TicketState = "expired"
)

// UserID — идентификатор пользователя чат-платформы.
type UserID string

// MessageID — идентификатор сообщения-объявления; он же идентификатор тикета.
type MessageID string

type EventKind string

const (
	EventTicketCreated   EventKind = "ticket_created"
	EventRosterUpdated   EventKind = "roster_updated"
	EventTicketCompleted EventKind = "ticket_completed"
	EventTicketClosed    EventKind = "ticket_closed"
	EventTicketExpired   EventKind = "ticket_expired"
)

// Snapshot — согласованный срез состояния тикета для рендеринга и событий.
type Snapshot struct {
	ID        MessageID   `json:"id"`
	Creator   UserID      `json:"creator"`
	Offer     Offer       `json:"offer"`
	Seats     []Seat      `json:"seats"`
	Note      string      `json:"note,omitempty"`
	Full      bool        `json:"full"`
	State     TicketState `json:"state"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// TicketUpdate — результат успешной операции над тикетом: какое событие
// произошло и состояние тикета сразу после перехода.
type TicketUpdate struct {
	Event    EventKind
	Snapshot Snapshot
	// LeftSeat — слот, освобожденный при перемещении между слотами.
	LeftSeat string
}

// Ticket — один сбор пати с фиксированной раскладкой слотов.
// Все изменяющие операции сериализуются собственным мьютексом тикета;
// операции над разными тикетами идут параллельно.
type Ticket struct {
	mu sync.Mutex

	id        MessageID
	creator   UserID
	offer     Offer
	slots     *SlotSet
	note      string
	createdAt time.Time
	expiresAt time.Time
	state     TicketState
}

// NewTicket создает открытый тикет, создатель сразу занимает initialSeat.
func NewTicket(id MessageID, creator UserID, offer Offer, initialSeat string, now time.Time) (*Ticket, error) {
	slots, err := NewSlotSet(offer.SlotNames())
	if err != nil {
		return nil, err
	}
	if err := slots.Occupy(initialSeat, Occupant(creator)); err != nil {
		return nil, err
	}

	return &Ticket{
		id:        id,
		creator:   creator,
		offer:     offer,
		slots:     slots,
		createdAt: now,
		expiresAt: now.Add(TicketTimeout),
		state:     StateOpen,
	}, nil
}

func (t *Ticket) ID() MessageID        { return t.id }
func (t *Ticket) Creator() UserID      { return t.creator }
func (t *Ticket) ExpiresAt() time.Time { return t.expiresAt }
func (t *Ticket) CreatedAt() time.Time { return t.createdAt }

func (t *Ticket) State() TicketState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Ticket) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Ticket) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        t.id,
		Creator:   t.creator,
		Offer:     t.offer,
		Seats:     t.slots.Snapshot(),
		Note:      t.note,
		Full:      t.slots.IsFull(),
		State:     t.state,
		CreatedAt: t.createdAt,
		ExpiresAt: t.expiresAt,
	}
}

// Claim сажает игрока в слот. Если игрок уже занимает другой слот этого
// тикета, прежний слот освобождается в той же операции (перемещение).
// Занятие последнего свободного слота закрывает тикет и возвращает событие
// EventTicketCompleted с финальным составом.
func (t *Ticket) Claim(actor UserID, seat string) (*TicketUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil, ErrTicketNotFound
	}

	occupant, err := t.slots.OccupantOf(seat)
	if err != nil {
		return nil, err
	}
	if occupant == Occupant(actor) {
		return nil, ErrAlreadyInSeat
	}
	if !occupant.IsVacant() {
		return nil, ErrSeatRaceLost
	}

	leftSeat := ""
	if current, seated := t.slots.SeatOf(Occupant(actor)); seated {
		if err := t.slots.Vacate(current); err != nil {
			return nil, err
		}
		leftSeat = current
	}
	if err := t.slots.Occupy(seat, Occupant(actor)); err != nil {
		return nil, err
	}

	if t.slots.IsFull() {
		// Переход open → full → closed целиком внутри критической секции:
		// снаружи тикет из открытого сразу становится закрытым.
		t.state = StateFull
		t.state = StateClosed
		return &TicketUpdate{
			Event:    EventTicketCompleted,
			Snapshot: t.snapshotLocked(),
			LeftSeat: leftSeat,
		}, nil
	}

	return &TicketUpdate{
		Event:    EventRosterUpdated,
		Snapshot: t.snapshotLocked(),
		LeftSeat: leftSeat,
	}, nil
}

// Vacate освобождает слот игрока. Создатель, оставшийся единственным в
// тикете, покинуть слот не может — только закрыть тикет.
func (t *Ticket) Vacate(actor UserID) (*TicketUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil, ErrTicketNotFound
	}

	seat, seated := t.slots.SeatOf(Occupant(actor))
	if !seated {
		return nil, ErrNotSeated
	}
	if actor == t.creator && len(t.slots.Occupants()) == 1 {
		return nil, ErrCreatorMustClose
	}
	if err := t.slots.Vacate(seat); err != nil {
		return nil, err
	}

	return &TicketUpdate{
		Event:    EventRosterUpdated,
		Snapshot: t.snapshotLocked(),
		LeftSeat: seat,
	}, nil
}

// Close закрывает тикет добровольно. Доступно только создателю; событие
// EventTicketCompleted при этом не возникает.
func (t *Ticket) Close(actor UserID) (*TicketUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil, ErrTicketNotFound
	}
	if actor != t.creator {
		return nil, ErrNotCreator
	}

	t.state = StateClosed
	return &TicketUpdate{Event: EventTicketClosed, Snapshot: t.snapshotLocked()}, nil
}

// Expire переводит тикет в expired по таймауту. Если тикет уже покинул
// состояние open, операция — no-op: таймер конкурирует за тот же мьютекс,
// что и остальные переходы, и проигравший просто видит терминальное состояние.
func (t *Ticket) Expire() (*TicketUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil, ErrTicketNotFound
	}

	t.state = StateExpired
	return &TicketUpdate{Event: EventTicketExpired, Snapshot: t.snapshotLocked()}, nil
}

// SetNote устанавливает комментарий создателя. Пустая строка удаляет его.
func (t *Ticket) SetNote(actor UserID, text string) (*TicketUpdate, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateOpen {
		return nil, ErrTicketNotFound
	}
	if actor != t.creator {
		return nil, ErrNotCreator
	}
	if utf8.RuneCountInString(text) > NoteMaxLength {
		return nil, ErrNoteTooLong
	}

	t.note = text
	return &TicketUpdate{Event: EventRosterUpdated, Snapshot: t.snapshotLocked()}, nil
}
