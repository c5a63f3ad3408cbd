package entity

import "time"

// LifecycleEvent — разовое событие жизненного цикла тикета, публикуемое во
// внешнюю очередь (если она настроена) после завершения перехода состояния.
type LifecycleEvent struct {
	Event    EventKind   `json:"event"`
	TicketID MessageID   `json:"ticket_id"`
	Creator  UserID      `json:"creator"`
	Offer    Offer       `json:"offer"`
	Seats    []Seat      `json:"seats"`
	Note     string      `json:"note,omitempty"`
	State    TicketState `json:"state"`
	At       time.Time   `json:"at"`
}

// NewLifecycleEvent собирает событие из результата операции.
func NewLifecycleEvent(upd *TicketUpdate, at time.Time) *LifecycleEvent {
	return &LifecycleEvent{
		Event:    upd.Event,
		TicketID: upd.Snapshot.ID,
		Creator:  upd.Snapshot.Creator,
		Offer:    upd.Snapshot.Offer,
		Seats:    upd.Snapshot.Seats,
		Note:     upd.Snapshot.Note,
		State:    upd.Snapshot.State,
		At:       at,
	}
}
