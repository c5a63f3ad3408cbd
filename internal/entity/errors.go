package entity

import "errors"

var (
	// Slot errors
	ErrInvalidSlotConfig = errors.New("invalid slot configuration")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrSeatOccupied      = errors.New("seat is already occupied")
	ErrAlreadySeated     = errors.New("occupant already holds another seat")

	// Ticket errors
	ErrAlreadyInSeat    = errors.New("occupant already holds this seat")
	ErrSeatRaceLost     = errors.New("seat was taken by someone else")
	ErrNotSeated        = errors.New("occupant holds no seat in this ticket")
	ErrCreatorMustClose = errors.New("creator cannot leave the only occupied seat")
	ErrNotCreator       = errors.New("only the ticket creator may perform this action")
	ErrNoteTooLong      = errors.New("note exceeds maximum length")
	ErrTicketNotFound   = errors.New("ticket not found")

	// Offer errors
	ErrUnknownMap    = errors.New("unknown arbitration map")
	ErrUnknownAction = errors.New("unknown ticket action")

	// Configuration errors
	ErrChannelNotConfigured = errors.New("lfg channel is not configured")
)
