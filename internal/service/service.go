package service

import (
	"context"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/pkg/discord"
)

// Action — запрошенное пользователем действие над существующим тикетом.
type Action string

const (
	ActionClaim  Action = "claim"
	ActionVacate Action = "leave"
	ActionClose  Action = "close"
	ActionNote   Action = "note"
)

// OpenTicketRequest — запрос на создание тикета.
type OpenTicketRequest struct {
	Creator     entity.UserID
	Offer       entity.Offer
	InitialSeat string
	Note        string
}

// ActionRequest — единая точка диспетчеризации интеракций: вместо замыкания
// на каждую кнопку платформа присылает {тикет, актор, действие, слот}.
type ActionRequest struct {
	RequestID string
	TicketID  entity.MessageID
	Actor     entity.UserID
	Action    Action
	Seat      string
	Note      string
}

// TicketService определяет интерфейс реестра тикетов и операций над ними.
type TicketService interface {
	// Основные операции
	OpenTicket(ctx context.Context, req *OpenTicketRequest) (*entity.Snapshot, error)
	HandleAction(ctx context.Context, req *ActionRequest) (*entity.TicketUpdate, error)
	Claim(ctx context.Context, id entity.MessageID, actor entity.UserID, seat string) (*entity.TicketUpdate, error)
	Vacate(ctx context.Context, id entity.MessageID, actor entity.UserID) (*entity.TicketUpdate, error)
	Close(ctx context.Context, id entity.MessageID, actor entity.UserID) (*entity.TicketUpdate, error)
	SetNote(ctx context.Context, id entity.MessageID, actor entity.UserID, note string) (*entity.TicketUpdate, error)

	// Чтение состояния
	GetTicket(id entity.MessageID) (*entity.Snapshot, error)
	ActiveTickets() int

	// Истечение по таймауту (колбэк планировщика)
	Expire(id string)

	// Навигационное окно
	AnnounceNavigation(ctx context.Context) error

	Stop()
}

// SettingsService определяет интерфейс настроек каналов и ролей.
type SettingsService interface {
	Get() entity.Settings
	SetLFGChannel(id string) error
	SetNavChannel(id string) error
	SetArbitrationRole(id string) error
	SetCascadeRole(id string) error
	SetMapRole(mapName, roleID string) error
}

// Platform — внешний коллаборатор чат-платформы. Ядро тикетов сетевой I/O
// не выполняет: переход состояния завершается до любого исходящего вызова,
// а неудача вызова переход не откатывает.
type Platform interface {
	CreateMessage(ctx context.Context, channelID string, msg *discord.Message) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg *discord.Message) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// EventPublisher — необязательная внешняя очередь событий жизненного цикла.
type EventPublisher interface {
	Publish(ctx context.Context, message interface{}) error
}
