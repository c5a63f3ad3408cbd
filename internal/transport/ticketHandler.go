package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/internal/service"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

// SuccessResponse представляет успешный ответ
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CreateTicketRequest представляет запрос на создание тикета
type CreateTicketRequest struct {
	CreatorID string `json:"creator_id" binding:"required"`
	Offer     string `json:"offer" binding:"required,oneof=arbitration cascade"`
	Tier      string `json:"tier"`
	Map       string `json:"map"`
	Seat      string `json:"seat"`
	Note      string `json:"note"`
}

// ActionRequest представляет интеракцию с существующим тикетом
type ActionRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
	Action  string `json:"action" binding:"required,oneof=claim leave close note"`
	Seat    string `json:"seat"`
	Note    string `json:"note"`
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	open := service.OpenTicketRequest{
		Creator: entity.UserID(req.CreatorID),
		Note:    req.Note,
	}

	switch req.Offer {
	case "arbitration":
		offer, err := entity.NewArbitrationOffer(req.Tier, req.Map)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "карта не найдена в списке карт Арбитража"})
			return
		}
		open.Offer = offer
		open.InitialSeat = req.Seat
	default:
		// Каскад: создатель автоматически занимает первый слот
		open.Offer = entity.NewCascadeOffer()
		open.InitialSeat = entity.CascadeSlots[0]
		if req.Seat != "" {
			open.InitialSeat = req.Seat
		}
	}

	snap, err := h.ticketService.OpenTicket(c.Request.Context(), &open)
	if err != nil {
		c.JSON(errorStatus(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Data: snap})
}

func (h *TicketHandler) HandleAction(c *gin.Context) {
	ticketID := c.Param("id")

	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	upd, err := h.ticketService.HandleAction(c.Request.Context(), &service.ActionRequest{
		RequestID: uuid.NewString(),
		TicketID:  entity.MessageID(ticketID),
		Actor:     entity.UserID(req.ActorID),
		Action:    service.Action(req.Action),
		Seat:      req.Seat,
		Note:      req.Note,
	})
	if err != nil {
		// Повторное занятие своего же слота — информационный отказ, не ошибка
		if errors.Is(err, entity.ErrAlreadyInSeat) {
			c.JSON(http.StatusOK, SuccessResponse{Message: "вы уже занимаете этот слот"})
			return
		}
		c.JSON(errorStatus(err), ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: upd.Snapshot})
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	snap, err := h.ticketService.GetTicket(entity.MessageID(c.Param("id")))
	if err != nil {
		c.JSON(errorStatus(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: snap})
}

// errorStatus сопоставляет ожидаемые отказы ядра HTTP-статусам. Все они —
// нормальные исходы конкурентного доступа, фатальных ошибок ядро не отдает.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrSeatRaceLost),
		errors.Is(err, entity.ErrSeatOccupied),
		errors.Is(err, entity.ErrAlreadySeated):
		return http.StatusConflict
	case errors.Is(err, entity.ErrNotCreator),
		errors.Is(err, entity.ErrCreatorMustClose):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrChannelNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
