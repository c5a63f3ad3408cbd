package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/lfg-bot/internal/entity"
	"github.com/ds124wfegd/lfg-bot/internal/service"
)

// AdminHandler обслуживает административные команды настройки: каналы,
// роли пингов и роли отдельных карт.
type AdminHandler struct {
	settings      service.SettingsService
	ticketService service.TicketService
}

func NewAdminHandler(settings service.SettingsService, ticketService service.TicketService) *AdminHandler {
	return &AdminHandler{settings: settings, ticketService: ticketService}
}

type setChannelRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
}

type setRoleRequest struct {
	RoleID string `json:"role_id" binding:"required"`
}

type setMapRoleRequest struct {
	Map    string `json:"map" binding:"required"`
	RoleID string `json:"role_id" binding:"required"`
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: h.settings.Get()})
}

func (h *AdminHandler) SetLFGChannel(c *gin.Context) {
	var req setChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.settings.SetLFGChannel(req.ChannelID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "канал поиска пати установлен"})
}

// SetNavChannel сохраняет канал навигации и сразу публикует в него
// стартовое окно подбора пати.
func (h *AdminHandler) SetNavChannel(c *gin.Context) {
	var req setChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.settings.SetNavChannel(req.ChannelID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.ticketService.AnnounceNavigation(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "канал навигации установлен, стартовое окно отправлено"})
}

func (h *AdminHandler) SetArbitrationRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.settings.SetArbitrationRole(req.RoleID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "роль для пинга Арбитража установлена"})
}

func (h *AdminHandler) SetCascadeRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.settings.SetCascadeRole(req.RoleID); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "роль для пинга Каскада установлена"})
}

func (h *AdminHandler) SetMapRole(c *gin.Context) {
	var req setMapRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.settings.SetMapRole(req.Map, req.RoleID); err != nil {
		if errors.Is(err, entity.ErrUnknownMap) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "карта не найдена в списке карт Арбитража"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true, Message: "роль для карты установлена"})
}
