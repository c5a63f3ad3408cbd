package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ds124wfegd/lfg-bot/internal/transport/middleware"
)

func InitRoutes(ticketHandler *TicketHandler, adminHandler *AdminHandler, rateLimit gin.HandlerFunc) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// Keep-alive: хостинг будит сервис запросом на корень
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is running!")
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"active_tickets": ticketHandler.ticketService.ActiveTickets(),
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api/v1")
	if rateLimit != nil {
		api.Use(rateLimit)
	}
	{
		// Ticket routes
		tickets := api.Group("/tickets")
		{
			tickets.POST("", ticketHandler.CreateTicket)
			tickets.GET("/:id", ticketHandler.GetTicket)
			tickets.POST("/:id/actions", ticketHandler.HandleAction)
		}

		// Admin routes
		admin := api.Group("/admin")
		{
			admin.GET("/settings", adminHandler.GetSettings)
			admin.POST("/channels/lfg", adminHandler.SetLFGChannel)
			admin.POST("/channels/nav", adminHandler.SetNavChannel)
			admin.POST("/roles/arbitration", adminHandler.SetArbitrationRole)
			admin.POST("/roles/cascade", adminHandler.SetCascadeRole)
			admin.POST("/roles/maps", adminHandler.SetMapRole)
		}
	}

	return router
}
