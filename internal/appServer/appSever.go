package appServer

import (
	"context"
	"crypto/tls"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/lfg-bot/config"
	"github.com/ds124wfegd/lfg-bot/internal/service"
	"github.com/ds124wfegd/lfg-bot/internal/transport"
	"github.com/ds124wfegd/lfg-bot/internal/transport/middleware"
	"github.com/ds124wfegd/lfg-bot/internal/worker"
	"github.com/ds124wfegd/lfg-bot/pkg/discord"
	"github.com/ds124wfegd/lfg-bot/pkg/rabbitmq"
	"github.com/ds124wfegd/lfg-bot/pkg/redis"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	// Настройки каналов и ролей (переживают рестарт)
	settings, err := service.NewSettingsService(cfg.LFG.SettingsFile)
	if err != nil {
		logrus.Fatalf("Failed to load settings: %v", err)
	}

	// Клиент чат-платформы
	var platform service.Platform
	if cfg.Discord.BotToken != "" {
		if cfg.Discord.APIBase != "" {
			platform = discord.NewClientWithBaseURL(cfg.Discord.BotToken, cfg.Discord.APIBase)
		} else {
			platform = discord.NewClient(cfg.Discord.BotToken)
		}
		logrus.Info("Discord client initialized")
	} else {
		logrus.Warn("BOT_TOKEN is not set, platform notifications disabled")
	}

	// Необязательная очередь событий жизненного цикла
	var events service.EventPublisher
	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.URL != "" {
		publisher, err := rabbitmq.NewPublisher(rabbitmq.Config{
			URL:       cfg.RabbitMQ.URL,
			QueueName: cfg.RabbitMQ.QueueName,
		})
		if err != nil {
			logrus.Errorf("Failed to initialize RabbitMQ: %v. Continuing without event queue...", err)
		} else {
			defer publisher.Close()
			events = publisher
			logrus.Info("RabbitMQ event publisher initialized")
		}
	}

	// Реестр тикетов со встроенным планировщиком истечения
	ticketService := service.NewTicketService(platform, settings, events)
	defer ticketService.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keep-alive против засыпания на бесплатном хостинге
	keepAlive := worker.NewKeepAliveWorker(cfg.Server.ExternalURL, cfg.Worker.KeepAliveInterval)
	go keepAlive.Start(ctx)

	// Необязательный rate limiting интеракций через Redis
	var rateLimit gin.HandlerFunc
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logrus.Errorf("Failed to initialize Redis: %v. Continuing without rate limiting...", err)
		} else {
			defer redisClient.Close()
			rateLimit = middleware.RateLimit(redisClient, cfg.LFG.RateLimitPerMinute)
			logrus.Info("Interaction rate limiting enabled")
		}
	}

	// Initialize handlers
	ticketHandler := transport.NewTicketHandler(ticketService)
	adminHandler := transport.NewAdminHandler(settings, ticketService)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(ticketHandler, adminHandler, rateLimit)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}
