package notificationservice

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	service "quickeats/internal/app/notificationservice"
	"quickeats/internal/domain/notify"
	"quickeats/internal/shared/config"
	"quickeats/internal/shared/httpapi"
	"quickeats/internal/shared/kafka"
	"quickeats/internal/shared/logger"
	"quickeats/internal/shared/rabbitmq"
	"quickeats/internal/ws"
)

// Run composes consumer -> dispatcher -> transport and blocks until ctx is
// cancelled. Shutdown order: the consumer drains in-flight events and commits
// offsets, then the transport closes every session, then the HTTP listener
// stops.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.New("notification-service")
	clock := notify.UTC()

	registry := ws.NewRegistry()
	transport := ws.NewTransport(ws.Options{
		Registry:    registry,
		Clock:       clock,
		Log:         log,
		MaxSessions: cfg.Transport.MaxSessions,
		SendQueue:   cfg.Transport.SendQueue,
	})

	var outbound service.OutboundChannel = service.NewLogOutbound(log)
	if cfg.Outbound.AMQPURL != "" {
		client, err := rabbitmq.Connect(cfg.Outbound.AMQPURL, log)
		if err != nil {
			log.WithField("action", "outbound_connect_failed").WithError(err).Error("failed to connect outbound AMQP")
			return err
		}
		defer client.Close()
		outbound = service.NewAMQPOutbound(client, clock)
	}

	dispatcher := service.NewDispatcher(transport, outbound, clock, log, cfg.Outbound.Timeout())
	consumer := kafka.NewConsumer(cfg.Bus, dispatcher.Handle, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.Register(router, "notification-service", httpapi.Version, clock, func() gin.H {
		return gin.H{
			"liveSessions":    transport.Sessions(),
			"subscribedUsers": registry.Users(),
		}
	})
	transport.Mount(router)
	registerBroadcast(router, dispatcher)

	srv := &http.Server{
		Addr:              cfg.Transport.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	consumerErr := make(chan error, 1)
	go func() { consumerErr <- consumer.Run(ctx) }()

	srvErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	log.WithFields(map[string]any{
		"action": "service_started",
		"listen": cfg.Transport.Listen,
		"topic":  cfg.Bus.Topic,
		"group":  cfg.Bus.GroupID,
	}).Info("notification service started")

	select {
	case <-ctx.Done():
		// graceful path below
	case err := <-srvErr:
		if err != nil {
			return errors.Wrap(err, "http server failed")
		}
		return errors.New("http server stopped unexpectedly")
	case err := <-consumerErr:
		if err != nil {
			return errors.Wrap(err, "consumer failed")
		}
		return errors.New("consumer stopped unexpectedly")
	}

	if err := <-consumerErr; err != nil {
		log.WithField("action", "consumer_stop_failed").WithError(err).Error("consumer did not stop cleanly")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	transport.Shutdown(shCtx)
	_ = srv.Shutdown(shCtx)

	log.WithField("action", "graceful_shutdown").Info("notification service stopped")
	return nil
}

// registerBroadcast mounts the admin announcement endpoint.
func registerBroadcast(router *gin.Engine, dispatcher *service.Dispatcher) {
	router.POST("/api/broadcast", func(c *gin.Context) {
		var req struct {
			Title   string `json:"title"`
			Message string `json:"message"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" || req.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title and message are required"})
			return
		}
		dispatcher.Broadcast(req.Title, req.Message)
		c.JSON(http.StatusAccepted, gin.H{"status": "sent"})
	})
}
