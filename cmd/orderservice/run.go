package orderservice

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	service "quickeats/internal/app/orderservice"
	"quickeats/internal/domain/notify"
	"quickeats/internal/shared/config"
	"quickeats/internal/shared/httpapi"
	"quickeats/internal/shared/kafka"
	"quickeats/internal/shared/logger"
	"quickeats/internal/shared/postgres"
)

// Run wires the order API with its store and event producer, then blocks
// until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.New("order-service")
	clock := notify.UTC()

	pool, err := postgres.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.WithField("action", "db_connection_failed").WithError(err).Error("failed to connect to Postgres")
		return err
	}
	defer pool.Close()
	log.WithField("action", "db_connected").Info("connected to PostgreSQL")

	producer := kafka.NewProducer(cfg.Bus, log)
	defer producer.Close()

	svc := service.New(postgres.NewOrdersRepo(pool), producer, clock, log)
	handler := service.NewHandler(svc, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	httpapi.Register(router, "order-service", httpapi.Version, clock, nil)
	handler.Register(router)

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

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
		"listen": cfg.HTTP.Listen,
	}).Info("order service started")

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	case err := <-srvErr:
		if err != nil {
			return errors.Wrap(err, "http server failed")
		}
	}

	log.WithField("action", "graceful_shutdown").Info("order service stopped")
	return nil
}
