package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"workspace-core-svc/src/clients"
	"workspace-core-svc/src/internal/config"
	"workspace-core-svc/src/internal/dependency"

	"github.com/gin-gonic/gin"
)

type Server struct {
	cfg  *config.Configuration
	deps *dependency.Manager
}

func New(cfg *config.Configuration) *Server {
	return &Server{cfg: cfg}
}

// Start connects to all backing services, wires the dependency graph,
// launches the activity log consumer and serves HTTP until a shutdown
// signal arrives.
func (s *Server) Start() error {
	gin.SetMode(s.cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())

	mongodb, err := clients.NewMongoDB(s.cfg)
	if err != nil {
		return err
	}

	redisClient, err := clients.NewRedisClient(s.cfg)
	if err != nil {
		return err
	}

	rabbitMQ, err := clients.NewRabbitMQ(&s.cfg.Queue)
	if err != nil {
		return err
	}

	if err := rabbitMQ.SetupQueues(); err != nil {
		return err
	}

	s.deps = dependency.NewDependencyManager(router, mongodb, redisClient, rabbitMQ, s.cfg)
	SetupRoutes(s.deps)

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	s.deps.Consumer.Start(consumerCtx)

	httpServer := &http.Server{
		Addr:         ":" + s.cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on port %s", s.cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Infof("Received signal %s, shutting down...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed")
	}

	s.deps.Consumer.Stop()

	if err := rabbitMQ.Close(); err != nil {
		log.WithError(err).Error("Failed to close RabbitMQ")
	}
	if err := redisClient.Close(); err != nil {
		log.WithError(err).Error("Failed to close Redis")
	}
	if err := mongodb.Close(shutdownCtx); err != nil {
		log.WithError(err).Error("Failed to close MongoDB")
	}

	log.Info("Shutdown complete")
	return nil
}
