package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"myhometech/internal/config"
	"myhometech/internal/database"
	"myhometech/internal/domain/notification"
	"myhometech/internal/logger"
	"myhometech/internal/realtime"
	"myhometech/internal/schema"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.Database.DSN, database.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          zl,
	})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := schema.Migrate(db, zl); err != nil {
		return err
	}

	// realtime: local hub, fanned out through Redis when configured
	hub := realtime.NewHub(zl)
	defer hub.Close()

	var publisher notification.Publisher = hub
	if cfg.Redis.Addr != "" {
		rc := realtime.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		relay := realtime.NewRedisRelay(rc, cfg.Redis.Channel, hub, zl)
		if err := relay.Start(ctx); err != nil {
			return fmt.Errorf("redis relay: %w", err)
		}
		publisher = relay
		zl.Info("push relay enabled", zap.String("addr", cfg.Redis.Addr), zap.String("channel", cfg.Redis.Channel))
	}

	gin.SetMode(cfg.Server.Mode)
	a, err := newApp(cfg, db, hub, publisher, zl)
	if err != nil {
		return err
	}
	defer a.notifier.Wait()
	a.sweeper.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Warn("http shutdown", zap.Error(err))
	}
	a.sweeper.Stop(shutdownCtx)
	return nil
}
