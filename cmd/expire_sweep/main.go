// Command expire_sweep runs one expiry pass over pending service requests and
// purges old read notifications. Intended for external schedulers.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"myhometech/internal/config"
	"myhometech/internal/database"
	"myhometech/internal/domain/address"
	"myhometech/internal/domain/appliance"
	"myhometech/internal/domain/notification"
	"myhometech/internal/domain/servicerequest"
	"myhometech/internal/logger"
	"myhometech/internal/realtime"
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

	db, err := database.Connect(cfg.Database.DSN, database.Options{Logger: zl})
	if err != nil {
		zl.Fatal("db connect failed", zap.Error(err))
	}

	rules, err := servicerequest.RulesFromConfig(cfg.Schedule)
	if err != nil {
		zl.Fatal("schedule rules", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Without Redis the push goes to an empty local hub; rows are still stored.
	hub := realtime.NewHub(zl)
	defer hub.Close()
	var publisher notification.Publisher = hub
	if cfg.Redis.Addr != "" {
		rc := realtime.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		publisher = realtime.NewRedisRelay(rc, cfg.Redis.Channel, hub, zl)
	}

	notificationRepo := notification.NewRepository(db)
	notifier := notification.NewNotifier(notificationRepo, publisher, zl)
	requests := servicerequest.NewService(
		servicerequest.NewRepository(db),
		appliance.NewRepository(db),
		address.NewRepository(db),
		notifier,
		rules,
		zl,
	)

	expired, err := requests.ExpireStale(ctx)
	notifier.Wait()
	if err != nil {
		zl.Fatal("expire sweep failed", zap.Int("expired", expired), zap.Error(err))
	}

	purged, err := notification.NewCleanupService(notificationRepo, cfg.Notify.Retention, zl).PurgeRead(ctx)
	if err != nil {
		zl.Fatal("notification cleanup failed", zap.Error(err))
	}

	zl.Info("sweep completed", zap.Int("expired", expired), zap.Int64("notifications_purged", purged))
}
