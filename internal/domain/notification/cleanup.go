package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"myhometech/internal/logger"
)

// CleanupService handles background cleanup tasks for notifications
type CleanupService struct {
	store     Store
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewCleanupService keeps read notifications for retention; unread ones are never purged.
func NewCleanupService(store Store, retention time.Duration, l *zap.Logger) *CleanupService {
	return &CleanupService{
		store:     store,
		retention: retention,
		logger:    logger.OrNop(l).Named("notification_cleanup"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *CleanupService) PurgeRead(ctx context.Context) (int64, error) {
	start := c.now()
	deleted, err := c.store.DeleteReadBefore(ctx, start.Add(-c.retention))
	if err != nil {
		c.logger.Error("purge read notifications failed", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		c.logger.Info("purged read notifications",
			zap.Int64("deleted", deleted),
			zap.Duration("took", c.now().Sub(start)),
		)
	}
	return deleted, nil
}
