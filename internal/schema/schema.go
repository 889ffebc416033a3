// Package schema owns the list of persisted models and migrates them.
package schema

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"myhometech/internal/domain/address"
	"myhometech/internal/domain/appliance"
	"myhometech/internal/domain/auth"
	"myhometech/internal/domain/notification"
	"myhometech/internal/domain/profile"
	"myhometech/internal/domain/rating"
	"myhometech/internal/domain/servicerequest"
)

// Models returns every table-backed model in dependency order.
func Models() []any {
	return []any{
		&auth.User{},
		&profile.Client{},
		&profile.Technician{},
		&appliance.Appliance{},
		&address.Address{},
		&servicerequest.ServiceRequest{},
		&servicerequest.Proposal{},
		&notification.Notification{},
		rating.Model(),
	}
}

func Migrate(db *gorm.DB, l *zap.Logger) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if l != nil {
		l.Info("schema migrated", zap.Int("tables", len(Models())))
	}
	return nil
}
