package address

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByClient(ctx context.Context, clientID int64) ([]Address, error) {
	var out []Address
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("is_primary DESC, id ASC").
		Find(&out).Error
	return out, err
}

func (r *Repository) GetOwned(ctx context.Context, id, clientID int64) (*Address, error) {
	return getOwned(r.db.WithContext(ctx), id, clientID)
}

func getOwned(db *gorm.DB, id, clientID int64) (*Address, error) {
	var a Address
	err := db.Where("id = ? AND client_id = ?", id, clientID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// OwnedBy reports whether the address exists and belongs to clientID.
func (r *Repository) OwnedBy(ctx context.Context, id, clientID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Address{}).
		Where("id = ? AND client_id = ?", id, clientID).
		Count(&n).Error
	return n > 0, err
}

// Create inserts a; the client's first address, or one flagged primary,
// becomes the only primary.
func (r *Repository) Create(ctx context.Context, a *Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&Address{}).Where("client_id = ?", a.ClientID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			a.IsPrimary = true
		}
		if a.IsPrimary {
			if err := clearPrimary(tx, a.ClientID); err != nil {
				return err
			}
		}
		return tx.Create(a).Error
	})
}

func (r *Repository) Update(ctx context.Context, a *Address) error {
	a.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&Address{}).
		Where("id = ? AND client_id = ?", a.ID, a.ClientID).
		Select("label", "street", "city", "postal_code", "updated_at").
		Updates(a).Error
}

func (r *Repository) SetPrimary(ctx context.Context, id, clientID int64) (*Address, error) {
	var out *Address
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getOwned(tx, id, clientID)
		if err != nil {
			return err
		}
		if err := clearPrimary(tx, clientID); err != nil {
			return err
		}
		if err := tx.Model(&Address{}).Where("id = ?", id).
			Updates(map[string]any{"is_primary": true, "updated_at": time.Now().UTC()}).Error; err != nil {
			return err
		}
		a.IsPrimary = true
		out = a
		return nil
	})
	return out, err
}

// Delete refuses while an open request points at the address and promotes
// the oldest remaining address when the primary goes away.
func (r *Repository) Delete(ctx context.Context, id, clientID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		a, err := getOwned(tx, id, clientID)
		if err != nil {
			return err
		}

		var open int64
		if err := tx.Table("service_requests").
			Where("address_id = ? AND status IN ?", id, []string{"pending", "scheduled"}).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrInUse
		}

		if err := tx.Delete(&Address{}, id).Error; err != nil {
			return err
		}
		if !a.IsPrimary {
			return nil
		}

		var next Address
		err = tx.Where("client_id = ?", clientID).Order("id ASC").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&Address{}).Where("id = ?", next.ID).Update("is_primary", true).Error
	})
}

func clearPrimary(tx *gorm.DB, clientID int64) error {
	return tx.Model(&Address{}).
		Where("client_id = ? AND is_primary = ?", clientID, true).
		Update("is_primary", false).Error
}
