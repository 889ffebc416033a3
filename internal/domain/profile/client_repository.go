package profile

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ClientRepository handles client profile data access
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) GetByUserID(ctx context.Context, userID int64) (*Client, error) {
	var c Client
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *Client) error {
	return r.db.WithContext(ctx).
		Model(&Client{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{"phone": c.Phone, "updated_at": time.Now().UTC()}).Error
}
