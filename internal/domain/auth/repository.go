package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"myhometech/internal/pkg/apperr"
)

// ProfileRecord is a role-specific row created together with its user.
type ProfileRecord interface {
	AttachUser(userID int64)
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts the user and, when given, its profile row in one transaction.
func (r *UserRepository) Create(ctx context.Context, u *User, profile ProfileRecord) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		if profile == nil {
			return nil
		}
		profile.AttachUser(u.ID)
		return tx.Create(profile).Error
	})
	if apperr.IsUniqueViolation(err) {
		return ErrEmailAlreadyExists
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.updateColumns(ctx, id, map[string]any{"name": name})
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.updateColumns(ctx, id, map[string]any{"password_hash": hash})
}

func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.updateColumns(ctx, id, map[string]any{"is_active": active})
}

func (r *UserRepository) updateColumns(ctx context.Context, id int64, cols map[string]any) error {
	cols["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// EmailByID resolves the address used by the email notification channel.
func (r *UserRepository) EmailByID(ctx context.Context, id int64) (string, error) {
	var email string
	res := r.db.WithContext(ctx).Model(&User{}).
		Where("id = ? AND is_active = ?", id, true).
		Limit(1).
		Pluck("email", &email)
	if res.Error != nil {
		return "", res.Error
	}
	if email == "" {
		return "", ErrUserNotFound
	}
	return email, nil
}

// CountByRole returns active and inactive users grouped by role.
func (r *UserRepository) CountByRole(ctx context.Context) (map[UserRole]int64, error) {
	var rows []struct {
		Role  UserRole
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&User{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[UserRole]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
