package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TechnicianRepository handles technician profile data access
type TechnicianRepository struct {
	db *gorm.DB
}

func NewTechnicianRepository(db *gorm.DB) *TechnicianRepository {
	return &TechnicianRepository{db: db}
}

func (r *TechnicianRepository) GetByUserID(ctx context.Context, userID int64) (*Technician, error) {
	var t Technician
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TechnicianRepository) Update(ctx context.Context, t *Technician) error {
	t.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&Technician{}).
		Where("id = ?", t.ID).
		Select("phone", "specialties", "years_experience", "bio", "updated_at").
		Updates(t).Error
}

// GetPublic returns the public card of an active technician.
func (r *TechnicianRepository) GetPublic(ctx context.Context, userID int64) (*PublicTechnician, error) {
	var row struct {
		UserID          int64
		Name            string
		Specialties     string
		YearsExperience int
		Bio             string
	}
	res := r.db.WithContext(ctx).
		Table("technicians AS t").
		Select("t.user_id, u.name, t.specialties, t.years_experience, t.bio").
		Joins("JOIN users u ON u.id = t.user_id").
		Where("t.user_id = ? AND u.is_active = ?", userID, true).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}

	out := &PublicTechnician{
		UserID:          row.UserID,
		Name:            row.Name,
		YearsExperience: row.YearsExperience,
		Bio:             row.Bio,
	}
	if row.Specialties != "" {
		if err := json.Unmarshal([]byte(row.Specialties), &out.Specialties); err != nil {
			return nil, err
		}
	}
	return out, nil
}
