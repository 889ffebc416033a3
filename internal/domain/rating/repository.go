package rating

import (
	"context"
	"time"

	"gorm.io/gorm"

	"myhometech/internal/pkg/apperr"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type ratingModel struct {
	ID               int64     `gorm:"column:id;primaryKey"`
	RaterID          int64     `gorm:"column:rater_id;not null;index"`
	RatedID          int64     `gorm:"column:rated_id;not null;index"`
	ServiceRequestID int64     `gorm:"column:service_request_id;not null;uniqueIndex"`
	Score            int       `gorm:"column:score;not null"`
	Comment          *string   `gorm:"column:comment;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (ratingModel) TableName() string { return "ratings" }

// Model is the gorm model for migrations.
func Model() any { return &ratingModel{} }

func toDomainRating(m ratingModel) Rating {
	comment := ""
	if m.Comment != nil {
		comment = *m.Comment
	}
	return Rating{
		ID:               m.ID,
		RaterID:          m.RaterID,
		RatedID:          m.RatedID,
		ServiceRequestID: m.ServiceRequestID,
		Score:            m.Score,
		Comment:          comment,
		CreatedAt:        m.CreatedAt,
	}
}

func toRatingModel(r *Rating) ratingModel {
	var comment *string
	if r.Comment != "" {
		v := r.Comment
		comment = &v
	}
	return ratingModel{
		ID:               r.ID,
		RaterID:          r.RaterID,
		RatedID:          r.RatedID,
		ServiceRequestID: r.ServiceRequestID,
		Score:            r.Score,
		Comment:          comment,
		CreatedAt:        r.CreatedAt,
	}
}

// Create inserts r; a second rating for the same request is ErrAlreadyRated.
func (r *Repository) Create(ctx context.Context, rt *Rating) error {
	m := toRatingModel(rt)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if apperr.IsUniqueViolation(err) {
			return ErrAlreadyRated
		}
		return err
	}
	rt.ID = m.ID
	rt.CreatedAt = m.CreatedAt
	return nil
}

func (r *Repository) ExistsForRequest(ctx context.Context, serviceRequestID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ratingModel{}).
		Where("service_request_id = ?", serviceRequestID).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) ListForRated(ctx context.Context, ratedID int64, limit, offset int) ([]Rating, error) {
	var rows []ratingModel
	if err := r.db.WithContext(ctx).
		Where("rated_id = ?", ratedID).
		Order("created_at DESC, id DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Rating, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainRating(m))
	}
	return out, nil
}

func (r *Repository) Summary(ctx context.Context, ratedID int64) (Summary, error) {
	var row struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).Model(&ratingModel{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
		Where("rated_id = ?", ratedID).
		Scan(&row).Error
	if err != nil {
		return Summary{}, err
	}
	return Summary{TechnicianID: ratedID, Average: row.Average, Count: row.Count}, nil
}
