package admin

import (
	"context"

	"gorm.io/gorm"

	"myhometech/internal/domain/servicerequest"
)

// Repository runs read-only aggregate queries across the marketplace tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) RequestsByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&servicerequest.ServiceRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *Repository) ProposalStats(ctx context.Context) (ProposalStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&servicerequest.Proposal{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return ProposalStats{}, err
	}

	var st ProposalStats
	for _, row := range rows {
		st.Total += row.Count
		switch servicerequest.ProposalStatus(row.Status) {
		case servicerequest.ProposalPending:
			st.Pending = row.Count
		case servicerequest.ProposalAccepted:
			st.Accepted = row.Count
		case servicerequest.ProposalRejected:
			st.Rejected = row.Count
		}
	}
	return st, nil
}

// TopTechnicians ranks technicians by completed requests, then by average rating.
func (r *Repository) TopTechnicians(ctx context.Context, limit int) ([]TechnicianStat, error) {
	completed := r.db.Table("service_requests").
		Select("technician_id, COUNT(*) AS completed").
		Where("status = ? AND technician_id IS NOT NULL", servicerequest.StatusCompleted).
		Group("technician_id")
	ratings := r.db.Table("ratings").
		Select("rated_id, AVG(score) AS average_rating, COUNT(*) AS rating_count").
		Group("rated_id")

	var out []TechnicianStat
	err := r.db.WithContext(ctx).
		Table("(?) AS c", completed).
		Select("c.technician_id, u.name, c.completed, COALESCE(rt.average_rating, 0) AS average_rating, COALESCE(rt.rating_count, 0) AS rating_count").
		Joins("JOIN users u ON u.id = c.technician_id").
		Joins("LEFT JOIN (?) AS rt ON rt.rated_id = c.technician_id", ratings).
		Order("c.completed DESC, average_rating DESC, c.technician_id ASC").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

func (r *Repository) ExportRows(ctx context.Context, f ExportFilter) ([]ExportRow, error) {
	q := r.db.WithContext(ctx).
		Table("service_requests AS sr").
		Select(`sr.id, sr.status, cu.name AS client_name, COALESCE(tu.name, '') AS technician_name,
			COALESCE(a.name, '') AS appliance, sr.description, sr.proposed_date_time AS proposed_at,
			sr.scheduled_at, sr.created_at, sr.completed_at`).
		Joins("JOIN users cu ON cu.id = sr.client_id").
		Joins("LEFT JOIN users tu ON tu.id = sr.technician_id").
		Joins("LEFT JOIN appliances a ON a.id = sr.appliance_id")

	if f.Status != "" {
		q = q.Where("sr.status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("sr.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("sr.created_at < ?", *f.To)
	}

	var out []ExportRow
	err := q.Order("sr.created_at DESC, sr.id DESC").Scan(&out).Error
	return out, err
}
