package servicerequest

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows List. Zero values are ignored.
type ListFilter struct {
	ClientID     int64
	TechnicianID int64
	Status       Status
	Limit        int
	Offset       int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single transaction.
func (r *Repository) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

func (r *Repository) Create(ctx context.Context, sr *ServiceRequest) error {
	return r.db.WithContext(ctx).Create(sr).Error
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*ServiceRequest, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// LockByID loads the row FOR UPDATE. SQLite ignores the locking clause.
func (r *Repository) LockByID(ctx context.Context, id int64) (*ServiceRequest, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *Repository) get(db *gorm.DB, id int64) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := db.Where("id = ?", id).First(&sr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]ServiceRequest, error) {
	q := r.db.WithContext(ctx).Model(&ServiceRequest{})
	if f.ClientID > 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.TechnicianID > 0 {
		q = q.Where("technician_id = ?", f.TechnicianID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []ServiceRequest
	err := q.Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// ListAvailable returns open, unassigned requests on which technicianID has
// not yet used up its proposals.
func (r *Repository) ListAvailable(ctx context.Context, technicianID int64, now time.Time, proposalCap, limit, offset int) ([]ServiceRequest, error) {
	capped := r.db.Model(&Proposal{}).
		Select("service_request_id").
		Where("technician_id = ?", technicianID).
		Group("service_request_id").
		Having("COUNT(*) >= ?", proposalCap)

	q := r.db.WithContext(ctx).
		Where("status = ? AND technician_id IS NULL AND expires_at > ?", StatusPending, now).
		Where("id NOT IN (?)", capped).
		Order("proposed_date_time ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var out []ServiceRequest
	err := q.Find(&out).Error
	return out, err
}

// HasScheduledOverlap reports whether the technician has a scheduled job
// starting less than one slot before or after at.
func (r *Repository) HasScheduledOverlap(ctx context.Context, technicianID int64, at time.Time, slot time.Duration, excludeID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ServiceRequest{}).
		Where("technician_id = ? AND status = ? AND id <> ?", technicianID, StatusScheduled, excludeID).
		Where("scheduled_at > ? AND scheduled_at < ?", at.Add(-slot), at.Add(slot)).
		Count(&n).Error
	return n > 0, err
}

// TransitionStatus is the compare-and-set used by every status change: the
// row is updated only while its status is one of from. It reports whether a
// row changed.
func (r *Repository) TransitionStatus(ctx context.Context, id int64, from []Status, to Status, updates map[string]any) (bool, error) {
	values := map[string]any{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range updates {
		values[k] = v
	}
	res := r.db.WithContext(ctx).Model(&ServiceRequest{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) ListStalePending(ctx context.Context, now time.Time, limit int) ([]ServiceRequest, error) {
	var out []ServiceRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", StatusPending, now).
		Order("expires_at ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *Repository) CreateProposal(ctx context.Context, p *Proposal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) GetProposal(ctx context.Context, id int64) (*Proposal, error) {
	var p Proposal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProposals returns the request's proposals, optionally only one technician's.
func (r *Repository) ListProposals(ctx context.Context, requestID, technicianID int64) ([]Proposal, error) {
	q := r.db.WithContext(ctx).Where("service_request_id = ?", requestID)
	if technicianID > 0 {
		q = q.Where("technician_id = ?", technicianID)
	}
	var out []Proposal
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *Repository) ResolveProposal(ctx context.Context, id int64, to ProposalStatus, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&Proposal{}).
		Where("id = ? AND status = ?", id, ProposalPending).
		Updates(map[string]any{"status": to, "resolved_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// RejectPendingProposals rejects every pending proposal on the request except
// exceptID and returns the rows it rejected.
func (r *Repository) RejectPendingProposals(ctx context.Context, requestID, exceptID int64, now time.Time) ([]Proposal, error) {
	var pending []Proposal
	if err := r.db.WithContext(ctx).
		Where("service_request_id = ? AND status = ? AND id <> ?", requestID, ProposalPending, exceptID).
		Find(&pending).Error; err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(pending))
	for i := range pending {
		ids[i] = pending[i].ID
	}
	if err := r.db.WithContext(ctx).Model(&Proposal{}).
		Where("id IN ? AND status = ?", ids, ProposalPending).
		Updates(map[string]any{"status": ProposalRejected, "resolved_at": now}).Error; err != nil {
		return nil, err
	}
	for i := range pending {
		pending[i].Status = ProposalRejected
		resolved := now
		pending[i].ResolvedAt = &resolved
	}
	return pending, nil
}
