package servicerequest

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusScheduled, StatusCancelled, StatusExpired},
	StatusScheduled: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the lifecycle allows moving from -> to.
// Completed, cancelled and expired are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// ServiceRequest is a client's repair job. ClientID and TechnicianID are user ids.
type ServiceRequest struct {
	ID                 int64      `gorm:"primaryKey;column:id" json:"id"`
	ClientID           int64      `gorm:"column:client_id;not null;index" json:"client_id"`
	TechnicianID       *int64     `gorm:"column:technician_id;index" json:"technician_id"`
	ApplianceID        int64      `gorm:"column:appliance_id;not null;index" json:"appliance_id"`
	AddressID          int64      `gorm:"column:address_id;not null;index" json:"address_id"`
	Description        string     `gorm:"column:description;type:text;not null" json:"description"`
	ProposedDateTime   time.Time  `gorm:"column:proposed_date_time;not null" json:"proposed_date_time"`
	ScheduledAt        *time.Time `gorm:"column:scheduled_at;index" json:"scheduled_at"`
	Status             Status     `gorm:"column:status;size:20;not null;index" json:"status"`
	CreatedAt          time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at" json:"updated_at"`
	ExpiresAt          time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at" json:"cancelled_at"`
	CancellationReason *string    `gorm:"column:cancellation_reason;type:text" json:"cancellation_reason"`
}

func (ServiceRequest) TableName() string {
	return "service_requests"
}

// Stale is true for a pending request whose expiry has passed.
func (r *ServiceRequest) Stale(now time.Time) bool {
	return r.Status == StatusPending && r.ExpiresAt.Before(now)
}

func (r *ServiceRequest) AssignedTo(technicianID int64) bool {
	return r.TechnicianID != nil && *r.TechnicianID == technicianID
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is a technician's alternative date for a pending request.
// ProposalCount numbers the technician's proposals on the request from 1.
type Proposal struct {
	ID               int64          `gorm:"primaryKey;column:id" json:"id"`
	ServiceRequestID int64          `gorm:"column:service_request_id;not null;uniqueIndex:idx_proposal_seq,priority:1" json:"service_request_id"`
	TechnicianID     int64          `gorm:"column:technician_id;not null;uniqueIndex:idx_proposal_seq,priority:2;index" json:"technician_id"`
	ProposedDateTime time.Time      `gorm:"column:proposed_date_time;not null" json:"proposed_date_time"`
	Status           ProposalStatus `gorm:"column:status;size:20;not null;index" json:"status"`
	Comment          string         `gorm:"column:comment;type:text" json:"comment"`
	ProposalCount    int            `gorm:"column:proposal_count;not null;uniqueIndex:idx_proposal_seq,priority:3" json:"proposal_count"`
	CreatedAt        time.Time      `gorm:"column:created_at" json:"created_at"`
	ResolvedAt       *time.Time     `gorm:"column:resolved_at" json:"resolved_at"`
}

func (Proposal) TableName() string {
	return "alternative_date_proposals"
}
