package notification

import (
	"time"

	"myhometech/internal/pkg/apperr"
)

// Type represents notification type
type Type string

const (
	TypeRequestCreated   Type = "request_created"
	TypeRequestScheduled Type = "request_scheduled"
	TypeRequestCompleted Type = "request_completed"
	TypeRequestCancelled Type = "request_cancelled"
	TypeRequestExpired   Type = "request_expired"
	TypeProposalCreated  Type = "proposal_created"
	TypeProposalAccepted Type = "proposal_accepted"
	TypeProposalRejected Type = "proposal_rejected"
	TypeRatingReceived   Type = "rating_received"
)

// Notification is the durable record of a state change addressed to one user.
// It is only mutated by marking it read.
type Notification struct {
	ID               int64      `gorm:"primaryKey;column:id" json:"id"`
	UserID           int64      `gorm:"column:user_id;not null;index:idx_notifications_user_unread" json:"user_id"`
	Type             Type       `gorm:"column:type;size:40;not null" json:"type"`
	Message          string     `gorm:"column:message;type:text;not null" json:"message"`
	ServiceRequestID *int64     `gorm:"column:service_request_id;index" json:"service_request_id,omitempty"`
	IsRead           bool       `gorm:"column:is_read;not null;index:idx_notifications_user_unread" json:"is_read"`
	CreatedAt        time.Time  `gorm:"column:created_at" json:"created_at"`
	ReadAt           *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
}

// TableName specifies table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

var ErrNotFound = apperr.NotFound("NOTIFICATION_NOT_FOUND", "Notification not found")

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int64          `json:"unread_count"`
	Total         int64          `json:"total"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}
