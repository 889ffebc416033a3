package rating

import (
	"time"

	"myhometech/internal/pkg/apperr"
)

// Rating is a client's score for the technician of a completed request.
// Ratings are immutable.
type Rating struct {
	ID               int64     `json:"id"`
	RaterID          int64     `json:"rater_id"`
	RatedID          int64     `json:"rated_id"`
	ServiceRequestID int64     `json:"service_request_id"`
	Score            int       `json:"score"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

type Summary struct {
	TechnicianID int64   `json:"technician_id"`
	Average      float64 `json:"average"`
	Count        int64   `json:"count"`
}

type CreateRequest struct {
	ServiceRequestID int64  `json:"service_request_id" validate:"required,gt=0"`
	Score            int    `json:"score" validate:"required,min=1,max=5"`
	Comment          string `json:"comment" validate:"max=1000"`
}

type TechnicianRatings struct {
	Summary Summary  `json:"summary"`
	Ratings []Rating `json:"ratings"`
}

var (
	ErrRequestNotFound = apperr.NotFound("SERVICE_REQUEST_NOT_FOUND", "Service request not found")
	ErrNotCompleted    = apperr.Validation("SERVICE_REQUEST_NOT_COMPLETED", "Only completed service requests can be rated")
	ErrNoTechnician    = apperr.Validation("NO_TECHNICIAN", "Service request has no technician to rate")
	ErrAlreadyRated    = apperr.Conflict("ALREADY_RATED", "This service request has already been rated")
	ErrInvalidScore    = apperr.Validation("INVALID_SCORE", "Score must be between 1 and 5")
)
