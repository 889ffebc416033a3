package rating

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"myhometech/internal/domain/notification"
	"myhometech/internal/domain/servicerequest"
)

type Store interface {
	Create(ctx context.Context, r *Rating) error
	ExistsForRequest(ctx context.Context, serviceRequestID int64) (bool, error)
	ListForRated(ctx context.Context, ratedID int64, limit, offset int) ([]Rating, error)
	Summary(ctx context.Context, ratedID int64) (Summary, error)
}

type RequestLookup interface {
	GetByID(ctx context.Context, id int64) (*servicerequest.ServiceRequest, error)
}

type Dispatcher interface {
	Dispatch(msgs ...notification.Message)
}

type Service struct {
	store    Store
	requests RequestLookup
	notifier Dispatcher
}

func NewService(store Store, requests RequestLookup, notifier Dispatcher) *Service {
	return &Service{store: store, requests: requests, notifier: notifier}
}

// Create records the client's rating of the technician who completed the request.
func (s *Service) Create(ctx context.Context, raterID int64, req CreateRequest) (*Rating, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, ErrInvalidScore
	}

	sr, err := s.requests.GetByID(ctx, req.ServiceRequestID)
	if errors.Is(err, servicerequest.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if sr.ClientID != raterID {
		return nil, ErrRequestNotFound
	}
	if sr.Status != servicerequest.StatusCompleted {
		return nil, ErrNotCompleted
	}
	if sr.TechnicianID == nil {
		return nil, ErrNoTechnician
	}

	exists, err := s.store.ExistsForRequest(ctx, sr.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyRated
	}

	r := &Rating{
		RaterID:          raterID,
		RatedID:          *sr.TechnicianID,
		ServiceRequestID: sr.ID,
		Score:            req.Score,
		Comment:          strings.TrimSpace(req.Comment),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(notification.Message{
			UserIDs:          []int64{r.RatedID},
			Type:             notification.TypeRatingReceived,
			Text:             fmt.Sprintf("You received a %d-star rating for service request #%d", r.Score, sr.ID),
			ServiceRequestID: &r.ServiceRequestID,
		})
	}
	return r, nil
}

func (s *Service) ListForTechnician(ctx context.Context, technicianID int64, limit, offset int) ([]Rating, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListForRated(ctx, technicianID, limit, offset)
}

func (s *Service) Summary(ctx context.Context, technicianID int64) (Summary, error) {
	return s.store.Summary(ctx, technicianID)
}
