package notification

import (
	"context"
	"time"
)

type Store interface {
	CreateBatch(ctx context.Context, items []Notification) error
	ListForUser(ctx context.Context, userID int64, limit, offset int) ([]Notification, int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkRead(ctx context.Context, id, userID int64, now time.Time) error
	MarkAllRead(ctx context.Context, userID int64, now time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// FindAllForUser returns one page of the user's notifications, newest first.
func (s *Service) FindAllForUser(ctx context.Context, userID int64, limit, offset int) (*ListResponse, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.store.ListForUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Notification{}
	}
	return &ListResponse{Notifications: items, UnreadCount: unread, Total: total}, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return s.store.CountUnread(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID int64) error {
	return s.store.MarkRead(ctx, id, userID, s.now())
}

func (s *Service) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.store.MarkAllRead(ctx, userID, s.now())
}
