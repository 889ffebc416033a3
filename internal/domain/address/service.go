package address

import (
	"context"
	"strings"
)

type Store interface {
	ListByClient(ctx context.Context, clientID int64) ([]Address, error)
	GetOwned(ctx context.Context, id, clientID int64) (*Address, error)
	Create(ctx context.Context, a *Address) error
	Update(ctx context.Context, a *Address) error
	SetPrimary(ctx context.Context, id, clientID int64) (*Address, error)
	Delete(ctx context.Context, id, clientID int64) error
}

// Service enforces that clients only see and touch their own addresses.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, clientID int64) ([]Address, error) {
	return s.store.ListByClient(ctx, clientID)
}

func (s *Service) Create(ctx context.Context, clientID int64, req CreateRequest) (*Address, error) {
	a := &Address{
		ClientID:   clientID,
		Label:      strings.TrimSpace(req.Label),
		Street:     strings.TrimSpace(req.Street),
		City:       strings.TrimSpace(req.City),
		PostalCode: strings.TrimSpace(req.PostalCode),
		IsPrimary:  req.IsPrimary,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, clientID, id int64, req UpdateRequest) (*Address, error) {
	a, err := s.store.GetOwned(ctx, id, clientID)
	if err != nil {
		return nil, err
	}
	if req.Label != nil {
		a.Label = strings.TrimSpace(*req.Label)
	}
	if req.Street != nil {
		a.Street = strings.TrimSpace(*req.Street)
	}
	if req.City != nil {
		a.City = strings.TrimSpace(*req.City)
	}
	if req.PostalCode != nil {
		a.PostalCode = strings.TrimSpace(*req.PostalCode)
	}
	if err := s.store.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) SetPrimary(ctx context.Context, clientID, id int64) (*Address, error) {
	return s.store.SetPrimary(ctx, id, clientID)
}

func (s *Service) Delete(ctx context.Context, clientID, id int64) error {
	return s.store.Delete(ctx, id, clientID)
}
