package appliance

import (
	"context"
	"strings"
)

type Store interface {
	Create(ctx context.Context, a *Appliance) error
	GetByID(ctx context.Context, id int64) (*Appliance, error)
	List(ctx context.Context, f ListFilter) ([]Appliance, error)
	Save(ctx context.Context, a *Appliance) error
	Delete(ctx context.Context, id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appliance, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	f.Query = strings.TrimSpace(f.Query)
	return s.store.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id int64) (*Appliance, error) {
	return s.store.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Appliance, error) {
	a := &Appliance{
		Name:     strings.TrimSpace(req.Name),
		Brand:    strings.TrimSpace(req.Brand),
		Model:    strings.TrimSpace(req.Model),
		Category: strings.ToLower(strings.TrimSpace(req.Category)),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Appliance, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Brand != nil {
		a.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.Model != nil {
		a.Model = strings.TrimSpace(*req.Model)
	}
	if req.Category != nil {
		a.Category = strings.ToLower(strings.TrimSpace(*req.Category))
	}
	if err := s.store.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
