package profile

import (
	"context"
	"strings"
)

type ClientStore interface {
	GetByUserID(ctx context.Context, userID int64) (*Client, error)
	Update(ctx context.Context, c *Client) error
}

type TechnicianStore interface {
	GetByUserID(ctx context.Context, userID int64) (*Technician, error)
	Update(ctx context.Context, t *Technician) error
	GetPublic(ctx context.Context, userID int64) (*PublicTechnician, error)
}

// Service handles profile business logic
type Service struct {
	clients     ClientStore
	technicians TechnicianStore
}

func NewService(clients ClientStore, technicians TechnicianStore) *Service {
	return &Service{clients: clients, technicians: technicians}
}

func (s *Service) GetClientProfile(ctx context.Context, userID int64) (*Client, error) {
	return s.clients.GetByUserID(ctx, userID)
}

func (s *Service) UpdateClientProfile(ctx context.Context, userID int64, req UpdateClientProfileRequest) (*Client, error) {
	c, err := s.clients.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := s.clients.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) GetTechnicianProfile(ctx context.Context, userID int64) (*Technician, error) {
	return s.technicians.GetByUserID(ctx, userID)
}

func (s *Service) UpdateTechnicianProfile(ctx context.Context, userID int64, req UpdateTechnicianProfileRequest) (*Technician, error) {
	t, err := s.technicians.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Phone != nil {
		t.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Specialties != nil {
		t.Specialties = NormalizeSpecialties(req.Specialties)
	}
	if req.YearsExperience != nil {
		if *req.YearsExperience < 0 {
			return nil, ErrInvalidProfile
		}
		t.YearsExperience = *req.YearsExperience
	}
	if req.Bio != nil {
		t.Bio = strings.TrimSpace(*req.Bio)
	}
	if err := s.technicians.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) GetPublicTechnician(ctx context.Context, userID int64) (*PublicTechnician, error) {
	return s.technicians.GetPublic(ctx, userID)
}

// NormalizeSpecialties trims, lower-cases and de-duplicates, keeping order.
func NormalizeSpecialties(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
