package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"myhometech/internal/domain/profile"
)

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *User, profile ProfileRecord) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
	TTL() time.Duration
}

// Service contains all business logic for authentication
type Service struct {
	users UserRepositoryInterface
	jwt   jwtService
	cost  int
}

func NewService(users UserRepositoryInterface, jwt jwtService) *Service {
	return &Service{users: users, jwt: jwt, cost: bcrypt.DefaultCost}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a client or technician together with its profile row.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	role := UserRole(req.Role)
	if role != RoleClient && role != RoleTechnician {
		return nil, ErrInvalidRole
	}

	email := normalizeEmail(req.Email)
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}

	var rec ProfileRecord
	switch role {
	case RoleClient:
		rec = &profile.Client{Phone: strings.TrimSpace(req.Phone)}
	case RoleTechnician:
		rec = &profile.Technician{
			Phone:           strings.TrimSpace(req.Phone),
			Specialties:     profile.NormalizeSpecialties(req.Specialties),
			YearsExperience: req.YearsExperience,
			Bio:             strings.TrimSpace(req.Bio),
		}
	}

	if err := s.users.Create(ctx, user, rec); err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return s.issue(user)
}

func (s *Service) issue(user *User) (*AuthResult, error) {
	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(ctx context.Context, userID int64, req UpdateMeRequest) (*User, error) {
	if err := s.users.UpdateName(ctx, userID, strings.TrimSpace(req.Name)); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, string(hash))
}

// SetActive flips the active flag. Users are never hard-deleted.
func (s *Service) SetActive(ctx context.Context, adminID, userID int64, active bool) (*User, error) {
	if adminID == userID && !active {
		return nil, ErrSelfDeactivation
	}
	if err := s.users.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}
