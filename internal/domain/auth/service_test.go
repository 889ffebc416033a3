package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"myhometech/internal/domain/profile"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *User, rec ProfileRecord) error {
	args := m.Called(ctx, u, rec)
	if args.Error(0) == nil {
		u.ID = 101
		if rec != nil {
			rec.AttachUser(u.ID)
		}
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) UpdateName(ctx context.Context, id int64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockUserRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *mockUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type stubJWT struct{}

func (stubJWT) GenerateToken(userID int64, role string) (string, error) {
	return "token-" + role, nil
}

func (stubJWT) TTL() time.Duration { return time.Hour }

func newTestService(repo *mockUserRepo) *Service {
	s := NewService(repo, stubJWT{})
	s.cost = bcrypt.MinCost
	return s
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestService_Register_TechnicianCreatesProfile(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	ctx := context.Background()

	repo.On("ExistsByEmail", ctx, "ann@example.com").Return(false, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*auth.User"), mock.AnythingOfType("*profile.Technician")).Return(nil)

	res, err := svc.Register(ctx, RegisterRequest{
		Name:        "Ann",
		Email:       "  Ann@Example.com ",
		Password:    "password123",
		Role:        "technician",
		Specialties: []string{"Washer", "washer", " Fridge "},
	})
	require.NoError(t, err)

	assert.Equal(t, "token-technician", res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(res.User.PasswordHash), []byte("password123")))

	rec := repo.Calls[1].Arguments.Get(2).(*profile.Technician)
	assert.Equal(t, int64(101), rec.UserID)
	assert.Equal(t, []string{"washer", "fridge"}, rec.Specialties)
	repo.AssertExpectations(t)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	ctx := context.Background()

	repo.On("ExistsByEmail", ctx, "dup@example.com").Return(true, nil)

	_, err := svc.Register(ctx, RegisterRequest{Name: "D", Email: "dup@example.com", Password: "password123", Role: "client"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_AdminRoleRejected(t *testing.T) {
	svc := newTestService(new(mockUserRepo))
	_, err := svc.Register(context.Background(), RegisterRequest{Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestService_Login(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	ctx := context.Background()

	active := &User{ID: 1, Email: "c@example.com", PasswordHash: hashed(t, "secret-pass"), Role: RoleClient, IsActive: true}
	inactive := &User{ID: 2, Email: "x@example.com", PasswordHash: hashed(t, "secret-pass"), Role: RoleClient}

	repo.On("GetByEmail", ctx, "c@example.com").Return(active, nil)
	repo.On("GetByEmail", ctx, "x@example.com").Return(inactive, nil)
	repo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, ErrUserNotFound)

	res, err := svc.Login(ctx, LoginRequest{Email: "C@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "token-client", res.AccessToken)

	_, err = svc.Login(ctx, LoginRequest{Email: "c@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: "x@example.com", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestService_ChangePassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	ctx := context.Background()

	u := &User{ID: 5, PasswordHash: hashed(t, "old-password")}
	repo.On("GetByID", ctx, int64(5)).Return(u, nil)
	repo.On("UpdatePasswordHash", ctx, int64(5), mock.AnythingOfType("string")).Return(nil)

	err := svc.ChangePassword(ctx, 5, ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "new-password"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, 5, ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))
	newHash := repo.Calls[len(repo.Calls)-1].Arguments.String(2)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password")))
}

func TestService_SetActive(t *testing.T) {
	repo := new(mockUserRepo)
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.SetActive(ctx, 1, 1, false)
	assert.ErrorIs(t, err, ErrSelfDeactivation)

	repo.On("SetActive", ctx, int64(9), false).Return(nil)
	repo.On("GetByID", ctx, int64(9)).Return(&User{ID: 9, IsActive: false}, nil)

	u, err := svc.SetActive(ctx, 1, 9, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}
