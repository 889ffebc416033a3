package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"myhometech/internal/domain/notification"
	"myhometech/internal/domain/servicerequest"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, r *Rating) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = 99
	}
	return args.Error(0)
}

func (m *mockStore) ExistsForRequest(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) ListForRated(ctx context.Context, ratedID int64, limit, offset int) ([]Rating, error) {
	args := m.Called(ctx, ratedID, limit, offset)
	return args.Get(0).([]Rating), args.Error(1)
}

func (m *mockStore) Summary(ctx context.Context, ratedID int64) (Summary, error) {
	args := m.Called(ctx, ratedID)
	return args.Get(0).(Summary), args.Error(1)
}

type mockRequests struct {
	mock.Mock
}

func (m *mockRequests) GetByID(ctx context.Context, id int64) (*servicerequest.ServiceRequest, error) {
	args := m.Called(ctx, id)
	if sr, ok := args.Get(0).(*servicerequest.ServiceRequest); ok {
		return sr, args.Error(1)
	}
	return nil, args.Error(1)
}

type recorder struct {
	msgs []notification.Message
}

func (r *recorder) Dispatch(msgs ...notification.Message) { r.msgs = append(r.msgs, msgs...) }

func completedRequest() *servicerequest.ServiceRequest {
	tech := int64(20)
	return &servicerequest.ServiceRequest{ID: 7, ClientID: 10, TechnicianID: &tech, Status: servicerequest.StatusCompleted}
}

func TestCreate_Success(t *testing.T) {
	store := &mockStore{}
	requests := &mockRequests{}
	rec := &recorder{}
	svc := NewService(store, requests, rec)

	requests.On("GetByID", mock.Anything, int64(7)).Return(completedRequest(), nil)
	store.On("ExistsForRequest", mock.Anything, int64(7)).Return(false, nil)
	store.On("Create", mock.Anything, mock.MatchedBy(func(r *Rating) bool {
		return r.RaterID == 10 && r.RatedID == 20 && r.Score == 5 && r.Comment == "great"
	})).Return(nil)

	r, err := svc.Create(context.Background(), 10, CreateRequest{ServiceRequestID: 7, Score: 5, Comment: " great "})
	require.NoError(t, err)
	assert.Equal(t, int64(99), r.ID)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []int64{20}, rec.msgs[0].UserIDs)
	assert.Equal(t, notification.TypeRatingReceived, rec.msgs[0].Type)

	store.AssertExpectations(t)
	requests.AssertExpectations(t)
}

func TestCreate_OnlyCompletedRequests(t *testing.T) {
	for _, status := range []servicerequest.Status{
		servicerequest.StatusPending,
		servicerequest.StatusScheduled,
		servicerequest.StatusCancelled,
		servicerequest.StatusExpired,
	} {
		t.Run(string(status), func(t *testing.T) {
			store := &mockStore{}
			requests := &mockRequests{}
			sr := completedRequest()
			sr.Status = status
			requests.On("GetByID", mock.Anything, int64(7)).Return(sr, nil)

			_, err := NewService(store, requests, nil).Create(context.Background(), 10, CreateRequest{ServiceRequestID: 7, Score: 4})
			assert.ErrorIs(t, err, ErrNotCompleted)
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreate_Rejections(t *testing.T) {
	requests := &mockRequests{}
	store := &mockStore{}
	svc := NewService(store, requests, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 10, CreateRequest{ServiceRequestID: 7, Score: 6})
	assert.ErrorIs(t, err, ErrInvalidScore)

	requests.On("GetByID", mock.Anything, int64(8)).Return(nil, servicerequest.ErrNotFound)
	_, err = svc.Create(ctx, 10, CreateRequest{ServiceRequestID: 8, Score: 3})
	assert.ErrorIs(t, err, ErrRequestNotFound)

	requests.On("GetByID", mock.Anything, int64(7)).Return(completedRequest(), nil)
	_, err = svc.Create(ctx, 11, CreateRequest{ServiceRequestID: 7, Score: 3})
	assert.ErrorIs(t, err, ErrRequestNotFound)

	store.On("ExistsForRequest", mock.Anything, int64(7)).Return(true, nil)
	_, err = svc.Create(ctx, 10, CreateRequest{ServiceRequestID: 7, Score: 3})
	assert.ErrorIs(t, err, ErrAlreadyRated)
}
