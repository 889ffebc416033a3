package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"myhometech/internal/config"
	"myhometech/internal/database"
	"myhometech/internal/domain/auth"
	"myhometech/internal/realtime"
	"myhometech/internal/schema"
)

type e2eSuite struct {
	t          *testing.T
	app        *app
	router     http.Handler
	adminToken string
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv: "test",
		JWT:    config.JWTConfig{Secret: "test_secret_key_32_characters_min", AccessTTL: time.Hour},
		Schedule: config.ScheduleConfig{
			RequestTTL:      24 * time.Hour,
			ProposalCap:     3,
			ProposalSpacing: 30 * time.Minute,
			WorkdayStart:    "06:00",
			WorkdayEnd:      "18:00",
			Timezone:        "UTC",
			Slot:            2 * time.Hour,
			ExpirySweepSpec: "@every 5m",
		},
		Notify: config.NotifyConfig{Retention: 720 * time.Hour, CleanupSpec: "@daily"},
	}
}

func setupSuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, schema.Migrate(db, nil))

	hub := realtime.NewHub(zap.NewNop())
	t.Cleanup(hub.Close)

	a, err := newApp(testConfig(), db, hub, hub, zap.NewNop())
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass-1"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &auth.User{Name: "Admin", Email: "admin@example.com", PasswordHash: string(hash), Role: auth.RoleAdmin, IsActive: true}
	require.NoError(t, db.Create(admin).Error)
	adminToken, err := a.jwt.GenerateToken(admin.ID, string(auth.RoleAdmin))
	require.NoError(t, err)

	return &e2eSuite{t: t, app: a, router: a.router, adminToken: adminToken}
}

func (s *e2eSuite) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var env envelope
	if rr.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(rr.Body.Bytes()), []byte("{")) {
		require.NoError(s.t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr.Code, env
}

func (s *e2eSuite) mustDo(method, path, token string, body any, wantStatus int, dst any) {
	s.t.Helper()
	code, env := s.do(method, path, token, body)
	require.Equal(s.t, wantStatus, code, "%s %s: %s", method, path, string(env.Data))
	require.True(s.t, env.Success)
	if dst != nil {
		require.NoError(s.t, json.Unmarshal(env.Data, dst))
	}
}

func (s *e2eSuite) register(name, email, role string) (int64, string) {
	s.t.Helper()
	var out struct {
		User        struct{ ID int64 } `json:"user"`
		AccessToken string             `json:"access_token"`
	}
	s.mustDo(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret-pass-1", "role": role,
	}, http.StatusCreated, &out)
	return out.User.ID, out.AccessToken
}

func TestE2E_RepairLifecycle(t *testing.T) {
	s := setupSuite(t)
	admin := s.adminToken

	var appl struct{ ID int64 }
	s.mustDo(http.MethodPost, "/api/v1/appliances", admin, gin.H{"name": "Washer", "brand": "Bosch"}, http.StatusCreated, &appl)

	clientID, client := s.register("Client One", "client@example.com", "client")
	techID, tech := s.register("Tech One", "tech@example.com", "technician")

	var addr struct {
		ID        int64 `json:"id"`
		IsPrimary bool  `json:"is_primary"`
	}
	s.mustDo(http.MethodPost, "/api/v1/addresses", client, gin.H{"street": "Main 1", "city": "Berlin"}, http.StatusCreated, &addr)
	assert.True(t, addr.IsPrimary)

	day := time.Now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	requested := day.Add(10 * time.Hour)

	var sr struct {
		ID       int64  `json:"id"`
		ClientID int64  `json:"client_id"`
		Status   string `json:"status"`
	}
	s.mustDo(http.MethodPost, "/api/v1/service-requests", client, gin.H{
		"appliance_id": appl.ID, "address_id": addr.ID,
		"description": "Drum does not spin", "proposed_date_time": requested,
	}, http.StatusCreated, &sr)
	assert.Equal(t, "pending", sr.Status)
	assert.Equal(t, clientID, sr.ClientID)

	var available []struct{ ID int64 }
	s.mustDo(http.MethodGet, "/api/v1/service-requests/available-for-me", tech, nil, http.StatusOK, &available)
	require.Len(t, available, 1)
	assert.Equal(t, sr.ID, available[0].ID)

	// roles are enforced
	code, env := s.do(http.MethodPost, fmt.Sprintf("/api/v1/service-requests/%d/accept", sr.ID), client, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)

	var proposed struct {
		Proposal struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"proposal"`
	}
	s.mustDo(http.MethodPost, fmt.Sprintf("/api/v1/service-requests/%d/propose-alternative-date", sr.ID), tech,
		gin.H{"new_date_time": day.Add(12 * time.Hour), "comment": "Morning is booked"}, http.StatusCreated, &proposed)
	assert.Equal(t, "pending", proposed.Proposal.Status)

	var accepted struct {
		ServiceRequest struct {
			Status       string    `json:"status"`
			TechnicianID *int64    `json:"technician_id"`
			ScheduledAt  time.Time `json:"scheduled_at"`
		} `json:"service_request"`
	}
	s.mustDo(http.MethodPost, fmt.Sprintf("/api/v1/alternative-date-proposals/%d/accept", proposed.Proposal.ID), client, nil, http.StatusOK, &accepted)
	assert.Equal(t, "scheduled", accepted.ServiceRequest.Status)
	require.NotNil(t, accepted.ServiceRequest.TechnicianID)
	assert.Equal(t, techID, *accepted.ServiceRequest.TechnicianID)
	assert.True(t, day.Add(12*time.Hour).Equal(accepted.ServiceRequest.ScheduledAt))

	// rating before completion is refused
	code, env = s.do(http.MethodPost, "/api/v1/ratings", client, gin.H{"service_request_id": sr.ID, "score": 5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "SERVICE_REQUEST_NOT_COMPLETED", env.Error.Code)

	s.mustDo(http.MethodPost, fmt.Sprintf("/api/v1/service-requests/%d/complete", sr.ID), client, nil, http.StatusOK, &sr)
	assert.Equal(t, "completed", sr.Status)

	s.mustDo(http.MethodPost, "/api/v1/ratings", client, gin.H{"service_request_id": sr.ID, "score": 5, "comment": "Quick fix"}, http.StatusCreated, nil)
	code, env = s.do(http.MethodPost, "/api/v1/ratings", client, gin.H{"service_request_id": sr.ID, "score": 4})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_RATED", env.Error.Code)

	var ratings struct {
		Summary struct {
			Average float64 `json:"average"`
			Count   int64   `json:"count"`
		} `json:"summary"`
	}
	s.mustDo(http.MethodGet, fmt.Sprintf("/api/v1/technicians/%d/ratings", techID), "", nil, http.StatusOK, &ratings)
	assert.EqualValues(t, 1, ratings.Summary.Count)
	assert.InDelta(t, 5.0, ratings.Summary.Average, 0.001)

	s.app.notifier.Wait()

	var inbox struct {
		UnreadCount int64 `json:"unread_count"`
		Total       int64 `json:"total"`
	}
	s.mustDo(http.MethodGet, "/api/v1/notifications", tech, nil, http.StatusOK, &inbox)
	assert.GreaterOrEqual(t, inbox.Total, int64(2))
	assert.Equal(t, inbox.Total, inbox.UnreadCount)

	var summary struct {
		RequestsByStatus map[string]int64 `json:"requests_by_status"`
		Proposals        struct {
			Accepted int64 `json:"accepted"`
		} `json:"proposals"`
	}
	s.mustDo(http.MethodGet, "/api/v1/admin/reports/summary", admin, nil, http.StatusOK, &summary)
	assert.EqualValues(t, 1, summary.RequestsByStatus["completed"])
	assert.EqualValues(t, 1, summary.Proposals.Accepted)
}

func TestE2E_Health(t *testing.T) {
	s := setupSuite(t)
	code, env := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestE2E_RequiresToken(t *testing.T) {
	s := setupSuite(t)
	code, env := s.do(http.MethodGet, "/api/v1/service-requests/mine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	require.NotNil(t, env.Error)
}
