package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myceliumAI/polypore/internal/config"
	"github.com/myceliumAI/polypore/internal/database"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
	jwtsvc "github.com/myceliumAI/polypore/internal/pkg/jwt"
)

type testResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type suite struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func setupSuite(t *testing.T, now time.Time) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:app_test_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:              "test",
		JWTSecret:           "test-secret",
		JWTTTL:              time.Hour,
		CORSAllowedOrigins:  []string{"*"},
		SweepInterval:       time.Minute,
		TimelineDefaultDays: 7,
		TxMaxRetries:        3,
	}
	a := New(cfg, db, clock.Fixed(now))
	t.Cleanup(func() {
		_ = a.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	token, err := a.JWT.GenerateToken("gaffer", jwtsvc.RoleOperator)
	require.NoError(t, err)
	return &suite{t: t, router: a.Router(), token: token}
}

func (s *suite) do(method, path string, body any, auth bool) (int, testResponse) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp testResponse
	if w.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func (s *suite) id(resp testResponse) int64 {
	s.t.Helper()
	var v struct {
		ID int64 `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(resp.Data, &v))
	return v.ID
}

func TestReservationFlow(t *testing.T) {
	s := setupSuite(t, time.Date(2030, 3, 1, 8, 0, 0, 0, time.UTC))

	code, resp := s.do(http.MethodPost, "/api/v1/items", gin.H{"name": "Skypanel S60", "category": "light", "total_stock": 2}, true)
	require.Equal(t, http.StatusCreated, code)
	itemID := s.id(resp)

	code, resp = s.do(http.MethodPost, "/api/v1/shoots", gin.H{
		"name": "Album cover", "location": "Stage B",
		"start_time": "2030-03-01T09:00:00", "end_time": "2030-03-01T18:00:00",
	}, true)
	require.Equal(t, http.StatusCreated, code)
	shootID := s.id(resp)

	code, resp = s.do(http.MethodPost, "/api/v1/reservations", gin.H{"item_id": itemID, "shoot_id": shootID, "quantity": 2}, true)
	require.Equal(t, http.StatusCreated, code)
	firstID := s.id(resp)

	code, resp = s.do(http.MethodPost, "/api/v1/reservations", gin.H{"item_id": itemID, "shoot_id": shootID, "quantity": 1}, true)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "NO_AVAILABILITY", resp.Error.Code)

	code, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/reservations/%d/cancel", firstID), nil, true)
	assert.Equal(t, http.StatusNoContent, code)

	code, _ = s.do(http.MethodPost, "/api/v1/reservations", gin.H{"item_id": itemID, "shoot_id": shootID, "quantity": 1}, true)
	assert.Equal(t, http.StatusCreated, code)

	code, resp = s.do(http.MethodGet, "/api/v1/dashboard/timeline", nil, false)
	require.Equal(t, http.StatusOK, code)
	var timelines []struct {
		Days []struct {
			Available int `json:"available"`
			Total     int `json:"total"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &timelines))
	require.Len(t, timelines, 1)
	require.Len(t, timelines[0].Days, 7)
	assert.Equal(t, 1, timelines[0].Days[0].Available)
	assert.Equal(t, 2, timelines[0].Days[1].Available)

	code, resp = s.do(http.MethodGet, fmt.Sprintf("/api/v1/shoots/%d/packing-list", shootID), nil, false)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"item_name":"Skypanel S60"`)
}

func TestOperatorRoutesRequireToken(t *testing.T) {
	s := setupSuite(t, time.Date(2030, 3, 1, 8, 0, 0, 0, time.UTC))

	code, resp := s.do(http.MethodPost, "/api/v1/items", gin.H{"name": "FX3", "category": "camera", "total_stock": 1}, false)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "AUTH_HEADER_MISSING", resp.Error.Code)

	code, _ = s.do(http.MethodGet, "/api/v1/items", nil, false)
	assert.Equal(t, http.StatusOK, code)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
