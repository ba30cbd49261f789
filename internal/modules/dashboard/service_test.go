package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockItemLister struct{ mock.Mock }

func (m *MockItemLister) List(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

type MockShootLister struct{ mock.Mock }

func (m *MockShootLister) List(ctx context.Context) ([]domain.Shoot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Shoot), args.Error(1)
}

type MockReservationLister struct{ mock.Mock }

func (m *MockReservationLister) List(ctx context.Context) ([]domain.Reservation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

func newMocks() (*MockItemLister, *MockShootLister, *MockReservationLister) {
	items := new(MockItemLister)
	items.On("List", mock.Anything).Return([]domain.Item{
		{ID: 1, Name: "FX3", Category: domain.CategoryCamera, TotalStock: 2},
	}, nil)
	shoots := new(MockShootLister)
	shoots.On("List", mock.Anything).Return([]domain.Shoot{
		{ID: 4, Name: "Launch", StartTime: day(1).Add(9 * time.Hour), EndTime: day(1).Add(18 * time.Hour)},
	}, nil)
	reservations := new(MockReservationLister)
	reservations.On("List", mock.Anything).Return([]domain.Reservation{
		{ID: 1, ItemID: 1, ShootID: 4, Quantity: 1, StartTime: day(1).Add(9 * time.Hour), EndTime: day(1).Add(18 * time.Hour)},
	}, nil)
	return items, shoots, reservations
}

func TestService_InventorySnapshot_HalfOpen(t *testing.T) {
	items, shoots, reservations := newMocks()
	svc := NewService(items, shoots, reservations, clock.Fixed(reference))
	ctx := context.Background()

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"before start", day(1).Add(8 * time.Hour), 2},
		{"at start", day(1).Add(9 * time.Hour), 1},
		{"during", day(1).Add(12 * time.Hour), 1},
		{"at end", day(1).Add(18 * time.Hour), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := svc.InventorySnapshot(ctx, tt.at)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, tt.want, rows[0].AvailableNow)
			assert.Equal(t, 2, rows[0].TotalStock)
		})
	}
}

func TestService_ItemTimeline_UsesShootNames(t *testing.T) {
	items, shoots, reservations := newMocks()
	svc := NewService(items, shoots, reservations, clock.Fixed(reference))

	out, err := svc.ItemTimeline(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Days[0].Available)
	assert.Equal(t, "Launch", out[0].Days[0].Breakdown[0].ShootName)
	assert.Equal(t, 2, out[0].Days[1].Available)
}

func TestService_ItemTimeline_Errors(t *testing.T) {
	items := new(MockItemLister)
	items.On("List", mock.Anything).Return(nil, errors.New("db down"))
	svc := NewService(items, new(MockShootLister), new(MockReservationLister), clock.Fixed(reference))

	_, err := svc.ItemTimeline(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidHorizon)
	items.AssertNotCalled(t, "List", mock.Anything)

	_, err = svc.CategoryTimeline(context.Background(), 7)
	assert.ErrorContains(t, err, "db down")
}

func TestHandler_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	items, shoots, reservations := newMocks()
	svc := NewService(items, shoots, reservations, clock.Fixed(day(1).Add(10*time.Hour)))

	router := gin.New()
	NewHandler(svc, 30).RegisterRoutes(router.Group("/api/v1"))

	get := func(path string) (*httptest.ResponseRecorder, map[string]any) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w, body
	}

	w, body := get("/api/v1/dashboard/inventory")
	assert.Equal(t, http.StatusOK, w.Code)
	rows := body["data"].([]any)
	assert.Equal(t, float64(1), rows[0].(map[string]any)["available_now"])

	w, body = get("/api/v1/dashboard/timeline")
	assert.Equal(t, http.StatusOK, w.Code)
	timeline := body["data"].([]any)[0].(map[string]any)
	assert.Len(t, timeline["days"], 30)

	w, body = get("/api/v1/dashboard/timeline-by-category?days=5")
	assert.Equal(t, http.StatusOK, w.Code)
	category := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "camera", category["category"])
	assert.Len(t, category["days"], 5)

	for _, q := range []string{"0", "366", "abc"} {
		w, body = get("/api/v1/dashboard/timeline?days=" + q)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, "INVALID_PAYLOAD", body["error"].(map[string]any)["code"])
	}
}
