package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSink struct {
	mock.Mock
}

func (m *MockSink) Name() string { return "mock" }

func (m *MockSink) Send(ctx context.Context, c Change) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNewChange(t *testing.T) {
	at := time.Date(2030, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
	r := &domain.Reservation{ID: 5, ItemID: 2, ShootID: 3, Quantity: 4}

	c := NewChange(ReservationCreated, r, at)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, ReservationCreated, c.Kind)
	assert.Equal(t, int64(5), c.ReservationID)
	assert.Equal(t, int64(2), c.ItemID)
	assert.Equal(t, 4, c.Quantity)
	assert.Equal(t, time.UTC, c.OccurredAt.Location())
}

func TestFanout_DeliversToEverySinkDespiteFailures(t *testing.T) {
	failing := new(MockSink)
	failing.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	healthy := new(MockSink)
	healthy.On("Send", mock.Anything, mock.Anything).Return(nil)

	f := NewFanout(failing, healthy)
	f.Publish(context.Background(), Change{Kind: ReservationCancelled, ReservationID: 1})

	failing.AssertNumberOfCalls(t, "Send", 1)
	healthy.AssertNumberOfCalls(t, "Send", 1)
}

func TestFanout_CloseReturnsFirstError(t *testing.T) {
	a := new(MockSink)
	a.On("Close").Return(errors.New("first"))
	b := new(MockSink)
	b.On("Close").Return(errors.New("second"))

	err := NewFanout(a, b).Close()
	assert.EqualError(t, err, "first")
	b.AssertCalled(t, "Close")
}
