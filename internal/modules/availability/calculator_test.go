package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReservationReader struct {
	mock.Mock
}

func (m *MockReservationReader) ReservationsForItem(ctx context.Context, itemID int64) ([]domain.Reservation, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

var day1 = time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

func hours(h int) time.Time { return day1.Add(time.Duration(h) * time.Hour) }

func res(id int64, qty, from, to int) domain.Reservation {
	return domain.Reservation{ID: id, ItemID: 1, ShootID: 1, Quantity: qty, StartTime: hours(from), EndTime: hours(to)}
}

func TestCalculator_ReservedQuantity(t *testing.T) {
	reader := new(MockReservationReader)
	reader.On("ReservationsForItem", mock.Anything, int64(1)).Return([]domain.Reservation{
		res(1, 2, 9, 18),
		res(2, 1, 18, 20), // starts exactly when the window ends
		res(3, 3, 12, 14),
	}, nil)

	calc := NewCalculator(reader)

	got, err := calc.ReservedQuantity(context.Background(), 1, hours(9), hours(18))
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = calc.ReservedQuantityExcluding(context.Background(), 1, hours(9), hours(18), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestCalculator_PropagatesReaderError(t *testing.T) {
	reader := new(MockReservationReader)
	reader.On("ReservationsForItem", mock.Anything, int64(7)).Return(nil, errors.New("boom"))

	_, err := NewCalculator(reader).ReservedQuantity(context.Background(), 7, hours(0), hours(1))
	assert.EqualError(t, err, "boom")
}

func TestSumOverlapping_IgnoresOtherItems(t *testing.T) {
	other := res(9, 4, 9, 18)
	other.ItemID = 2
	rows := []domain.Reservation{res(1, 1, 9, 18), other}

	assert.Equal(t, 1, SumOverlapping(rows, 1, hours(10), hours(11), 0))
	assert.Equal(t, 0, SumOverlapping(rows, 1, hours(10), hours(11), 1))
}

func TestReservedAt_HalfOpen(t *testing.T) {
	rows := []domain.Reservation{res(1, 2, 9, 18)}

	assert.Equal(t, 2, ReservedAt(rows, 1, hours(9)))
	assert.Equal(t, 0, ReservedAt(rows, 1, hours(18)))
}

func TestAvailableAt_FloorsAtZero(t *testing.T) {
	item := &domain.Item{TotalStock: 3}

	assert.Equal(t, 1, AvailableAt(item, 2))
	assert.Equal(t, 0, AvailableAt(item, 3))
	assert.Equal(t, 0, AvailableAt(item, 5))
}

func TestPeakReserved(t *testing.T) {
	rows := []domain.Reservation{
		res(1, 2, 9, 12),
		res(2, 2, 12, 15), // back to back with #1, never stacked
		res(3, 1, 10, 13),
		res(4, 5, 0, 2), // already over at `from`
	}

	assert.Equal(t, 3, PeakReserved(rows, 1, hours(3)))
	assert.Equal(t, 0, PeakReserved(nil, 1, hours(3)))
}
