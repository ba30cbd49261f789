package dashboard

import (
	"testing"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2030, 3, 1, 15, 30, 0, 0, time.UTC)

func day(n int) time.Time {
	return time.Date(2030, 3, n, 0, 0, 0, 0, time.UTC)
}

func TestProjectItemTimeline_ReservationSpanningOneDay(t *testing.T) {
	items := []domain.Item{{ID: 1, Name: "FX3", Category: domain.CategoryCamera, TotalStock: 5}}
	reservations := []domain.Reservation{
		{ID: 10, ItemID: 1, ShootID: 7, Quantity: 2, StartTime: day(3), EndTime: day(4)},
	}
	shoots := map[int64]domain.Shoot{7: {ID: 7, Name: "Music video"}}

	out, err := ProjectItemTimeline(items, reservations, shoots, 7, reference)
	require.NoError(t, err)
	require.Len(t, out, 1)

	days := out[0].Days
	require.Len(t, days, 7)
	assert.Equal(t, "2030-03-01", days[0].Date)
	for i, d := range days {
		assert.Equal(t, 5, d.Total)
		if i == 2 {
			assert.Equal(t, 3, d.Available)
			require.Len(t, d.Breakdown, 1)
			assert.Equal(t, BreakdownEntry{ShootID: 7, ShootName: "Music video", Quantity: 2}, d.Breakdown[0])
			continue
		}
		assert.Equal(t, 5, d.Available, "day %d", i)
		assert.Empty(t, d.Breakdown, "day %d", i)
	}
}

func TestProjectItemTimeline_MultiDayAndMissingShoot(t *testing.T) {
	items := []domain.Item{{ID: 1, Name: "Skypanel", Category: domain.CategoryLight, TotalStock: 2}}
	reservations := []domain.Reservation{
		{ID: 1, ItemID: 1, ShootID: 99, Quantity: 1, StartTime: day(1).Add(20 * time.Hour), EndTime: day(2).Add(2 * time.Hour)},
		{ID: 2, ItemID: 1, ShootID: 98, Quantity: 3, StartTime: day(2), EndTime: day(3)},
		{ID: 3, ItemID: 2, ShootID: 98, Quantity: 1, StartTime: day(1), EndTime: day(5)},
	}

	out, err := ProjectItemTimeline(items, reservations, nil, 3, reference)
	require.NoError(t, err)
	days := out[0].Days

	assert.Equal(t, 1, days[0].Available)
	assert.Equal(t, "99", days[0].Breakdown[0].ShootName)

	// over-reserved day floors at zero
	assert.Equal(t, 0, days[1].Available)
	assert.Len(t, days[1].Breakdown, 2)

	assert.Equal(t, 2, days[2].Available)
}

func TestProjectItemTimeline_InvalidHorizon(t *testing.T) {
	for _, days := range []int{0, -1, 366} {
		_, err := ProjectItemTimeline(nil, nil, nil, days, reference)
		assert.ErrorIs(t, err, ErrInvalidHorizon)
	}

	out, err := ProjectItemTimeline(nil, nil, nil, 365, reference)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestProjectCategoryTimeline(t *testing.T) {
	items := []domain.Item{
		{ID: 1, Name: "Skypanel", Category: domain.CategoryLight, TotalStock: 2},
		{ID: 2, Name: "FX3", Category: domain.CategoryCamera, TotalStock: 3},
		{ID: 3, Name: "Aputure", Category: domain.CategoryLight, TotalStock: 4},
	}
	reservations := []domain.Reservation{
		{ID: 1, ItemID: 3, ShootID: 1, Quantity: 4, StartTime: day(2), EndTime: day(3)},
	}

	timelines, err := ProjectItemTimeline(items, reservations, nil, 3, reference)
	require.NoError(t, err)

	out := ProjectCategoryTimeline(timelines)
	require.Len(t, out, 2)

	assert.Equal(t, domain.CategoryCamera, out[0].Category)
	assert.Equal(t, CategoryDay{Date: "2030-03-01", Available: 3, Total: 3}, out[0].Days[0])

	assert.Equal(t, domain.CategoryLight, out[1].Category)
	assert.Equal(t, CategoryDay{Date: "2030-03-01", Available: 6, Total: 6}, out[1].Days[0])
	assert.Equal(t, CategoryDay{Date: "2030-03-02", Available: 2, Total: 6}, out[1].Days[1])
}

func TestProjectCategoryTimeline_Empty(t *testing.T) {
	out := ProjectCategoryTimeline(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}
