// Package availability computes how much of an item's stock is free over a period.
package availability

import (
	"context"
	"sort"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/pkg/interval"
)

// ReservationReader lists the live reservations of one item. Both the repository and a
// locked transaction satisfy it.
type ReservationReader interface {
	ReservationsForItem(ctx context.Context, itemID int64) ([]domain.Reservation, error)
}

type Calculator struct {
	reservations ReservationReader
}

func NewCalculator(reservations ReservationReader) *Calculator {
	return &Calculator{reservations: reservations}
}

// ReservedQuantity sums the quantity of the item's reservations overlapping [start, end).
func (c *Calculator) ReservedQuantity(ctx context.Context, itemID int64, start, end time.Time) (int, error) {
	rows, err := c.reservations.ReservationsForItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return SumOverlapping(rows, itemID, start, end, 0), nil
}

// ReservedQuantityExcluding is ReservedQuantity without the footprint of reservation excludeID.
func (c *Calculator) ReservedQuantityExcluding(ctx context.Context, itemID int64, start, end time.Time, excludeID int64) (int, error) {
	rows, err := c.reservations.ReservationsForItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return SumOverlapping(rows, itemID, start, end, excludeID), nil
}

// SumOverlapping adds up reservations of itemID overlapping [start, end), skipping
// excludeID when it is non-zero.
func SumOverlapping(rows []domain.Reservation, itemID int64, start, end time.Time, excludeID int64) int {
	total := 0
	for _, r := range rows {
		if r.ItemID != itemID || (excludeID != 0 && r.ID == excludeID) {
			continue
		}
		if interval.Overlaps(r.StartTime, r.EndTime, start, end) {
			total += r.Quantity
		}
	}
	return total
}

// ReservedAt adds up reservations of itemID whose [start, end) contains t.
func ReservedAt(rows []domain.Reservation, itemID int64, t time.Time) int {
	total := 0
	for _, r := range rows {
		if r.ItemID == itemID && interval.Contains(r.StartTime, r.EndTime, t) {
			total += r.Quantity
		}
	}
	return total
}

// AvailableAt floors at zero so a transient inconsistency never reports negative stock.
func AvailableAt(item *domain.Item, reserved int) int {
	return max(item.TotalStock-reserved, 0)
}

// PeakReserved returns the highest load the item carries at any instant from `from` on.
func PeakReserved(rows []domain.Reservation, itemID int64, from time.Time) int {
	type edge struct {
		at    time.Time
		delta int
	}

	edges := make([]edge, 0, 2*len(rows))
	for _, r := range rows {
		if r.ItemID != itemID || !interval.UTC(r.EndTime).After(interval.UTC(from)) {
			continue
		}
		edges = append(edges, edge{at: interval.UTC(r.StartTime), delta: r.Quantity})
		edges = append(edges, edge{at: interval.UTC(r.EndTime), delta: -r.Quantity})
	}

	// releases sort before acquisitions at the same instant: intervals are half-open.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].delta < edges[j].delta
		}
		return edges[i].at.Before(edges[j].at)
	})

	peak, running := 0, 0
	for _, e := range edges {
		running += e.delta
		if running > peak {
			peak = running
		}
	}
	return peak
}
