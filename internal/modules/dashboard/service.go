package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/modules/availability"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
)

type ItemLister interface {
	List(ctx context.Context) ([]domain.Item, error)
}

type ShootLister interface {
	List(ctx context.Context) ([]domain.Shoot, error)
}

type ReservationLister interface {
	List(ctx context.Context) ([]domain.Reservation, error)
}

// InventoryRow is the availability of one item at a single instant.
type InventoryRow struct {
	ItemID       int64               `json:"item_id"`
	Name         string              `json:"name"`
	Category     domain.ItemCategory `json:"category"`
	TotalStock   int                 `json:"total_stock"`
	AvailableNow int                 `json:"available_now"`
}

// Service answers read-only dashboard queries. Reads are not locked; a snapshot may lag a
// concurrent write by one transaction.
type Service struct {
	items        ItemLister
	shoots       ShootLister
	reservations ReservationLister
	clock        clock.Clock
}

func NewService(items ItemLister, shoots ShootLister, reservations ReservationLister, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{items: items, shoots: shoots, reservations: reservations, clock: clk}
}

// InventorySnapshot reports per-item availability at `at`. A reservation counts when
// at falls inside its half-open period.
func (s *Service) InventorySnapshot(ctx context.Context, at time.Time) ([]InventoryRow, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	rows := make([]InventoryRow, 0, len(items))
	for i := range items {
		item := &items[i]
		reserved := availability.ReservedAt(reservations, item.ID, at)
		rows = append(rows, InventoryRow{
			ItemID:       item.ID,
			Name:         item.Name,
			Category:     item.Category,
			TotalStock:   item.TotalStock,
			AvailableNow: availability.AvailableAt(item, reserved),
		})
	}
	return rows, nil
}

// InventoryNow is InventorySnapshot at the current instant.
func (s *Service) InventoryNow(ctx context.Context) ([]InventoryRow, error) {
	return s.InventorySnapshot(ctx, s.clock.Now())
}

// ItemTimeline projects horizonDays days starting today (UTC).
func (s *Service) ItemTimeline(ctx context.Context, horizonDays int) ([]ItemTimeline, error) {
	if !ValidHorizon(horizonDays) {
		return nil, ErrInvalidHorizon
	}
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	shoots, err := s.shoots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shoots: %w", err)
	}

	byID := make(map[int64]domain.Shoot, len(shoots))
	for _, sh := range shoots {
		byID[sh.ID] = sh
	}
	return ProjectItemTimeline(items, reservations, byID, horizonDays, s.clock.Now())
}

func (s *Service) CategoryTimeline(ctx context.Context, horizonDays int) ([]CategoryTimeline, error) {
	timelines, err := s.ItemTimeline(ctx, horizonDays)
	if err != nil {
		return nil, err
	}
	return ProjectCategoryTimeline(timelines), nil
}
