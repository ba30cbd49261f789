package inventory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/modules/availability"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
	"github.com/myceliumAI/polypore/internal/repository"
)

type ItemStore interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int64) (*domain.Item, error)
	List(ctx context.Context) ([]domain.Item, error)
}

// Locker runs stock edits under the same per-item lock reservations use.
type Locker interface {
	WithItemLocks(ctx context.Context, itemIDs []int64, fn func(tx repository.ReservationTx) error) error
}

type Service struct {
	items  ItemStore
	locker Locker
	clock  clock.Clock
}

func NewService(items ItemStore, locker Locker, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{items: items, locker: locker, clock: clk}
}

func (s *Service) List(ctx context.Context) ([]domain.Item, error) {
	return s.items.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return item, nil
}

func (s *Service) Create(ctx context.Context, req CreateItemRequest) (*domain.Item, error) {
	name := strings.TrimSpace(req.Name)
	category := domain.ItemCategory(req.Category)
	if name == "" || !category.Valid() || req.TotalStock == nil || *req.TotalStock < 0 {
		return nil, ErrInvalidPayload
	}

	item := &domain.Item{Name: name, Category: category, TotalStock: *req.TotalStock}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	log.Printf("item_created id=%d category=%s total_stock=%d", item.ID, item.Category, item.TotalStock)
	return item, nil
}

// Update applies a partial edit. Lowering total stock below the peak load of reservations
// that have not ended yet is rejected.
func (s *Service) Update(ctx context.Context, id int64, req UpdateItemRequest) (*domain.Item, error) {
	var updated *domain.Item
	err := s.locker.WithItemLocks(ctx, []int64{id}, func(tx repository.ReservationTx) error {
		item, err := tx.Item(ctx, id)
		if err != nil {
			return notFound(err)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return ErrInvalidPayload
			}
			item.Name = name
		}
		if req.Category != nil {
			category := domain.ItemCategory(*req.Category)
			if !category.Valid() {
				return ErrInvalidPayload
			}
			item.Category = category
		}
		if req.TotalStock != nil {
			if *req.TotalStock < 0 {
				return ErrInvalidPayload
			}
			if *req.TotalStock < item.TotalStock {
				rows, err := tx.ReservationsForItem(ctx, id)
				if err != nil {
					return err
				}
				if peak := availability.PeakReserved(rows, id, s.clock.Now()); *req.TotalStock < peak {
					return fmt.Errorf("%w: %d reserved at peak", ErrStockBelowReserved, peak)
				}
			}
			item.TotalStock = *req.TotalStock
		}

		if err := tx.SaveItem(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("item_updated id=%d category=%s total_stock=%d", updated.ID, updated.Category, updated.TotalStock)
	return updated, nil
}

// Delete removes the item and every reservation of it in one transaction.
func (s *Service) Delete(ctx context.Context, id int64) (*DeleteItemResponse, error) {
	var removed int64
	err := s.locker.WithItemLocks(ctx, []int64{id}, func(tx repository.ReservationTx) error {
		n, err := tx.DeleteItem(ctx, id)
		if err != nil {
			return notFound(err)
		}
		removed = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("item_deleted id=%d deleted_reservations=%d", id, removed)
	return &DeleteItemResponse{ItemID: id, DeletedReservations: removed}, nil
}

func notFound(err error) error {
	if repository.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
