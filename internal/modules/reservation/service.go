package reservation

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/modules/availability"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
	"github.com/myceliumAI/polypore/internal/repository"
)

// maxRebinds bounds how often a mutation chases a reservation whose item binding changed
// between the unlocked lookup and taking the item lock.
const maxRebinds = 3

var errRebound = errors.New("reservation item changed while waiting for lock")

// Service creates, updates and cancels reservations without overselling stock. Each
// mutation reads, checks and writes inside one per-item locked transaction.
type Service struct {
	store  Store
	notifs ChangePublisher
	clock  clock.Clock
}

func NewService(store Store, notifs ChangePublisher, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		store:  store,
		notifs: notifs,
		clock:  clk,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Reservation, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, req CreateReservationRequest) (*domain.Reservation, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be >= 1", ErrInvalidPayload)
	}

	var created *domain.Reservation
	err := s.store.WithItemLocks(ctx, []int64{req.ItemID}, func(tx repository.ReservationTx) error {
		item, err := tx.Item(ctx, req.ItemID)
		if err != nil {
			return notFound(err, "item")
		}
		shoot, err := tx.Shoot(ctx, req.ShootID)
		if err != nil {
			return notFound(err, "shoot")
		}

		reserved, err := availability.NewCalculator(tx).ReservedQuantity(ctx, item.ID, shoot.StartTime, shoot.EndTime)
		if err != nil {
			return err
		}
		if req.Quantity > availability.AvailableAt(item, reserved) {
			return ErrNoAvailability
		}

		r := &domain.Reservation{
			ItemID:      item.ID,
			ShootID:     shoot.ID,
			Quantity:    req.Quantity,
			StartTime:   shoot.StartTime,
			EndTime:     shoot.EndTime,
			Description: req.Description,
		}
		if err := tx.CreateReservation(ctx, r); err != nil {
			return err
		}
		created = r
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	log.Printf("reservation_created id=%d item_id=%d shoot_id=%d quantity=%d", created.ID, created.ItemID, created.ShootID, created.Quantity)
	s.publish(ctx, events.ReservationCreated, created)
	return created, nil
}

// UpdateQuantity changes only the quantity of a reservation that has not started yet.
func (s *Service) UpdateQuantity(ctx context.Context, id int64, quantity int) (*domain.Reservation, error) {
	var updated *domain.Reservation
	err := s.withReservation(ctx, id, nil, func(tx repository.ReservationTx, r *domain.Reservation) error {
		if r.Started(s.clock.Now()) {
			return ErrAlreadyStarted
		}
		if quantity < 1 {
			return fmt.Errorf("%w: quantity must be >= 1", ErrInvalidPayload)
		}

		item, err := tx.Item(ctx, r.ItemID)
		if err != nil {
			return notFound(err, "item")
		}
		reserved, err := availability.NewCalculator(tx).ReservedQuantityExcluding(ctx, item.ID, r.StartTime, r.EndTime, r.ID)
		if err != nil {
			return err
		}
		if quantity > availability.AvailableAt(item, reserved) {
			return ErrNoAvailability
		}

		r.Quantity = quantity
		if err := tx.SaveReservation(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reservation_updated id=%d quantity=%d", updated.ID, updated.Quantity)
	s.publish(ctx, events.ReservationUpdated, updated)
	return updated, nil
}

// Update rebinds item, shoot, quantity and description in one step. The reservation
// period is re-stamped from the (possibly new) shoot.
func (s *Service) Update(ctx context.Context, id int64, req UpdateReservationRequest) (*domain.Reservation, error) {
	var extra []int64
	if req.ItemID != nil {
		extra = append(extra, *req.ItemID)
	}

	var updated *domain.Reservation
	err := s.withReservation(ctx, id, extra, func(tx repository.ReservationTx, r *domain.Reservation) error {
		if r.Started(s.clock.Now()) {
			return ErrAlreadyStarted
		}

		itemID, shootID, quantity := r.ItemID, r.ShootID, r.Quantity
		if req.ItemID != nil {
			itemID = *req.ItemID
		}
		if req.ShootID != nil {
			shootID = *req.ShootID
		}
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if quantity < 1 {
			return fmt.Errorf("%w: quantity must be >= 1", ErrInvalidPayload)
		}

		item, err := tx.Item(ctx, itemID)
		if err != nil {
			return notFound(err, "item")
		}
		shoot, err := tx.Shoot(ctx, shootID)
		if err != nil {
			return notFound(err, "shoot")
		}

		// the old footprint only counts against the same item
		calc := availability.NewCalculator(tx)
		var reserved int
		if itemID == r.ItemID {
			reserved, err = calc.ReservedQuantityExcluding(ctx, itemID, shoot.StartTime, shoot.EndTime, r.ID)
		} else {
			reserved, err = calc.ReservedQuantity(ctx, itemID, shoot.StartTime, shoot.EndTime)
		}
		if err != nil {
			return err
		}
		if quantity > availability.AvailableAt(item, reserved) {
			return ErrNoAvailability
		}

		r.ItemID = itemID
		r.ShootID = shootID
		r.Quantity = quantity
		r.StartTime = shoot.StartTime
		r.EndTime = shoot.EndTime
		if req.Description != nil {
			r.Description = *req.Description
		}
		if err := tx.SaveReservation(ctx, r); err != nil {
			return err
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reservation_updated id=%d item_id=%d shoot_id=%d quantity=%d", updated.ID, updated.ItemID, updated.ShootID, updated.Quantity)
	s.publish(ctx, events.ReservationUpdated, updated)
	return updated, nil
}

// Cancel deletes a reservation that has not started. Cancelling an unknown id is a no-op.
func (s *Service) Cancel(ctx context.Context, id int64) error {
	var cancelled *domain.Reservation
	err := s.withReservation(ctx, id, nil, func(tx repository.ReservationTx, r *domain.Reservation) error {
		if r.Started(s.clock.Now()) {
			return ErrAlreadyStarted
		}
		if err := tx.DeleteReservation(ctx, r.ID); err != nil {
			return err
		}
		cancelled = r
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	log.Printf("reservation_cancelled id=%d item_id=%d quantity=%d", cancelled.ID, cancelled.ItemID, cancelled.Quantity)
	s.publish(ctx, events.ReservationCancelled, cancelled)
	return nil
}

// withReservation runs fn on a fresh copy of reservation id while holding the lock of its
// item plus any extra items. Errors come back classified.
func (s *Service) withReservation(ctx context.Context, id int64, extra []int64, fn func(tx repository.ReservationTx, r *domain.Reservation) error) error {
	for attempt := 0; attempt < maxRebinds; attempt++ {
		current, err := s.store.GetByID(ctx, id)
		if err != nil {
			return classify(notFound(err, "reservation"))
		}

		itemIDs := append([]int64{current.ItemID}, extra...)
		err = s.store.WithItemLocks(ctx, itemIDs, func(tx repository.ReservationTx) error {
			locked, err := tx.Reservation(ctx, id)
			if err != nil {
				return notFound(err, "reservation")
			}
			if locked.ItemID != current.ItemID {
				return errRebound
			}
			return fn(tx, locked)
		})
		if errors.Is(err, errRebound) {
			continue
		}
		return classify(err)
	}
	return fmt.Errorf("%w: %w", ErrInternal, errRebound)
}

func (s *Service) publish(ctx context.Context, kind events.Kind, r *domain.Reservation) {
	if s.notifs == nil {
		return
	}
	s.notifs.Publish(ctx, events.NewChange(kind, r, s.clock.Now()))
}

func notFound(err error, what string) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// classify keeps engine errors as they are and wraps anything else as ErrInternal.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrNoAvailability),
		errors.Is(err, ErrAlreadyStarted),
		errors.Is(err, ErrInternal):
		return err
	case repository.IsNotFound(err):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}
