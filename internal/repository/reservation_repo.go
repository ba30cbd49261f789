package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMaxRetries = 3

// ReservationTx is the view of the store available inside one locked unit of work.
type ReservationTx interface {
	Item(ctx context.Context, id int64) (*domain.Item, error)
	Shoot(ctx context.Context, id int64) (*domain.Shoot, error)
	Reservation(ctx context.Context, id int64) (*domain.Reservation, error)
	ReservationsForItem(ctx context.Context, itemID int64) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, r *domain.Reservation) error
	SaveReservation(ctx context.Context, r *domain.Reservation) error
	DeleteReservation(ctx context.Context, id int64) error
	SaveItem(ctx context.Context, item *domain.Item) error
	DeleteItem(ctx context.Context, id int64) (int64, error)
}

type ReservationRepository struct {
	db         *gorm.DB
	locks      *itemLocks
	maxRetries int
}

func NewReservationRepository(db *gorm.DB, maxRetries int) *ReservationRepository {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &ReservationRepository{
		db:         db,
		locks:      newItemLocks(),
		maxRetries: maxRetries,
	}
}

func (r *ReservationRepository) List(ctx context.Context) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := r.db.WithContext(ctx).Order("start_time, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	var m domain.Reservation
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *ReservationRepository) ReservationsForItem(ctx context.Context, itemID int64) ([]domain.Reservation, error) {
	return reservationsForItem(r.db.WithContext(ctx), itemID)
}

func (r *ReservationRepository) ListByShoot(ctx context.Context, shootID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := r.db.WithContext(ctx).Where("shoot_id = ?", shootID).Order("item_id, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteEndedBy removes every reservation whose end is at or before cutoff and returns them.
// No item lock is taken: removing past load can never break the stock invariant.
func (r *ReservationRepository) DeleteEndedBy(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error) {
	var removed []domain.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("end_time <= ?", cutoff.UTC()).Find(&removed).Error; err != nil {
			return err
		}
		if len(removed) == 0 {
			return nil
		}
		ids := make([]int64, 0, len(removed))
		for _, m := range removed {
			ids = append(ids, m.ID)
		}
		return tx.Where("id IN ?", ids).Delete(&domain.Reservation{}).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// WithItemLocks runs fn in one transaction holding the per-item locks for itemIDs.
// Locks are taken in ascending id order, first in process then on the item rows
// (SELECT ... FOR UPDATE, a no-op on SQLite which serializes writers). The whole unit is
// replayed when the database reports a serialization failure, deadlock or busy lock.
func (r *ReservationRepository) WithItemLocks(ctx context.Context, itemIDs []int64, fn func(tx ReservationTx) error) error {
	release := r.locks.acquire(itemIDs)
	defer release()

	ids := uniqueSorted(itemIDs)

	var err error
	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if len(ids) > 0 {
				var locked []domain.Item
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("id IN ?", ids).
					Order("id").
					Find(&locked).Error; err != nil {
					return err
				}
			}
			return fn(&reservationTx{db: tx})
		})
		if !isRetryable(err) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Printf("reservation_tx_retry attempt=%d item_ids=%v error=%q", attempt, ids, err.Error())
		time.Sleep(time.Duration(attempt) * 10 * time.Millisecond)
	}
	return fmt.Errorf("transaction gave up after %d attempts: %w", r.maxRetries, err)
}

type reservationTx struct {
	db *gorm.DB
}

func (t *reservationTx) Item(_ context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	if err := t.db.First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (t *reservationTx) Shoot(_ context.Context, id int64) (*domain.Shoot, error) {
	var s domain.Shoot
	if err := t.db.First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (t *reservationTx) Reservation(_ context.Context, id int64) (*domain.Reservation, error) {
	var m domain.Reservation
	if err := t.db.First(&m, id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (t *reservationTx) ReservationsForItem(_ context.Context, itemID int64) ([]domain.Reservation, error) {
	return reservationsForItem(t.db, itemID)
}

func (t *reservationTx) CreateReservation(_ context.Context, m *domain.Reservation) error {
	return t.db.Create(m).Error
}

func (t *reservationTx) SaveReservation(_ context.Context, m *domain.Reservation) error {
	return t.db.Save(m).Error
}

func (t *reservationTx) DeleteReservation(_ context.Context, id int64) error {
	return t.db.Delete(&domain.Reservation{}, id).Error
}

func (t *reservationTx) SaveItem(_ context.Context, item *domain.Item) error {
	return t.db.Save(item).Error
}

// DeleteItem removes the item together with its reservations and reports how many
// reservations went with it.
func (t *reservationTx) DeleteItem(_ context.Context, id int64) (int64, error) {
	res := t.db.Where("item_id = ?", id).Delete(&domain.Reservation{})
	if res.Error != nil {
		return 0, res.Error
	}
	del := t.db.Delete(&domain.Item{}, id)
	if del.Error != nil {
		return 0, del.Error
	}
	if del.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return res.RowsAffected, nil
}

func reservationsForItem(db *gorm.DB, itemID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	if err := db.Where("item_id = ?", itemID).Order("start_time, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// IsNotFound reports whether err means the looked-up row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
