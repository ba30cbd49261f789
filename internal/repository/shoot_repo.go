package repository

import (
	"context"

	"github.com/myceliumAI/polypore/internal/domain"

	"gorm.io/gorm"
)

type ShootRepository struct {
	db *gorm.DB
}

func NewShootRepository(db *gorm.DB) *ShootRepository {
	return &ShootRepository{db: db}
}

func (r *ShootRepository) Create(ctx context.Context, s *domain.Shoot) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ShootRepository) GetByID(ctx context.Context, id int64) (*domain.Shoot, error) {
	var s domain.Shoot
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ShootRepository) List(ctx context.Context) ([]domain.Shoot, error) {
	var shoots []domain.Shoot
	if err := r.db.WithContext(ctx).Order("start_time, id").Find(&shoots).Error; err != nil {
		return nil, err
	}
	return shoots, nil
}

// Save persists shoot fields. Reservations keep the period they were stamped with.
func (r *ShootRepository) Save(ctx context.Context, s *domain.Shoot) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// DeleteWithReservations removes the shoot and every reservation bound to it in one
// transaction and returns the deleted reservations.
func (r *ShootRepository) DeleteWithReservations(ctx context.Context, id int64) ([]domain.Reservation, error) {
	var removed []domain.Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.Shoot
		if err := tx.First(&s, id).Error; err != nil {
			return err
		}
		if err := tx.Where("shoot_id = ?", id).Find(&removed).Error; err != nil {
			return err
		}
		if err := tx.Where("shoot_id = ?", id).Delete(&domain.Reservation{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Shoot{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}
