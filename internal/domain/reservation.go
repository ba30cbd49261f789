package domain

import (
	"time"

	"gorm.io/gorm"
)

// Reservation holds Quantity units of an item for a shoot. StartTime and EndTime are copied
// from the shoot when the reservation is created or rebound, and stay put if the shoot moves.
type Reservation struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	ItemID      int64     `json:"item_id" gorm:"not null;index"`
	ShootID     int64     `json:"shoot_id" gorm:"not null;index"`
	Quantity    int       `json:"quantity" gorm:"not null;check:chk_reservations_quantity,quantity >= 1"`
	StartTime   time.Time `json:"start_time" gorm:"not null;index"`
	EndTime     time.Time `json:"end_time" gorm:"not null;index"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }

func (r *Reservation) BeforeSave(_ *gorm.DB) error {
	r.StartTime = canonical(r.StartTime)
	r.EndTime = canonical(r.EndTime)
	return nil
}

// Started reports whether the reservation has begun at now. A start equal to now counts as started.
func (r *Reservation) Started(now time.Time) bool {
	return !r.StartTime.After(now)
}

// canonical stores instants in UTC at the precision PostgreSQL keeps.
func canonical(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
