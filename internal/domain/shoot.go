package domain

import (
	"time"

	"gorm.io/gorm"
)

// Shoot is the event equipment is reserved for. EndTime is strictly after StartTime.
type Shoot struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null"`
	Location  string    `json:"location"`
	StartTime time.Time `json:"start_time" gorm:"not null;index"`
	EndTime   time.Time `json:"end_time" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Shoot) TableName() string { return "shoots" }

func (s *Shoot) BeforeSave(_ *gorm.DB) error {
	s.StartTime = canonical(s.StartTime)
	s.EndTime = canonical(s.EndTime)
	return nil
}
