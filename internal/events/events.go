// Package events fans reservation changes out to dashboards and message brokers.
package events

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/myceliumAI/polypore/internal/domain"
)

type Kind string

const (
	ReservationCreated   Kind = "reservation.created"
	ReservationUpdated   Kind = "reservation.updated"
	ReservationCancelled Kind = "reservation.cancelled"
	ReservationExpired   Kind = "reservation.expired"
)

// Change describes one committed mutation of the reservation store.
type Change struct {
	ID            string    `json:"id"`
	Kind          Kind      `json:"type"`
	ReservationID int64     `json:"reservation_id"`
	ItemID        int64     `json:"item_id"`
	ShootID       int64     `json:"shoot_id"`
	Quantity      int       `json:"quantity"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func NewChange(kind Kind, r *domain.Reservation, at time.Time) Change {
	return Change{
		ID:            uuid.NewString(),
		Kind:          kind,
		ReservationID: r.ID,
		ItemID:        r.ItemID,
		ShootID:       r.ShootID,
		Quantity:      r.Quantity,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		OccurredAt:    at.UTC(),
	}
}

// Sink delivers changes to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, c Change) error
	Close() error
}

// Fanout delivers every change to all sinks. Delivery is best effort: failures are logged
// and never reach the caller, whose write has already committed.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Publish(ctx context.Context, c Change) {
	for _, s := range f.sinks {
		if err := s.Send(ctx, c); err != nil {
			log.Printf("event_publish_failed sink=%s type=%s reservation_id=%d error=%q", s.Name(), c.Kind, c.ReservationID, err.Error())
		}
	}
}

func (f *Fanout) Close() error {
	var first error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
