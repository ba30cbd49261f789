package reservation

import (
	"context"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/repository"
)

// Store is the durable, transactional reservation store.
type Store interface {
	List(ctx context.Context) ([]domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	WithItemLocks(ctx context.Context, itemIDs []int64, fn func(tx repository.ReservationTx) error) error
}

type ChangePublisher interface {
	Publish(ctx context.Context, c events.Change)
}
