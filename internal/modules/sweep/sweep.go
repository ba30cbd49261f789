// Package sweep removes reservations whose period is over.
package sweep

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
)

type Store interface {
	DeleteEndedBy(ctx context.Context, cutoff time.Time) ([]domain.Reservation, error)
}

type ChangePublisher interface {
	Publish(ctx context.Context, c events.Change)
}

type Config struct {
	Interval time.Duration
	Enabled  bool
}

func DefaultConfig() Config {
	return Config{
		Interval: 20 * time.Second,
		Enabled:  true,
	}
}

// Sweeper deletes ended reservations directly in the store. It does not go through the
// lifecycle manager: the started guard exists to protect exactly these records.
type Sweeper struct {
	store  Store
	notifs ChangePublisher
	clock  clock.Clock
}

func NewSweeper(store Store, notifs ChangePublisher, clk clock.Clock) *Sweeper {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Sweeper{store: store, notifs: notifs, clock: clk}
}

// RunOnce deletes every reservation with end <= now and returns how many went.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	startTime := time.Now()
	now := s.clock.Now()

	removed, err := s.store.DeleteEndedBy(ctx, now)
	if err != nil {
		log.Printf("sweep_failed error=%q", err.Error())
		return 0, err
	}

	if s.notifs != nil {
		for i := range removed {
			s.notifs.Publish(ctx, events.NewChange(events.ReservationExpired, &removed[i], now))
		}
	}
	if len(removed) > 0 {
		log.Printf("sweep_completed deleted=%d duration=%v", len(removed), time.Since(startTime))
	}
	return len(removed), nil
}

// Schedule runs RunOnce every cfg.Interval until stop is called or ctx is done. stop waits
// for an in-flight pass to finish. A disabled config returns a no-op stop.
func (s *Sweeper) Schedule(ctx context.Context, cfg Config) (stop func()) {
	if !cfg.Enabled || cfg.Interval <= 0 {
		log.Println("sweep_disabled")
		return func() {}
	}

	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_, _ = s.RunOnce(ctx)
			case <-stopCh:
				log.Println("sweep_stopped reason=stop")
				return
			case <-ctx.Done():
				log.Println("sweep_stopped reason=context_done")
				return
			}
		}
	}()

	log.Printf("sweep_scheduled interval=%v", cfg.Interval)

	var once sync.Once
	return func() {
		once.Do(func() { close(stopCh) })
		wg.Wait()
	}
}
