package shoot

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/events"
	"github.com/myceliumAI/polypore/internal/pkg/clock"
	"github.com/myceliumAI/polypore/internal/pkg/interval"
	"github.com/myceliumAI/polypore/internal/repository"
)

type ShootStore interface {
	Create(ctx context.Context, s *domain.Shoot) error
	GetByID(ctx context.Context, id int64) (*domain.Shoot, error)
	List(ctx context.Context) ([]domain.Shoot, error)
	Save(ctx context.Context, s *domain.Shoot) error
	DeleteWithReservations(ctx context.Context, id int64) ([]domain.Reservation, error)
}

type ReservationStore interface {
	ListByShoot(ctx context.Context, shootID int64) ([]domain.Reservation, error)
}

type ItemStore interface {
	ListByIDs(ctx context.Context, ids []int64) ([]domain.Item, error)
}

type ChangePublisher interface {
	Publish(ctx context.Context, c events.Change)
}

type Service struct {
	shoots       ShootStore
	reservations ReservationStore
	items        ItemStore
	notifs       ChangePublisher
	clock        clock.Clock
}

func NewService(shoots ShootStore, reservations ReservationStore, items ItemStore, notifs ChangePublisher, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Service{
		shoots:       shoots,
		reservations: reservations,
		items:        items,
		notifs:       notifs,
		clock:        clk,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Shoot, error) {
	return s.shoots.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Shoot, error) {
	sh, err := s.shoots.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return sh, nil
}

func (s *Service) Create(ctx context.Context, req CreateShootRequest) (*domain.Shoot, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidPayload
	}
	start, end, err := parsePeriod(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	sh := &domain.Shoot{
		Name:      name,
		Location:  strings.TrimSpace(req.Location),
		StartTime: start,
		EndTime:   end,
	}
	if err := s.shoots.Create(ctx, sh); err != nil {
		return nil, fmt.Errorf("create shoot: %w", err)
	}
	log.Printf("shoot_created id=%d start=%s end=%s", sh.ID, sh.StartTime.Format(time.RFC3339), sh.EndTime.Format(time.RFC3339))
	return sh, nil
}

// Update edits the shoot only. Existing reservations keep the period they were stamped with
// until they are rebound through the reservation endpoints.
func (s *Service) Update(ctx context.Context, id int64, req UpdateShootRequest) (*domain.Shoot, error) {
	sh, err := s.shoots.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrInvalidPayload
		}
		sh.Name = name
	}
	if req.Location != nil {
		sh.Location = strings.TrimSpace(*req.Location)
	}

	start, end := sh.StartTime, sh.EndTime
	if req.StartTime != nil {
		if start, err = interval.Parse(*req.StartTime); err != nil {
			return nil, fmt.Errorf("%w: start_time", ErrInvalidPayload)
		}
	}
	if req.EndTime != nil {
		if end, err = interval.Parse(*req.EndTime); err != nil {
			return nil, fmt.Errorf("%w: end_time", ErrInvalidPayload)
		}
	}
	if !end.After(start) {
		return nil, ErrInvalidDates
	}
	sh.StartTime, sh.EndTime = start, end

	if err := s.shoots.Save(ctx, sh); err != nil {
		return nil, fmt.Errorf("update shoot: %w", err)
	}
	log.Printf("shoot_updated id=%d", sh.ID)
	return sh, nil
}

// Delete removes the shoot together with its reservations.
func (s *Service) Delete(ctx context.Context, id int64) (*DeleteShootResponse, error) {
	removed, err := s.shoots.DeleteWithReservations(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	log.Printf("shoot_deleted id=%d deleted_reservations=%d", id, len(removed))
	if s.notifs != nil {
		at := s.clock.Now()
		for i := range removed {
			s.notifs.Publish(ctx, events.NewChange(events.ReservationCancelled, &removed[i], at))
		}
	}
	return &DeleteShootResponse{ShootID: id, DeletedReservations: len(removed)}, nil
}

// PackingList sums reserved quantity per item for the shoot, ordered by item id.
func (s *Service) PackingList(ctx context.Context, id int64) ([]PackingLine, error) {
	if _, err := s.shoots.GetByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	rows, err := s.reservations.ListByShoot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}

	totals := make(map[int64]int)
	for _, r := range rows {
		totals[r.ItemID] += r.Quantity
	}
	ids := make([]int64, 0, len(totals))
	for itemID := range totals {
		ids = append(ids, itemID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	byID := make(map[int64]domain.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	out := make([]PackingLine, 0, len(ids))
	for _, itemID := range ids {
		line := PackingLine{
			ItemID:   itemID,
			ItemName: strconv.FormatInt(itemID, 10),
			Category: "unknown",
			Quantity: totals[itemID],
		}
		if it, ok := byID[itemID]; ok {
			line.ItemName = it.Name
			line.Category = string(it.Category)
		}
		out = append(out, line)
	}
	return out, nil
}

func parsePeriod(rawStart, rawEnd string) (time.Time, time.Time, error) {
	start, err := interval.Parse(rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_time", ErrInvalidPayload)
	}
	end, err := interval.Parse(rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_time", ErrInvalidPayload)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, ErrInvalidDates
	}
	return start, end, nil
}

func notFound(err error) error {
	if repository.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}
