package dashboard

import (
	"errors"
	"strconv"
	"time"

	"github.com/myceliumAI/polypore/internal/domain"
	"github.com/myceliumAI/polypore/internal/modules/availability"
	"github.com/myceliumAI/polypore/internal/pkg/interval"
)

const (
	MinHorizonDays = 1
	MaxHorizonDays = 365
)

var ErrInvalidHorizon = errors.New("horizon must be between 1 and 365 days")

// BreakdownEntry is one reservation contributing to a day's load.
type BreakdownEntry struct {
	ShootID   int64  `json:"shoot_id"`
	ShootName string `json:"shoot_name"`
	Quantity  int    `json:"quantity"`
}

type ItemDay struct {
	Date      string           `json:"date"`
	Available int              `json:"available"`
	Total     int              `json:"total"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

type ItemTimeline struct {
	ItemID     int64               `json:"item_id"`
	Name       string              `json:"name"`
	Category   domain.ItemCategory `json:"category"`
	TotalStock int                 `json:"total_stock"`
	Days       []ItemDay           `json:"days"`
}

type CategoryDay struct {
	Date      string `json:"date"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

type CategoryTimeline struct {
	Category domain.ItemCategory `json:"category"`
	Days     []CategoryDay       `json:"days"`
}

func ValidHorizon(days int) bool {
	return days >= MinHorizonDays && days <= MaxHorizonDays
}

// ProjectItemTimeline builds one daily series per item over horizonDays calendar days
// starting at the UTC day containing reference. Shoots are looked up by id for the
// breakdown; a missing shoot is shown by its id.
func ProjectItemTimeline(items []domain.Item, reservations []domain.Reservation, shoots map[int64]domain.Shoot, horizonDays int, reference time.Time) ([]ItemTimeline, error) {
	if !ValidHorizon(horizonDays) {
		return nil, ErrInvalidHorizon
	}

	byItem := make(map[int64][]domain.Reservation, len(items))
	for _, r := range reservations {
		byItem[r.ItemID] = append(byItem[r.ItemID], r)
	}

	first := interval.DayStart(reference)
	out := make([]ItemTimeline, 0, len(items))
	for i := range items {
		item := &items[i]
		rows := byItem[item.ID]

		days := make([]ItemDay, 0, horizonDays)
		for d := 0; d < horizonDays; d++ {
			dayStart, dayEnd := interval.DayBounds(first.AddDate(0, 0, d))

			breakdown := make([]BreakdownEntry, 0)
			for _, r := range rows {
				if !interval.Overlaps(r.StartTime, r.EndTime, dayStart, dayEnd) {
					continue
				}
				breakdown = append(breakdown, BreakdownEntry{
					ShootID:   r.ShootID,
					ShootName: shootName(shoots, r.ShootID),
					Quantity:  r.Quantity,
				})
			}

			reserved := availability.SumOverlapping(rows, item.ID, dayStart, dayEnd, 0)
			days = append(days, ItemDay{
				Date:      dayStart.Format(time.DateOnly),
				Available: availability.AvailableAt(item, reserved),
				Total:     item.TotalStock,
				Breakdown: breakdown,
			})
		}

		out = append(out, ItemTimeline{
			ItemID:     item.ID,
			Name:       item.Name,
			Category:   item.Category,
			TotalStock: item.TotalStock,
			Days:       days,
		})
	}
	return out, nil
}

// ProjectCategoryTimeline sums available and total per category and day index. Categories
// without items are left out; the order follows domain.ItemCategories, unknown categories last.
func ProjectCategoryTimeline(timelines []ItemTimeline) []CategoryTimeline {
	index := make(map[domain.ItemCategory]int)
	var out []CategoryTimeline

	add := func(category domain.ItemCategory, tl ItemTimeline) {
		pos, ok := index[category]
		if !ok {
			days := make([]CategoryDay, len(tl.Days))
			for i, d := range tl.Days {
				days[i].Date = d.Date
			}
			out = append(out, CategoryTimeline{Category: category, Days: days})
			pos = len(out) - 1
			index[category] = pos
		}
		agg := out[pos].Days
		for i, d := range tl.Days {
			if i >= len(agg) {
				break
			}
			agg[i].Available += d.Available
			agg[i].Total += d.Total
		}
	}

	for _, category := range domain.ItemCategories {
		for _, tl := range timelines {
			if tl.Category == category {
				add(category, tl)
			}
		}
	}
	for _, tl := range timelines {
		if !tl.Category.Valid() {
			add(tl.Category, tl)
		}
	}
	if out == nil {
		out = []CategoryTimeline{}
	}
	return out
}

func shootName(shoots map[int64]domain.Shoot, id int64) string {
	if s, ok := shoots[id]; ok && s.Name != "" {
		return s.Name
	}
	return strconv.FormatInt(id, 10)
}
