package queries

import (
	"context"
	"time"

	"chairtime/internal/infra"
	"chairtime/internal/pkg/clock"
	"chairtime/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrStoreNotFound = errs.New("store not found")

const gridDays = 7

type SlotView struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Booked bool      `json:"booked"`
	Past   bool      `json:"past"`
}

type ChairSlotsView struct {
	ChairID            uuid.UUID  `json:"chair_id"`
	ChairName          string     `json:"chair_name"`
	ManualBarberName   *string    `json:"manual_barber_name,omitempty"`
	ManualBarberRating *float64   `json:"manual_barber_rating,omitempty"`
	Slots              []SlotView `json:"slots"`
}

type DayBucketView struct {
	Date   string           `json:"date"`
	Chairs []ChairSlotsView `json:"chairs"`
}

type StoreChairRow struct {
	ChairID            uuid.UUID
	ChairName          string
	ManualBarberName   *string
	ManualBarberRating *float64
}

type WorkingHourRow struct {
	Weekday   time.Weekday
	OpenTime  string
	CloseTime string
}

// BookedWindow is one active appointment's occupancy on a chair.
type BookedWindow struct {
	ChairID uuid.UUID
	Start   time.Time
	End     time.Time
}

type SlotReadStore interface {
	StoreExists(ctx context.Context, storeID uuid.UUID) (bool, error)
	ActiveChairsByStore(ctx context.Context, storeID uuid.UUID) ([]StoreChairRow, error)
	WorkingHoursByStore(ctx context.Context, storeID uuid.UUID) ([]WorkingHourRow, error)
	// ActiveAppointmentWindows returns pending and approved occupancy for
	// the chairs inside [from, to).
	ActiveAppointmentWindows(ctx context.Context, chairIDs []uuid.UUID, from, to time.Time) ([]BookedWindow, error)
}

type SlotQueries interface {
	WeeklySlots(ctx context.Context, storeID uuid.UUID) ([]DayBucketView, error)
}

type slotQueriesImpl struct {
	store       SlotReadStore
	clock       clock.Clock
	granularity time.Duration
}

func NewSlotQueries(store SlotReadStore, clk clock.Clock, granularity time.Duration) SlotQueries {
	return &slotQueriesImpl{store: store, clock: clk, granularity: granularity}
}

// WeeklySlots derives the 7-day grid, today inclusive. It never mutates;
// read skew against concurrent bookings is resolved at booking time.
func (q *slotQueriesImpl) WeeklySlots(ctx context.Context, storeID uuid.UUID) ([]DayBucketView, error) {
	exists, err := q.store.StoreExists(ctx, storeID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to check store")
	}
	if !exists {
		return nil, ErrStoreNotFound
	}

	chairs, err := q.store.ActiveChairsByStore(ctx, storeID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, errs.Wrap(err, "failed to load chairs")
	}

	hours, err := q.store.WorkingHoursByStore(ctx, storeID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load working hours")
	}
	hoursByWeekday := make(map[time.Weekday]WorkingHourRow, len(hours))
	for _, h := range hours {
		hoursByWeekday[h.Weekday] = h
	}

	now := q.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	occupancy, err := q.loadOccupancy(ctx, chairs, today)
	if err != nil {
		return nil, err
	}

	buckets := make([]DayBucketView, 0, gridDays)
	for d := 0; d < gridDays; d++ {
		day := today.AddDate(0, 0, d)
		bucket := DayBucketView{
			Date:   day.Format("2006-01-02"),
			Chairs: []ChairSlotsView{},
		}

		wh, open := hoursByWeekday[day.Weekday()]
		if open {
			for _, chair := range chairs {
				slots := q.buildSlots(day, wh, occupancy[chair.ChairID], now)
				if len(slots) == 0 {
					continue
				}
				bucket.Chairs = append(bucket.Chairs, ChairSlotsView{
					ChairID:            chair.ChairID,
					ChairName:          chair.ChairName,
					ManualBarberName:   chair.ManualBarberName,
					ManualBarberRating: chair.ManualBarberRating,
					Slots:              slots,
				})
			}
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

func (q *slotQueriesImpl) loadOccupancy(ctx context.Context, chairs []StoreChairRow, today time.Time) (map[uuid.UUID][]BookedWindow, error) {
	if len(chairs) == 0 {
		return map[uuid.UUID][]BookedWindow{}, nil
	}
	chairIDs := make([]uuid.UUID, len(chairs))
	for i, c := range chairs {
		chairIDs[i] = c.ChairID
	}
	windows, err := q.store.ActiveAppointmentWindows(ctx, chairIDs, today, today.AddDate(0, 0, gridDays))
	if err != nil {
		return nil, errs.Wrap(err, "failed to load appointment occupancy")
	}
	byChair := make(map[uuid.UUID][]BookedWindow, len(chairs))
	for _, w := range windows {
		byChair[w.ChairID] = append(byChair[w.ChairID], w)
	}
	return byChair, nil
}

func (q *slotQueriesImpl) buildSlots(day time.Time, wh WorkingHourRow, occupied []BookedWindow, now time.Time) []SlotView {
	open, err1 := atWallClock(day, wh.OpenTime)
	close, err2 := atWallClock(day, wh.CloseTime)
	if err1 != nil || err2 != nil || !open.Before(close) {
		return nil
	}

	isToday := day.Year() == now.Year() && day.YearDay() == now.YearDay()

	var slots []SlotView
	for start := open; !start.Add(q.granularity).After(close); start = start.Add(q.granularity) {
		end := start.Add(q.granularity)
		slots = append(slots, SlotView{
			Start:  start,
			End:    end,
			Booked: coversStart(occupied, start),
			Past:   isToday && !end.After(now),
		})
	}
	return slots
}

// coversStart reports whether any occupancy window contains the slot start.
func coversStart(occupied []BookedWindow, slotStart time.Time) bool {
	for _, w := range occupied {
		if !slotStart.Before(w.Start) && slotStart.Before(w.End) {
			return true
		}
	}
	return false
}

func atWallClock(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
