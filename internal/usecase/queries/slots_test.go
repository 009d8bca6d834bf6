//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"chairtime/internal/pkg/clock"
	"chairtime/internal/usecase/queries"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlotStore struct {
	storeExists bool
	chairs      []queries.StoreChairRow
	hours       []queries.WorkingHourRow
	windows     []queries.BookedWindow
}

func (f *fakeSlotStore) StoreExists(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.storeExists, nil
}

func (f *fakeSlotStore) ActiveChairsByStore(_ context.Context, _ uuid.UUID) ([]queries.StoreChairRow, error) {
	return f.chairs, nil
}

func (f *fakeSlotStore) WorkingHoursByStore(_ context.Context, _ uuid.UUID) ([]queries.WorkingHourRow, error) {
	return f.hours, nil
}

func (f *fakeSlotStore) ActiveAppointmentWindows(_ context.Context, _ []uuid.UUID, _, _ time.Time) ([]queries.BookedWindow, error) {
	return f.windows, nil
}

func allWeekdays(open, close string) []queries.WorkingHourRow {
	rows := make([]queries.WorkingHourRow, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		rows = append(rows, queries.WorkingHourRow{Weekday: wd, OpenTime: open, CloseTime: close})
	}
	return rows
}

func TestWeeklySlots(t *testing.T) {
	ctx := context.Background()
	storeID := uuid.New()
	chairID := uuid.New()
	// A Monday, mid-morning.
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)

	t.Run("unknown store", func(t *testing.T) {
		q := queries.NewSlotQueries(&fakeSlotStore{storeExists: false}, clk, time.Hour)

		_, err := q.WeeklySlots(ctx, storeID)
		require.ErrorIs(t, err, queries.ErrStoreNotFound)
	})

	t.Run("seven day buckets, today inclusive", func(t *testing.T) {
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "12:00"),
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)
		require.Len(t, grid, 7)
		assert.Equal(t, "2026-03-02", grid[0].Date)
		assert.Equal(t, "2026-03-08", grid[6].Date)

		require.Len(t, grid[0].Chairs, 1)
		require.Len(t, grid[0].Chairs[0].Slots, 3)
	})

	t.Run("past flag applies to today only", func(t *testing.T) {
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "12:00"),
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)

		today := grid[0].Chairs[0].Slots
		// 09-10 ended before 10:30; 10-11 is underway so not past yet.
		assert.True(t, today[0].Past)
		assert.False(t, today[1].Past)
		assert.False(t, today[2].Past)

		tomorrow := grid[1].Chairs[0].Slots
		for _, s := range tomorrow {
			assert.False(t, s.Past)
		}
	})

	t.Run("occupancy marks overlapping slots booked", func(t *testing.T) {
		day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "12:00"),
			windows: []queries.BookedWindow{
				{ChairID: chairID, Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},
			},
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)

		tomorrow := grid[1].Chairs[0].Slots
		assert.True(t, tomorrow[0].Booked)
		assert.False(t, tomorrow[1].Booked)
		assert.False(t, tomorrow[2].Booked)
	})

	t.Run("booking on another chair does not mark this one", func(t *testing.T) {
		otherChair := uuid.New()
		day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "12:00"),
			windows: []queries.BookedWindow{
				{ChairID: otherChair, Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},
			},
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)

		for _, s := range grid[1].Chairs[0].Slots {
			assert.False(t, s.Booked)
		}
	})

	t.Run("closed weekday yields an empty bucket", func(t *testing.T) {
		hours := []queries.WorkingHourRow{}
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if wd == time.Tuesday {
				continue
			}
			hours = append(hours, queries.WorkingHourRow{Weekday: wd, OpenTime: "09:00", CloseTime: "12:00"})
		}
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       hours,
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)

		// 2026-03-03 is the Tuesday of the grid.
		assert.Equal(t, "2026-03-03", grid[1].Date)
		assert.Empty(t, grid[1].Chairs)
		assert.NotEmpty(t, grid[0].Chairs)
	})

	t.Run("full bucket shape", func(t *testing.T) {
		day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "11:00"),
			windows: []queries.BookedWindow{
				{ChairID: chairID, Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour)},
			},
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)

		want := queries.DayBucketView{
			Date: "2026-03-03",
			Chairs: []queries.ChairSlotsView{{
				ChairID:   chairID,
				ChairName: "Chair 1",
				Slots: []queries.SlotView{
					{Start: day.Add(9 * time.Hour), End: day.Add(10 * time.Hour), Booked: true},
					{Start: day.Add(10 * time.Hour), End: day.Add(11 * time.Hour)},
				},
			}},
		}
		if diff := cmp.Diff(want, grid[1]); diff != "" {
			t.Errorf("tomorrow's bucket mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("granularity controls slot width", func(t *testing.T) {
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "10:30"),
		}
		q := queries.NewSlotQueries(store, clk, 30*time.Minute)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)
		require.Len(t, grid[0].Chairs, 1)
		assert.Len(t, grid[0].Chairs[0].Slots, 3)
	})

	t.Run("window shorter than one slot omits the chair", func(t *testing.T) {
		store := &fakeSlotStore{
			storeExists: true,
			chairs:      []queries.StoreChairRow{{ChairID: chairID, ChairName: "Chair 1"}},
			hours:       allWeekdays("09:00", "09:30"),
		}
		q := queries.NewSlotQueries(store, clk, time.Hour)

		grid, err := q.WeeklySlots(ctx, storeID)
		require.NoError(t, err)
		assert.Empty(t, grid[0].Chairs)
	})
}
