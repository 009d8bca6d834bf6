package appointment

import (
	"errors"
	"time"
)

var ErrWindowInverted = errors.New("window start must be before its end")

// TimeWindow is a half-open [start, end) interval.
type TimeWindow struct {
	start time.Time
	end   time.Time
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, ErrWindowInverted
	}
	return TimeWindow{start: start, end: end}, nil
}

func (w TimeWindow) Start() time.Time {
	return w.start
}

func (w TimeWindow) End() time.Time {
	return w.end
}

func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Date is the calendar day of the window start, in the start's location.
func (w TimeWindow) Date() string {
	return w.start.Format("2006-01-02")
}

func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && other.start.Before(w.end)
}

// Covers reports whether the instant falls inside the half-open interval.
func (w TimeWindow) Covers(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}

func (w TimeWindow) IsZero() bool {
	return w.start.IsZero() && w.end.IsZero()
}
