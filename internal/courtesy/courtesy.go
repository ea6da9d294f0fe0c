// Package courtesy enforces the crawl policy toward the parkrun website: no
// scraping on event day (Saturday), and a fixed minimum interval between
// consecutive page fetches.
package courtesy

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum delay between consecutive page fetches.
const DefaultInterval = time.Second

// EventDay is the weekday the recurring event takes place on.
const EventDay = time.Saturday

// ErrEventDay is returned when a session is refused because today is event
// day and the site is under live load.
var ErrEventDay = errors.New("today is parkrun day: scraping is refused to spare the results site, try again tomorrow")

// Guard gates session startup and paces page fetches. The clock is injected
// so the event-day check is deterministic under test.
type Guard struct {
	now     func() time.Time
	limiter *rate.Limiter
}

// New returns a Guard pacing fetches at the given minimum interval, using
// the system clock. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) *Guard {
	return NewWithClock(interval, time.Now)
}

// NewWithClock is New with an explicit clock.
func NewWithClock(interval time.Duration, now func() time.Time) *Guard {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Guard{
		now:     now,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// CheckStart reports whether crawling may start right now. It returns
// ErrEventDay on the event's recurrence day; callers that were explicitly
// told to ignore the gate simply do not call it.
func (g *Guard) CheckStart() error {
	if g.now().Weekday() == EventDay {
		return ErrEventDay
	}
	return nil
}

// Pace blocks until the inter-fetch interval has elapsed since the previous
// call. It is called once before every page fetch, the summary page included.
func (g *Guard) Pace(ctx context.Context) error {
	return g.limiter.Wait(ctx)
}
