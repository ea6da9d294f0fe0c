package scrape

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/parkreport/park-report/internal/browser"
	"github.com/parkreport/park-report/internal/courtesy"
	"github.com/parkreport/park-report/internal/dataset"
	"github.com/parkreport/park-report/internal/extract"
	"github.com/parkreport/park-report/internal/logger"
	"github.com/parkreport/park-report/internal/planner"
	"github.com/parkreport/park-report/internal/result"
)

// DefaultBaseURL is the site the event pages live under.
const DefaultBaseURL = "https://www.parkrun.org.uk"

// Options configures a Session. The zero value is usable given an event ID:
// system clock, default base URL and pacing, a freshly-launched browser.
type Options struct {
	// AllowEventDay skips the event-day courtesy gate. Off by default.
	AllowEventDay bool

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// PaceInterval overrides the minimum delay between page fetches.
	PaceInterval time.Duration

	// Fetcher substitutes the page fetcher; when nil a headless browser is
	// launched with the Browser options and owned by the session.
	Fetcher browser.Fetcher

	// Browser configures the launched browser when Fetcher is nil.
	Browser browser.Options

	// Clock overrides the time source for the courtesy gate.
	Clock func() time.Time
}

// Session scrapes one parkrun event's historical results. Opening a session
// launches the browser and takes the event's summary snapshot; FetchResults
// then grows the dataset incrementally. A session is single-threaded: its
// browser tab is an exclusively-owned resource and fetches are sequential.
type Session struct {
	eventID     string
	baseURL     string
	guard       *courtesy.Guard
	fetcher     browser.Fetcher
	ownsFetcher bool
	summary     *result.Summary
	acc         *dataset.Accumulator
}

// New opens a session for the given event: courtesy gate, browser startup,
// then the landing-page summary fetch. Any failure returns an error and no
// session; a browser launched here is closed again on the way out.
func New(ctx context.Context, eventID string, opts Options) (*Session, error) {
	if eventID == "" {
		return nil, errors.New("event id is required")
	}

	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	guard := courtesy.NewWithClock(opts.PaceInterval, clock)
	if !opts.AllowEventDay {
		if err := guard.CheckStart(); err != nil {
			return nil, err
		}
	}

	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	fetcher := opts.Fetcher
	ownsFetcher := false
	if fetcher == nil {
		chrome, err := browser.NewChrome(ctx, opts.Browser)
		if err != nil {
			return nil, err
		}
		fetcher = chrome
		ownsFetcher = true
	}

	s := &Session{
		eventID:     eventID,
		baseURL:     baseURL,
		guard:       guard,
		fetcher:     fetcher,
		ownsFetcher: ownsFetcher,
		acc:         dataset.New(),
	}
	if err := s.loadSummary(ctx); err != nil {
		if ownsFetcher {
			_ = s.Close()
		}
		return nil, err
	}
	return s, nil
}

func (s *Session) loadSummary(ctx context.Context) error {
	doc, err := s.fetchPage(ctx, s.homepageURL())
	if err != nil {
		return err
	}
	summary, err := extract.Summary(doc)
	if err != nil {
		return fmt.Errorf("extracting event summary: %w", err)
	}
	s.summary = summary

	logger.Info("event summary loaded", logger.Fields{
		"event_id":      s.eventID,
		"event_name":    summary.EventName,
		"last_event_no": summary.LastEventNo,
	})
	return nil
}

// FetchResults plans which event numbers the request still needs and fetches
// them in ascending order: pace, fetch, extract, merge. The first failure
// aborts the call; events merged before it stay in the dataset. An
// already-satisfied request performs zero fetches.
func (s *Session) FetchResults(ctx context.Context, req planner.Request) error {
	plan := planner.Plan(req, s.acc.FetchedSet(), s.summary.LastEventNo)
	if len(plan) == 0 {
		logger.Debug("nothing new to fetch", logger.Fields{"event_id": s.eventID})
		return nil
	}

	logger.Info("fetching events", logger.Fields{
		"event_id": s.eventID,
		"events":   plan,
	})
	for _, eventNo := range plan {
		if err := s.fetchEvent(ctx, eventNo); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) fetchEvent(ctx context.Context, eventNo int) error {
	start := time.Now()
	doc, err := s.fetchPage(ctx, s.resultsURL(eventNo))
	if err != nil {
		return err
	}
	records, err := extract.Results(doc, eventNo)
	if err != nil {
		return fmt.Errorf("extracting results: %w", err)
	}
	s.acc.Merge(eventNo, records)

	logger.IncrCounter("results.rows", int64(len(records)))
	logger.RecordTiming("results.fetch", time.Since(start))
	logger.Debug("event results merged", logger.Fields{
		"event_id": s.eventID,
		"event_no": eventNo,
		"rows":     len(records),
	})
	return nil
}

// fetchPage paces then fetches one page through the shared browser tab.
func (s *Session) fetchPage(ctx context.Context, url string) (*goquery.Document, error) {
	if err := s.guard.Pace(ctx); err != nil {
		return nil, fmt.Errorf("pacing: %w", err)
	}
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	logger.IncrCounter("pages.fetched", 1)
	return doc, nil
}

func (s *Session) homepageURL() string {
	return fmt.Sprintf("%s/%s/", s.baseURL, s.eventID)
}

func (s *Session) resultsURL(eventNo int) string {
	return fmt.Sprintf("%s/%s/results/%d", s.baseURL, s.eventID, eventNo)
}

// Summary returns the event summary snapshot taken when the session opened.
func (s *Session) Summary() result.Summary {
	return *s.summary
}

// Results returns a copy of the accumulated dataset in merge order.
func (s *Session) Results() []result.Record {
	return s.acc.Results()
}

// FetchedEvents returns the event numbers merged so far, ascending.
func (s *Session) FetchedEvents() []int {
	return s.acc.FetchedEvents()
}

// ParticipantCounts derives the per-event participant series from the
// accumulated dataset.
func (s *Session) ParticipantCounts() []dataset.ParticipantCount {
	return s.acc.ParticipantCounts()
}

// Close releases the browser if the session launched it.
func (s *Session) Close() error {
	if !s.ownsFetcher {
		return nil
	}
	if closer, ok := s.fetcher.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
