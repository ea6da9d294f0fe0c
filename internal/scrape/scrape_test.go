package scrape

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/parkreport/park-report/internal/courtesy"
	"github.com/parkreport/park-report/internal/planner"
)

const (
	testBaseURL = "https://results.test"
	testEventID = "rothaypark"
)

// fakeFetcher serves canned pages and records every fetch.
type fakeFetcher struct {
	pages   map[string]string
	fetches []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.fetches = append(f.fetches, url)
	html, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("no page for %s", url)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func landingPage(lastEventNo int) string {
	return fmt.Sprintf(`<html><body>
<h1 class="paddetandb">Rothay Park parkrun</h1>
<div class="aStat">Events: %d</div>
<div class="aStat">Total Runners: 4,321</div>
</body></html>`, lastEventNo)
}

func identifiedRow(name, id string, pos int) string {
	return fmt.Sprintf(`<tr class="Results-table-row" data-name="%s" data-position="%d" data-agegrade="60.00%%" data-agegroup="SM25-29" data-gender="Male" data-runs="10">
<td class="Results-table-td Results-table-td--name"><a href="/parkrunner/%s">%s</a></td>
<td class="Results-table-td Results-table-td--time"><div>21:00</div></td>
</tr>`, name, pos, id, name)
}

func anonymousRow(pos int) string {
	return fmt.Sprintf(`<tr class="Results-table-row" data-name="Unknown" data-position="%d"></tr>`, pos)
}

func resultsPage(rows ...string) string {
	return "<html><body><table>" + strings.Join(rows, "\n") + "</table></body></html>"
}

func homepageURL() string {
	return fmt.Sprintf("%s/%s/", testBaseURL, testEventID)
}

func eventURL(n int) string {
	return fmt.Sprintf("%s/%s/results/%d", testBaseURL, testEventID, n)
}

// sunday keeps tests deterministic regardless of the day they run on.
func sunday() time.Time {
	return time.Date(2023, 1, 8, 10, 0, 0, 0, time.UTC)
}

func testOptions(f *fakeFetcher) Options {
	return Options{
		BaseURL:      testBaseURL,
		PaceInterval: time.Millisecond,
		Fetcher:      f,
		Clock:        sunday,
	}
}

func newFakeFetcher(lastEventNo int) *fakeFetcher {
	f := &fakeFetcher{pages: map[string]string{
		homepageURL(): landingPage(lastEventNo),
	}}
	return f
}

func TestNewLoadsSummary(t *testing.T) {
	f := newFakeFetcher(100)
	sess, err := New(context.Background(), testEventID, testOptions(f))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sess.Close()

	summary := sess.Summary()
	if summary.EventName != "Rothay Park parkrun" {
		t.Errorf("event name = %q, expected %q", summary.EventName, "Rothay Park parkrun")
	}
	if summary.LastEventNo != 100 {
		t.Errorf("last event no = %d, expected 100", summary.LastEventNo)
	}
	if len(f.fetches) != 1 || f.fetches[0] != homepageURL() {
		t.Errorf("expected exactly the homepage fetch, got %v", f.fetches)
	}
}

func TestNewRequiresEventID(t *testing.T) {
	if _, err := New(context.Background(), "", testOptions(newFakeFetcher(10))); err == nil {
		t.Error("expected an error for an empty event id")
	}
}

func TestNewRefusedOnEventDay(t *testing.T) {
	f := newFakeFetcher(100)
	opts := testOptions(f)
	opts.Clock = func() time.Time {
		return time.Date(2023, 1, 7, 10, 0, 0, 0, time.UTC) // Saturday
	}

	_, err := New(context.Background(), testEventID, opts)
	if !errors.Is(err, courtesy.ErrEventDay) {
		t.Fatalf("expected ErrEventDay, got %v", err)
	}
	if len(f.fetches) != 0 {
		t.Errorf("refused session must not fetch anything, got %v", f.fetches)
	}

	// Opting out of the gate gets a usable session on the same day.
	opts.AllowEventDay = true
	sess, err := New(context.Background(), testEventID, opts)
	if err != nil {
		t.Fatalf("New with opt-out failed: %v", err)
	}
	sess.Close()
}

func TestNewFailsOnMalformedSummary(t *testing.T) {
	f := &fakeFetcher{pages: map[string]string{
		homepageURL(): `<html><body><p>maintenance page</p></body></html>`,
	}}
	if _, err := New(context.Background(), testEventID, testOptions(f)); err == nil {
		t.Error("expected construction to fail on a malformed landing page")
	}
}

func TestFetchResultsEndToEnd(t *testing.T) {
	f := newFakeFetcher(100)
	f.pages[eventURL(98)] = resultsPage(identifiedRow("Alice Smith", "1234567", 1), anonymousRow(2))
	f.pages[eventURL(99)] = resultsPage(identifiedRow("Bob Jones", "7654321", 1))
	f.pages[eventURL(100)] = resultsPage(
		identifiedRow("Alice Smith", "1234567", 1),
		identifiedRow("Bob Jones", "7654321", 2),
		anonymousRow(3),
	)

	sess, err := New(context.Background(), testEventID, testOptions(f))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sess.Close()

	if err := sess.FetchResults(context.Background(), planner.LastN(3)); err != nil {
		t.Fatalf("FetchResults failed: %v", err)
	}

	expectedEvents := []int{98, 99, 100}
	if got := sess.FetchedEvents(); !reflect.DeepEqual(got, expectedEvents) {
		t.Errorf("FetchedEvents() = %v, expected %v", got, expectedEvents)
	}

	records := sess.Results()
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}
	// Events merge in plan order, rows in finishing order within each.
	expectedOrder := []struct {
		eventNo  int
		position int
	}{
		{98, 1}, {98, 2}, {99, 1}, {100, 1}, {100, 2}, {100, 3},
	}
	for i, rec := range records {
		if rec.EventNo != expectedOrder[i].eventNo || rec.Position != expectedOrder[i].position {
			t.Errorf("record %d: (event %d, position %d), expected (event %d, position %d)",
				i, rec.EventNo, rec.Position, expectedOrder[i].eventNo, expectedOrder[i].position)
		}
	}

	counts := sess.ParticipantCounts()
	if len(counts) != 3 || counts[2].Participants != 3 {
		t.Errorf("unexpected participant counts: %v", counts)
	}
}

func TestFetchResultsIdempotent(t *testing.T) {
	f := newFakeFetcher(100)
	f.pages[eventURL(99)] = resultsPage(anonymousRow(1))
	f.pages[eventURL(100)] = resultsPage(anonymousRow(1))

	sess, err := New(context.Background(), testEventID, testOptions(f))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sess.Close()

	if err := sess.FetchResults(context.Background(), planner.Between(99, 100)); err != nil {
		t.Fatalf("first FetchResults failed: %v", err)
	}
	firstResults := sess.Results()
	fetchesAfterFirst := len(f.fetches)

	// The same request again is fully satisfied: zero fetches, identical
	// dataset.
	if err := sess.FetchResults(context.Background(), planner.Between(99, 100)); err != nil {
		t.Fatalf("second FetchResults failed: %v", err)
	}
	if len(f.fetches) != fetchesAfterFirst {
		t.Errorf("repeat request fetched pages: %v", f.fetches[fetchesAfterFirst:])
	}
	if !reflect.DeepEqual(sess.Results(), firstResults) {
		t.Error("repeat request changed the dataset")
	}
}

func TestFetchResultsEmptyPlanIsNoOp(t *testing.T) {
	f := newFakeFetcher(100)
	sess, err := New(context.Background(), testEventID, testOptions(f))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sess.Close()

	// Everything requested is beyond the latest completed event.
	if err := sess.FetchResults(context.Background(), planner.Between(150, 160)); err != nil {
		t.Fatalf("FetchResults failed: %v", err)
	}
	if len(f.fetches) != 1 {
		t.Errorf("no-op request must not fetch, got %v", f.fetches[1:])
	}
	if n := len(sess.Results()); n != 0 {
		t.Errorf("expected empty dataset, got %d records", n)
	}
}

func TestFetchResultsAbortsOnFailureKeepingPriorMerges(t *testing.T) {
	f := newFakeFetcher(100)
	f.pages[eventURL(98)] = resultsPage(anonymousRow(1))
	// Event 99's page has an identified row missing its detail cells.
	f.pages[eventURL(99)] = resultsPage(`<tr class="Results-table-row" data-name="Alice Smith" data-position="1"></tr>`)
	f.pages[eventURL(100)] = resultsPage(anonymousRow(1))

	sess, err := New(context.Background(), testEventID, testOptions(f))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer sess.Close()

	err = sess.FetchResults(context.Background(), planner.Between(98, 100))
	if err == nil {
		t.Fatal("expected FetchResults to fail on the malformed page")
	}

	// Event 98 was merged before the failure and must stay; 99 failed
	// extraction so is neither merged nor marked fetched; 100 was never
	// reached.
	if got := sess.FetchedEvents(); !reflect.DeepEqual(got, []int{98}) {
		t.Errorf("FetchedEvents() = %v, expected [98]", got)
	}
	for _, rec := range sess.Results() {
		if rec.EventNo != 98 {
			t.Errorf("unexpected record for event %d in dataset", rec.EventNo)
		}
	}
	for _, url := range f.fetches {
		if url == eventURL(100) {
			t.Error("event 100 should not have been fetched after the failure")
		}
	}
}
