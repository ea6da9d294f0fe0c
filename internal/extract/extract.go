package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/parkreport/park-report/internal/result"
)

// Markup landmarks on the parkrun pages.
const (
	headingSelector  = "h1.paddetandb"
	statSelector     = "div.aStat"
	recordSelector   = "div.records"
	rowSelector      = "tr.Results-table-row"
	nameCellSelector = "td.Results-table-td--name a"
	timeCellSelector = "td.Results-table-td--time div"
)

// statsEventsKey is the stats label holding the latest event number. Its
// absence makes the landing page unusable.
const statsEventsKey = "Events"

// Summary parses an event's landing page into its identity and aggregate
// statistics. The heading and the stats block are required; the "Events"
// stat must be numeric. Record blocks are merged into the stats mapping by
// their type label, last write winning.
func Summary(doc *goquery.Document) (*result.Summary, error) {
	heading := doc.Find(headingSelector).First()
	if heading.Length() == 0 {
		return nil, errors.New("landing page heading not found")
	}
	name := strings.TrimSpace(heading.Text())

	stats := make(map[string]string)
	doc.Find(statSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.ReplaceAll(strings.TrimSpace(sel.Text()), "\n", "")
		label, value, ok := strings.Cut(text, ": ")
		if !ok {
			return
		}
		stats[strings.TrimSpace(label)] = strings.TrimSpace(value)
	})
	if len(stats) == 0 {
		return nil, errors.New("stats block not found on landing page")
	}

	eventsVal, ok := stats[statsEventsKey]
	if !ok {
		return nil, fmt.Errorf("stats block has no %q entry", statsEventsKey)
	}
	lastEventNo, err := strconv.Atoi(strings.TrimSpace(eventsVal))
	if err != nil {
		return nil, fmt.Errorf("parsing %q stat %q: %w", statsEventsKey, eventsVal, err)
	}

	doc.Find(recordSelector).Each(func(_ int, sel *goquery.Selection) {
		spans := sel.Find("span")
		if spans.Length() < 2 {
			return
		}
		label := strings.TrimSpace(strings.ReplaceAll(spans.Eq(0).Text(), ":", ""))
		detail := strings.ReplaceAll(strings.TrimSpace(spans.Eq(1).Text()), "\n", "")
		stats[label] = detail
	})

	return &result.Summary{
		EventName:   name,
		LastEventNo: lastEventNo,
		Stats:       stats,
	}, nil
}

// Results parses a single event's results page into records, preserving the
// page's row order (the finishing order). A malformed row fails the whole
// call; there is no partial-success mode.
func Results(doc *goquery.Document, eventNo int) ([]result.Record, error) {
	rows := doc.Find(rowSelector)
	records := make([]result.Record, 0, rows.Length())

	var rowErr error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		rec, err := extractRow(row, eventNo)
		if err != nil {
			rowErr = fmt.Errorf("event %d row %d: %w", eventNo, i+1, err)
			return false
		}
		records = append(records, rec)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}
	return records, nil
}

func extractRow(row *goquery.Selection, eventNo int) (result.Record, error) {
	name, ok := row.Attr("data-name")
	if !ok {
		return result.Record{}, errors.New("missing data-name attribute")
	}
	posVal, ok := row.Attr("data-position")
	if !ok {
		return result.Record{}, errors.New("missing data-position attribute")
	}
	position, err := strconv.Atoi(strings.TrimSpace(posVal))
	if err != nil {
		return result.Record{}, fmt.Errorf("parsing position %q: %w", posVal, err)
	}

	rec := result.Record{
		EventNo:  eventNo,
		Name:     name,
		Position: position,
	}
	if name == result.AnonymousName {
		// Anonymized rows expose nothing beyond name and position.
		return rec, nil
	}

	link := row.Find(nameCellSelector).First()
	href, ok := link.Attr("href")
	if link.Length() == 0 || !ok {
		return result.Record{}, errors.New("missing runner profile link")
	}
	parkrunID := href[strings.LastIndex(href, "/")+1:]

	timeCell := row.Find(timeCellSelector).First()
	if timeCell.Length() == 0 {
		return result.Record{}, errors.New("missing finish time cell")
	}

	rec.Details = &result.Details{
		ParkrunID:   parkrunID,
		Time:        strings.TrimSpace(timeCell.Text()),
		Achievement: row.AttrOr("data-achievement", ""),
		AgeGrade:    row.AttrOr("data-agegrade", ""),
		AgeGroup:    row.AttrOr("data-agegroup", ""),
		Club:        row.AttrOr("data-club", ""),
		Gender:      row.AttrOr("data-gender", ""),
		Runs:        row.AttrOr("data-runs", ""),
	}
	return rec, nil
}
