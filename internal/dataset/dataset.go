// Package dataset accumulates extracted result records across fetches.
package dataset

import (
	"sort"

	"github.com/parkreport/park-report/internal/result"
)

// Accumulator owns the running table of all fetched records plus the set of
// event numbers already retrieved. Both grow monotonically and are only ever
// written by the owning session's sequential fetch loop; callers see copies.
//
// Merge is the single mutation point: an event's rows are appended and its
// number marked fetched together, so an event can never be marked fetched
// without its data present, nor the reverse.
type Accumulator struct {
	records []result.Record
	fetched map[int]struct{}
}

// New returns an empty accumulator.
func New() *Accumulator {
	return &Accumulator{fetched: make(map[int]struct{})}
}

// Merge appends one event's records to the dataset tail and marks the event
// fetched. Callers only invoke it after a fully successful extraction.
func (a *Accumulator) Merge(eventNo int, records []result.Record) {
	a.records = append(a.records, records...)
	a.fetched[eventNo] = struct{}{}
}

// HasFetched reports whether the event has already been merged.
func (a *Accumulator) HasFetched(eventNo int) bool {
	_, ok := a.fetched[eventNo]
	return ok
}

// FetchedSet returns the set of merged event numbers. The map is the
// accumulator's own; callers must treat it as read-only.
func (a *Accumulator) FetchedSet() map[int]struct{} {
	return a.fetched
}

// FetchedEvents returns the merged event numbers in ascending order.
func (a *Accumulator) FetchedEvents() []int {
	events := make([]int, 0, len(a.fetched))
	for n := range a.fetched {
		events = append(events, n)
	}
	sort.Ints(events)
	return events
}

// Results returns a snapshot of the dataset in merge order.
func (a *Accumulator) Results() []result.Record {
	snapshot := make([]result.Record, len(a.records))
	copy(snapshot, a.records)
	return snapshot
}

// Len reports the number of accumulated records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// ParticipantCount is the size of one event's field, derived from its
// highest finishing position.
type ParticipantCount struct {
	EventNo      int `json:"event_no"`
	Participants int `json:"participants"`
}

// ParticipantCounts derives the per-event participant series from the
// accumulated table: for each fetched event, the maximum position seen.
// Events are returned in ascending event-number order.
func (a *Accumulator) ParticipantCounts() []ParticipantCount {
	maxPos := make(map[int]int)
	for _, rec := range a.records {
		if rec.Position > maxPos[rec.EventNo] {
			maxPos[rec.EventNo] = rec.Position
		}
	}

	counts := make([]ParticipantCount, 0, len(maxPos))
	for eventNo, participants := range maxPos {
		counts = append(counts, ParticipantCount{EventNo: eventNo, Participants: participants})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].EventNo < counts[j].EventNo })
	return counts
}
