package planner

import "sort"

// DefaultLastEvents is how many recent events a request covers when neither
// an explicit range nor a count is given.
const DefaultLastEvents = 12

// Request describes which event numbers a fetch call should cover: either an
// explicit inclusive range, or the N most recent events. Construct with
// Between or LastN; the zero value behaves as LastN(DefaultLastEvents).
// An explicit range always wins over a count, and whether a range was given
// is tracked with a flag rather than inferred from zero bounds.
type Request struct {
	From, To int
	Last     int
	hasRange bool
}

// Between requests every event in the inclusive range [from, to].
func Between(from, to int) Request {
	return Request{From: from, To: to, hasRange: true}
}

// LastN requests the n most recent events.
func LastN(n int) Request {
	return Request{Last: n}
}

// HasRange reports whether the request was built with an explicit range.
func (r Request) HasRange() bool {
	return r.hasRange
}

// Plan computes the event numbers still to fetch: the request's candidate set
// minus already-fetched numbers, minus anything beyond the latest completed
// event. The result is sorted ascending so runs are reproducible; an empty
// result means there is nothing to do.
func Plan(req Request, fetched map[int]struct{}, lastEventNo int) []int {
	var candidates []int
	if req.hasRange {
		for n := req.From; n <= req.To; n++ {
			candidates = append(candidates, n)
		}
	} else {
		last := req.Last
		if last <= 0 {
			last = DefaultLastEvents
		}
		for i := 0; i < last; i++ {
			candidates = append(candidates, lastEventNo-i)
		}
	}

	plan := make([]int, 0, len(candidates))
	for _, n := range candidates {
		if n > lastEventNo {
			continue
		}
		if _, ok := fetched[n]; ok {
			continue
		}
		plan = append(plan, n)
	}
	sort.Ints(plan)
	return plan
}
