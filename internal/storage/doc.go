// Package storage persists scraped results under a local data directory.
//
// Each event gets a CSV dataset file (<event_id>.csv, one row per finisher
// across all fetched event instances) consumed by the dashboard, plus a JSON
// summary snapshot (<event_id>_summary.json). The default location is
// ~/.local/share/park-report/.
package storage
