// Package scrape orchestrates the incremental results crawl.
//
// A Session owns one browser tab, one courtesy guard, and one accumulating
// dataset. Construction takes the event's summary snapshot; each
// FetchResults call plans the still-missing event numbers and walks them
// sequentially through pace, fetch, extract, and merge. Failures abort the
// call in progress but never roll back events already merged.
package scrape
