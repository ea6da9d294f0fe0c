// Package cli implements the command-line interface for park-report.
//
// The cli package provides the Cobra-based CLI that opens a scraping session
// for one parkrun event, fetches the requested event range (or the N most
// recent events), persists the resulting CSV dataset and summary snapshot,
// and reports what was collected in text or JSON.
package cli
