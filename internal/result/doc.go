// Package result defines the data model for scraped parkrun results.
//
// A Summary captures the state of an event's landing page at session start.
// A Record captures one finisher in one event instance; anonymized rows
// ("Unknown" runners) carry no detail fields, which the model enforces
// structurally by keeping details behind a nil-able pointer rather than as
// individually optional fields.
package result
