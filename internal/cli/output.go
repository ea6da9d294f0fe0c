package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/parkreport/park-report/internal/dataset"
)

// OutputFormat specifies the output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains the data reported after a run.
type OutputResult struct {
	EventID       string                     `json:"event_id"`
	EventName     string                     `json:"event_name"`
	LastEventNo   int                        `json:"last_event_no"`
	FetchedEvents []int                      `json:"fetched_events"`
	RowCount      int                        `json:"row_count"`
	Participants  []dataset.ParticipantCount `json:"participants"`
	DatasetPath   string                     `json:"dataset_path"`
}

// WriteOutput writes the result in the specified format.
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *OutputResult) error {
	fmt.Fprintf(w, "%s (latest event #%d)\n", result.EventName, result.LastEventNo)

	if len(result.FetchedEvents) == 0 {
		fmt.Fprintln(w, "No events collected.")
		return nil
	}

	fmt.Fprintf(w, "Collected %d rows from %d events:\n", result.RowCount, len(result.FetchedEvents))
	for _, pc := range result.Participants {
		fmt.Fprintf(w, "  event %4d: %d participants\n", pc.EventNo, pc.Participants)
	}
	fmt.Fprintf(w, "Dataset written to %s\n", result.DatasetPath)
	return nil
}
