package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parkreport/park-report/internal/result"
)

// Storage persists scraped datasets and summaries under a data directory.
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir, creating the directory if needed.
// A leading ~/ is expanded to the user's home directory.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

// DatasetPath returns the dataset file path for an event ID.
func (s *Storage) DatasetPath(eventID string) string {
	return filepath.Join(s.dataDir, eventID+".csv")
}

func (s *Storage) summaryPath(eventID string) string {
	return filepath.Join(s.dataDir, eventID+"_summary.json")
}

// SaveDataset writes the records as a CSV file, one row per record with the
// result.CSVHeader columns. Detail columns are empty for anonymized rows.
// The file is replaced wholesale; the dataset is the session's full table.
func (s *Storage) SaveDataset(eventID string, records []result.Record) error {
	f, err := os.Create(s.DatasetPath(eventID))
	if err != nil {
		return fmt.Errorf("creating dataset file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(result.CSVHeader()); err != nil {
		return fmt.Errorf("writing dataset header: %w", err)
	}
	for _, rec := range records {
		if err := w.Write(rec.CSVRow()); err != nil {
			return fmt.Errorf("writing dataset row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing dataset: %w", err)
	}
	return nil
}

// LoadDataset reads a previously saved dataset file back into records.
func (s *Storage) LoadDataset(eventID string) ([]result.Record, error) {
	f, err := os.Open(s.DatasetPath(eventID))
	if err != nil {
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]result.Record, 0, len(rows)-1)
	for i, row := range rows[1:] { // skip header
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("dataset row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromRow(row []string) (result.Record, error) {
	if len(row) != len(result.CSVHeader()) {
		return result.Record{}, fmt.Errorf("expected %d columns, got %d", len(result.CSVHeader()), len(row))
	}
	eventNo, err := strconv.Atoi(row[0])
	if err != nil {
		return result.Record{}, fmt.Errorf("parsing event_no %q: %w", row[0], err)
	}
	position, err := strconv.Atoi(row[2])
	if err != nil {
		return result.Record{}, fmt.Errorf("parsing position %q: %w", row[2], err)
	}

	rec := result.Record{EventNo: eventNo, Name: row[1], Position: position}
	if rec.Name != result.AnonymousName {
		rec.Details = &result.Details{
			ParkrunID:   row[3],
			Time:        row[4],
			Achievement: row[5],
			AgeGrade:    row[6],
			AgeGroup:    row[7],
			Club:        row[8],
			Gender:      row[9],
			Runs:        row[10],
		}
	}
	return rec, nil
}

// summaryFile is the on-disk shape of a saved event summary.
type summaryFile struct {
	EventID   string         `json:"event_id"`
	UpdatedAt string         `json:"updated_at"`
	Summary   result.Summary `json:"summary"`
}

// SaveSummary writes the event summary snapshot as indented JSON alongside
// the dataset, stamped with the save time.
func (s *Storage) SaveSummary(eventID string, summary result.Summary) error {
	data, err := json.MarshalIndent(summaryFile{
		EventID:   eventID,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:   summary,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}

	if err := os.WriteFile(s.summaryPath(eventID), data, 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

// LoadSummary reads a previously saved summary snapshot.
func (s *Storage) LoadSummary(eventID string) (result.Summary, error) {
	data, err := os.ReadFile(s.summaryPath(eventID))
	if err != nil {
		return result.Summary{}, fmt.Errorf("reading summary: %w", err)
	}

	var file summaryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return result.Summary{}, fmt.Errorf("parsing summary: %w", err)
	}
	return file.Summary, nil
}
