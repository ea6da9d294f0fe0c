package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/parkreport/park-report/internal/result"
)

func testStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	return store
}

func TestDatasetRoundTrip(t *testing.T) {
	store := testStorage(t)

	records := []result.Record{
		{
			EventNo:  98,
			Name:     "Alice Smith",
			Position: 1,
			Details: &result.Details{
				ParkrunID:   "1234567",
				Time:        "19:30",
				Achievement: "New PB!",
				AgeGrade:    "70.10%",
				AgeGroup:    "SW30-34",
				Club:        "Local RC",
				Gender:      "Female",
				Runs:        "25",
			},
		},
		{EventNo: 98, Name: "Unknown", Position: 2},
		{
			EventNo:  99,
			Name:     "Bob Jones",
			Position: 1,
			Details: &result.Details{
				ParkrunID: "7654321",
				Time:      "24:02",
				AgeGrade:  "55.00%",
				AgeGroup:  "VM40-44",
				Gender:    "Male",
				Runs:      "102",
			},
		},
	}

	if err := store.SaveDataset("rothaypark", records); err != nil {
		t.Fatalf("SaveDataset failed: %v", err)
	}

	loaded, err := store.LoadDataset("rothaypark")
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, records) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, records)
	}
}

func TestDatasetFileShape(t *testing.T) {
	store := testStorage(t)

	records := []result.Record{
		{EventNo: 5, Name: "Unknown", Position: 1},
	}
	if err := store.SaveDataset("testpark", records); err != nil {
		t.Fatalf("SaveDataset failed: %v", err)
	}

	f, err := os.Open(store.DatasetPath("testpark"))
	if err != nil {
		t.Fatalf("opening dataset file: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading dataset file: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if !reflect.DeepEqual(rows[0], result.CSVHeader()) {
		t.Errorf("header = %v, expected %v", rows[0], result.CSVHeader())
	}

	// Anonymized rows keep all detail columns empty.
	row := rows[1]
	if row[0] != "5" || row[1] != "Unknown" || row[2] != "1" {
		t.Errorf("unexpected row prefix: %v", row[:3])
	}
	for i, cell := range row[3:] {
		if cell != "" {
			t.Errorf("detail column %d should be empty for an anonymized row, got %q", i+3, cell)
		}
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	store := testStorage(t)

	summary := result.Summary{
		EventName:   "Rothay Park parkrun",
		LastEventNo: 100,
		Stats: map[string]string{
			"Events":       "100",
			"Fastest time": "15:05",
		},
	}
	if err := store.SaveSummary("rothaypark", summary); err != nil {
		t.Fatalf("SaveSummary failed: %v", err)
	}

	loaded, err := store.LoadSummary("rothaypark")
	if err != nil {
		t.Fatalf("LoadSummary failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, summary) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, summary)
	}
}

func TestNewCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	if _, err := New(dir); err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}
}

func TestLoadDatasetMissingFile(t *testing.T) {
	store := testStorage(t)
	if _, err := store.LoadDataset("nosuchpark"); err == nil {
		t.Error("expected an error for a missing dataset file")
	}
}
