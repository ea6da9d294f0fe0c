package result

import "strconv"

// AnonymousName is the sentinel the results pages use for runners who have
// withheld their identity. Anonymous rows carry no detail fields at all.
const AnonymousName = "Unknown"

// Summary is a snapshot of an event's landing page: its name, the sequence
// number of the most recent completed event, and whatever labeled statistics
// and records the page exposes. It is taken once, when a session opens, and
// never refreshed.
type Summary struct {
	EventName   string            `json:"event_name"`
	LastEventNo int               `json:"last_event_no"`
	Stats       map[string]string `json:"stats"`
}

// Record is one runner's outcome in one event instance. Details is nil iff
// the runner is anonymized; identified rows always carry the full detail set.
type Record struct {
	EventNo  int      `json:"event_no"`
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Details  *Details `json:"details,omitempty"`
}

// Details holds the per-runner fields the source only exposes for identified
// rows. Values are kept exactly as the page gives them.
type Details struct {
	ParkrunID   string `json:"parkrun_id"`
	Time        string `json:"time"`
	Achievement string `json:"achievement"`
	AgeGrade    string `json:"age_grade"`
	AgeGroup    string `json:"age_group"`
	Club        string `json:"club"`
	Gender      string `json:"gender"`
	Runs        string `json:"runs"`
}

// Anonymous reports whether the record is an anonymized row.
func (r Record) Anonymous() bool {
	return r.Details == nil
}

// CSVHeader is the column order used for dataset files.
func CSVHeader() []string {
	return []string{
		"event_no", "name", "position",
		"parkrun_id", "time", "achievement", "age_grade", "age_group",
		"club", "gender", "runs",
	}
}

// CSVRow renders the record in CSVHeader order. Detail columns are left
// empty for anonymized rows.
func (r Record) CSVRow() []string {
	row := []string{
		strconv.Itoa(r.EventNo),
		r.Name,
		strconv.Itoa(r.Position),
		"", "", "", "", "", "", "", "",
	}
	if r.Details != nil {
		row[3] = r.Details.ParkrunID
		row[4] = r.Details.Time
		row[5] = r.Details.Achievement
		row[6] = r.Details.AgeGrade
		row[7] = r.Details.AgeGroup
		row[8] = r.Details.Club
		row[9] = r.Details.Gender
		row[10] = r.Details.Runs
	}
	return row
}
