package project

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a fabrication project. Values written by
// downstream tools that are not listed here are carried through unchanged.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

// EBOM is the engineering bill of materials derived from a surface area.
type EBOM struct {
	Resin    float64 `json:"resin"`    // kg
	Gelcoat  float64 `json:"gelcoat"`  // kg
	Fiber    float64 `json:"fiber"`    // kg
	Manpower int     `json:"manpower"` // headcount
}

// Record is a normalized project row. Its EBOM is not stored state: it is
// recomputed from SQM whenever it is read or serialized.
type Record struct {
	ID          string
	ProjectCode string
	Customer    string
	Description string
	SQM         float64
	Status      Status
	Progress    int
	StartDate   Date
	Deadline    Date

	// extra holds JSON members written by other tools, kept verbatim.
	extra map[string]json.RawMessage
	// numericID keeps a legacy number-typed id a number when re-encoded.
	numericID bool
	// drifted reports that the decoded EBOM did not match SQM.
	drifted bool
}

// EBOM returns the bill of materials for the record's surface area.
func (r Record) EBOM() EBOM {
	return ComputeEBOM(r.SQM)
}

// EBOMDrifted reports whether the serialized form this record was decoded
// from carried an EBOM that disagreed with its SQM.
func (r Record) EBOMDrifted() bool {
	return r.drifted
}

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC without a time component.
type Date struct {
	t time.Time
}

// DateOf returns the UTC calendar day containing t.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t: t}, nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
