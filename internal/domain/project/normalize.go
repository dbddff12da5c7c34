package project

import (
	"math"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/fabtrack/internal/tabular"
)

// Columns recognized in uploaded sheets. Matching is exact and case-sensitive.
const (
	ColumnCode        = "Code"
	ColumnCustomer    = "Customer"
	ColumnDescription = "Description"
	ColumnSQM         = "SQM"
)

// Fallbacks for missing or unusable cells.
const (
	DefaultCustomer    = "New Client"
	DefaultDescription = "Imported Hull"
	DefaultSQM         = 10.0

	// MaxSQM is the largest accepted surface area; larger values default.
	MaxSQM = 1e9

	// DeadlineDays is the span between ingestion and the default deadline.
	DeadlineDays = 30

	codePrefix = "PRJ-"
	codeSpace  = 1000
)

// Defaults records which fields of a row fell back to a default value.
type Defaults uint8

const (
	DefaultedCode Defaults = 1 << iota
	DefaultedCustomer
	DefaultedDescription
	DefaultedSQM
)

// Has reports whether every flag in f is set.
func (d Defaults) Has(f Defaults) bool { return d&f == f }

// Any reports whether at least one field was defaulted.
func (d Defaults) Any() bool { return d != 0 }

// Normalizer turns decoded rows into records.
type Normalizer struct {
	newID   func() string
	newCode func() int
}

// NormalizerOption configures a Normalizer.
type NormalizerOption func(*Normalizer)

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(fn func() string) NormalizerOption {
	return func(n *Normalizer) { n.newID = fn }
}

// WithCodeSource overrides the number used in synthesized project codes.
// Values are reduced into [0,1000).
func WithCodeSource(fn func() int) NormalizerOption {
	return func(n *Normalizer) { n.newCode = fn }
}

// NewNormalizer creates a Normalizer with UUIDv7 record IDs and pseudo-random
// fallback codes.
func NewNormalizer(opts ...NormalizerOption) *Normalizer {
	n := &Normalizer{
		newID:   newRecordID,
		newCode: func() int { return rand.IntN(codeSpace) },
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize maps row to a new Pending record ingested at now. It never fails:
// every missing or unusable field takes its default.
//
// Synthesized codes ("PRJ-" plus a number below 1000) are best effort and can
// repeat; record identity is the ID, never the code.
func (n *Normalizer) Normalize(row tabular.Row, now time.Time) (Record, Defaults) {
	var defaults Defaults

	code, ok := text(row, ColumnCode)
	if !ok {
		code = codePrefix + strconv.Itoa(n.fallbackCode())
		defaults |= DefaultedCode
	}
	customer, ok := text(row, ColumnCustomer)
	if !ok {
		customer = DefaultCustomer
		defaults |= DefaultedCustomer
	}
	description, ok := text(row, ColumnDescription)
	if !ok {
		description = DefaultDescription
		defaults |= DefaultedDescription
	}
	sqm, ok := area(row)
	if !ok {
		sqm = DefaultSQM
		defaults |= DefaultedSQM
	}

	start := DateOf(now)
	return Record{
		ID:          n.newID(),
		ProjectCode: code,
		Customer:    customer,
		Description: description,
		SQM:         sqm,
		Status:      StatusPending,
		Progress:    0,
		StartDate:   start,
		Deadline:    start.AddDays(DeadlineDays),
	}, defaults
}

func (n *Normalizer) fallbackCode() int {
	v := n.newCode() % codeSpace
	if v < 0 {
		v += codeSpace
	}
	return v
}

func text(row tabular.Row, column string) (string, bool) {
	v, ok := row.Value(column)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// area parses the SQM cell.
func area(row tabular.Row) (float64, bool) {
	raw, ok := row.Value(ColumnSQM)
	if !ok {
		return 0, false
	}
	return parseSQM(raw)
}

// parseSQM reads a surface area. Values like "20 m2" use their numeric prefix.
// Blank, unreadable, negative, non-finite and above-MaxSQM values are rejected.
func parseSQM(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		prefix := leadingNumber.FindString(raw)
		if prefix == "" {
			return 0, false
		}
		if v, err = strconv.ParseFloat(prefix, 64); err != nil {
			return 0, false
		}
	}
	if !validSQM(v) {
		return 0, false
	}
	return v, true
}

func validSQM(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= MaxSQM
}

func newRecordID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
