package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
)

// recordJSON is the persisted shape of a Record.
type recordJSON struct {
	ID          any     `json:"id"`
	ProjectCode string  `json:"projectCode"`
	Customer    string  `json:"customer"`
	Description string  `json:"description"`
	SQM         float64 `json:"sqm"`
	Status      Status  `json:"status"`
	Progress    int     `json:"progress"`
	EBOM        EBOM    `json:"ebom"`
	StartDate   Date    `json:"startDate,omitzero"`
	Deadline    Date    `json:"deadline,omitzero"`
}

var knownFields = map[string]bool{
	"id": true, "projectCode": true, "customer": true, "description": true, "sqm": true,
	"status": true, "progress": true, "ebom": true, "startDate": true, "deadline": true,
}

// MarshalJSON writes the known fields, the recomputed EBOM, then any extra
// members in key order.
func (r Record) MarshalJSON() ([]byte, error) {
	var id any = r.ID
	if r.numericID {
		id = json.Number(r.ID)
	}
	known, err := json.Marshal(recordJSON{
		ID:          id,
		ProjectCode: r.ProjectCode,
		Customer:    r.Customer,
		Description: r.Description,
		SQM:         r.SQM,
		Status:      r.Status,
		Progress:    r.Progress,
		EBOM:        r.EBOM(),
		StartDate:   r.StartDate,
		Deadline:    r.Deadline,
	})
	if err != nil {
		return nil, err
	}
	if len(r.extra) == 0 {
		return known, nil
	}

	var buf bytes.Buffer
	buf.Write(known[:len(known)-1])
	for _, key := range slices.Sorted(maps.Keys(r.extra)) {
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(r.extra[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the persisted shape plus older encodings: numeric ids,
// numeric text fields and string-typed EBOM quantities. The stored EBOM is
// only compared against SQM, never trusted.
func (r *Record) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	var out Record
	var storedEBOM, sqmRaw json.RawMessage
	for key, raw := range members {
		if !knownFields[key] {
			if out.extra == nil {
				out.extra = make(map[string]json.RawMessage)
			}
			out.extra[key] = raw
			continue
		}

		var err error
		switch key {
		case "id":
			out.ID, err = decodeText(raw)
			out.numericID = err == nil && isNumber(raw)
		case "projectCode":
			out.ProjectCode, err = decodeText(raw)
		case "customer":
			out.Customer, err = decodeText(raw)
		case "description":
			out.Description, err = decodeText(raw)
		case "sqm":
			sqmRaw = raw
		case "status":
			var status string
			status, err = decodeText(raw)
			out.Status = Status(status)
		case "progress":
			progress, parseErr := decodeNumber(raw)
			if parseErr == nil && !math.IsNaN(progress) && !math.IsInf(progress, 0) {
				out.Progress = int(math.Round(progress))
			}
		case "ebom":
			storedEBOM = raw
		case "startDate":
			err = json.Unmarshal(raw, &out.StartDate)
		case "deadline":
			err = json.Unmarshal(raw, &out.Deadline)
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}

	// A missing, blank or unusable area falls back the same way ingestion does.
	out.SQM = DefaultSQM
	if text, err := decodeText(sqmRaw); err == nil {
		if sqm, ok := parseSQM(text); ok {
			out.SQM = sqm
		}
	}

	out.drifted = storedEBOM != nil && !ebomMatches(storedEBOM, out.EBOM())
	*r = out
	return nil
}

// decodeText reads a JSON string, or the literal text of a number or bool.
func decodeText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0, bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	case raw[0] == '{' || raw[0] == '[':
		return "", fmt.Errorf("expected scalar, got %s", raw)
	default:
		return string(raw), nil
	}
}

// isNumber reports whether raw is a bare JSON number.
func isNumber(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && (raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'))
}

// decodeNumber reads a JSON number or a numeric string.
func decodeNumber(raw json.RawMessage) (float64, error) {
	text, err := decodeText(raw)
	if err != nil || text == "" {
		return 0, err
	}
	return strconv.ParseFloat(text, 64)
}

func ebomMatches(raw json.RawMessage, want EBOM) bool {
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return false
	}
	checks := map[string]float64{
		"resin":    want.Resin,
		"gelcoat":  want.Gelcoat,
		"fiber":    want.Fiber,
		"manpower": float64(want.Manpower),
	}
	for name, expected := range checks {
		got, err := decodeNumber(stored[name])
		if err != nil || stored[name] == nil || got != expected {
			return false
		}
	}
	return true
}
