package project

import "strings"

// Filter returns the records whose project code or customer contains term,
// ignoring case, in their original order. An empty term matches every record.
// The input slice is not modified.
func Filter(records []Record, term string) []Record {
	needle := strings.ToLower(term)
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if matches(needle, rec.ProjectCode, rec.Customer) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(needle string, fields ...string) bool {
	if needle == "" {
		return true
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
