package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rpggio/fabtrack/internal/domain/project"
)

var projectHeader = []string{"ID", "CODE", "CUSTOMER", "SQM", "RESIN", "GELCOAT", "FIBER", "CREW", "STATUS", "DEADLINE"}

func renderProjects(w io.Writer, records []project.Record) error {
	data := pterm.TableData{projectHeader}
	for _, rec := range records {
		ebom := rec.EBOM()
		data = append(data, []string{
			rec.ID,
			rec.ProjectCode,
			rec.Customer,
			formatQty(rec.SQM),
			formatQty(ebom.Resin),
			formatQty(ebom.Gelcoat),
			formatQty(ebom.Fiber),
			strconv.Itoa(ebom.Manpower),
			string(rec.Status),
			rec.Deadline.String(),
		})
	}
	return pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false).
		WithWriter(w).
		WithData(data).
		Render()
}

func renderProject(w io.Writer, rec project.Record) error {
	ebom := rec.EBOM()
	data := pterm.TableData{
		{"FIELD", "VALUE"},
		{"ID", rec.ID},
		{"Code", rec.ProjectCode},
		{"Customer", rec.Customer},
		{"Description", rec.Description},
		{"SQM", formatQty(rec.SQM)},
		{"Status", string(rec.Status)},
		{"Progress", strconv.Itoa(rec.Progress) + "%"},
		{"Start", rec.StartDate.String()},
		{"Deadline", rec.Deadline.String()},
		{"Resin (kg)", formatQty(ebom.Resin)},
		{"Gelcoat (kg)", formatQty(ebom.Gelcoat)},
		{"Fiber (kg)", formatQty(ebom.Fiber)},
		{"Manpower", strconv.Itoa(ebom.Manpower)},
	}
	return pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(true).
		WithWriter(w).
		WithData(data).
		Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
