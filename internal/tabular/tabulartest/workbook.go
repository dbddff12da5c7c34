// Package tabulartest builds XLSX fixtures for tests.
package tabulartest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// Workbook returns an XLSX document whose first sheet holds header followed by rows.
// A nil cell leaves the cell empty.
func Workbook(t *testing.T, header []string, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	sheet := f.GetSheetName(0)
	if header != nil {
		writeRow(t, f, sheet, 1, toAny(header))
	}
	for i, row := range rows {
		writeRow(t, f, sheet, i+2, row)
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func writeRow(t *testing.T, f *excelize.File, sheet string, rowNum int, values []any) {
	t.Helper()
	for col, value := range values {
		if value == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
		require.NoError(t, err)
		require.NoError(t, f.SetCellValue(sheet, cell, value))
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
