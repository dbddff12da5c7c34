package tabular_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rpggio/fabtrack/internal/tabular"
	"github.com/rpggio/fabtrack/internal/tabular/tabulartest"
	"github.com/stretchr/testify/require"
)

func TestDecoder_Decode(t *testing.T) {
	data := tabulartest.Workbook(t,
		[]string{"Code", "Customer", "Description", "SQM", "Notes"},
		[]any{"X1", "Acme", "Deck mould", 20, "rush"},
		[]any{"X2", nil, nil, 12.5},
	)

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, tabular.Row{
		"Code":        "X1",
		"Customer":    "Acme",
		"Description": "Deck mould",
		"SQM":         "20",
		"Notes":       "rush",
	}, rows[0])

	// Empty cells are absent, numbers keep their raw value
	require.Equal(t, tabular.Row{"Code": "X2", "SQM": "12.5"}, rows[1])
	_, ok := rows[1].Value("Customer")
	require.False(t, ok)
}

func TestDecoder_SkipsBlankRows(t *testing.T) {
	data := tabulartest.Workbook(t,
		[]string{"Code", "SQM"},
		[]any{"A", 1},
		[]any{},
		[]any{"B", 2},
	)

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "A", rows[0]["Code"])
	require.Equal(t, "B", rows[1]["Code"])
}

func TestDecoder_HeaderOnly(t *testing.T) {
	data := tabulartest.Workbook(t, []string{"Code", "Customer"})

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecoder_DuplicateHeaderFirstWins(t *testing.T) {
	data := tabulartest.Workbook(t,
		[]string{"Code", "Code"},
		[]any{"first", "second"},
	)

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "first", rows[0]["Code"])
}

func TestDecoder_MissingHeader(t *testing.T) {
	data := tabulartest.Workbook(t, nil)

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.ErrorIs(t, err, tabular.ErrDecode)
	require.Nil(t, rows)
}

func TestDecoder_NotASpreadsheet(t *testing.T) {
	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader([]byte("definitely,not\nan,xlsx")))
	require.ErrorIs(t, err, tabular.ErrDecode)
	require.Nil(t, rows)
}

func TestDecoder_UnnamedColumnsOnly(t *testing.T) {
	data := tabulartest.Workbook(t,
		[]string{"Code", "SQM"},
		[]any{nil, nil, "stray"},
	)

	rows, err := tabular.NewDecoder().Decode(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Empty(t, rows[0])
}
