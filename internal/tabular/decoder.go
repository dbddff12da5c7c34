// Package tabular decodes uploaded spreadsheet workbooks into header-keyed rows.
package tabular

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrDecode indicates the payload is not a readable spreadsheet.
var ErrDecode = errors.New("decode spreadsheet")

// Row maps a header name to the raw text of a non-empty cell. Numeric cells
// carry their unformatted value ("20", "12.5"); empty cells are absent.
type Row map[string]string

// Value returns the cell under column and whether it was present.
func (r Row) Value(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Decoder reads the first worksheet of an XLSX workbook.
type Decoder struct {
	maxUnzipSize int64
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithMaxUnzipSize caps the total decompressed workbook size.
func WithMaxUnzipSize(n int64) Option {
	return func(d *Decoder) { d.maxUnzipSize = n }
}

// NewDecoder creates a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode parses the workbook in r. The first non-blank row of the first sheet
// is the header; every later non-blank row becomes one Row. Decode returns no
// rows at all when the payload cannot be parsed.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) ([]Row, error) {
	opts := excelize.Options{RawCellValue: true}
	if d.maxUnzipSize > 0 {
		opts.UnzipSizeLimit = d.maxUnzipSize
	}

	f, err := excelize.OpenReader(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrDecode)
	}

	iter, err := f.Rows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer iter.Close()

	var (
		header []string
		rows   []Row
	)
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := iter.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if isBlank(cells) {
			continue
		}
		if header == nil {
			header = uniqueHeader(cells)
			continue
		}
		row := make(Row, len(cells))
		for i, value := range cells {
			if i >= len(header) || header[i] == "" || value == "" {
				continue
			}
			row[header[i]] = value
		}
		// A row holding only unnamed columns still counts; every field defaults.
		rows = append(rows, row)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if header == nil {
		return nil, fmt.Errorf("%w: missing header row", ErrDecode)
	}

	return rows, nil
}

// uniqueHeader blanks out repeated column names so the first occurrence wins.
func uniqueHeader(cells []string) []string {
	seen := make(map[string]bool, len(cells))
	header := make([]string, len(cells))
	for i, name := range cells {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		header[i] = name
	}
	return header
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
