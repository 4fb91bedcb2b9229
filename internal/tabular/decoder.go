// Package tabular decodes and encodes the comma separated text served by
// spreadsheet exports.
//
// Records are split on physical newlines before fields are scanned, so a quoted
// field cannot contain a real line break. Quoted delimiters and doubled quotes
// are supported.
package tabular

import (
	"strings"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Delimiter separates fields within a line
const Delimiter = ','

const bom = "\ufeff"

// Table is decoded delimited text. Header holds the trimmed column names and
// every row in Rows has exactly len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Decode splits text into lines, drops blank ones and treats the first as the header
func Decode(text string) Table {
	var lines []string
	for _, line := range strings.Split(strings.TrimPrefix(text, bom), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	cells := make([][]string, 0, len(lines))
	for _, line := range lines {
		cells = append(cells, ParseLine(line, Delimiter))
	}
	return FromCells(cells)
}

// FromCells builds a table from a grid whose first non-blank row is the
// header. Rows with only blank cells are dropped, header cells are trimmed and
// every row is padded or cut to the header width.
func FromCells(cells [][]string) Table {
	var (
		header []string
		rows   [][]string
	)
	for _, fields := range cells {
		if blankRow(fields) {
			continue
		}
		if header == nil {
			header = make([]string, len(fields))
			for i, name := range fields {
				header[i] = strings.TrimSpace(name)
			}
			continue
		}
		row := make([]string, len(header))
		copy(row, fields)
		rows = append(rows, row)
	}

	if header == nil {
		return Table{}
	}
	if rows == nil {
		rows = [][]string{}
	}
	return Table{Header: header, Rows: rows}
}

func blankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ParseLine scans a single line into fields. A quote toggles quoted mode, two
// quotes inside quoted mode emit one literal quote, and delim outside quoted
// mode ends the field. Lines are scanned byte by byte so cell bytes are kept
// as is, including invalid UTF-8.
func ParseLine(line string, delim byte) []string {
	var (
		fields   []string
		field    strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == delim && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteByte(ch)
		}
	}

	return append(fields, field.String())
}

// Records returns each row keyed by header name. Empty header cells are skipped
// and, for duplicated names, the first column wins.
func (t Table) Records() []domain.Row {
	records := make([]domain.Row, 0, len(t.Rows))
	for _, cells := range t.Rows {
		row := make(domain.Row, len(t.Header))
		for i, name := range t.Header {
			if name == "" {
				continue
			}
			if _, seen := row[name]; seen {
				continue
			}
			row[name] = cells[i]
		}
		records = append(records, row)
	}
	return records
}

// DecodeRecords is Decode followed by Records
func DecodeRecords(text string) []domain.Row {
	return Decode(text).Records()
}
