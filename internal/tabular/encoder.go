package tabular

import (
	"strings"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Encode writes header and rows as delimited text. Fields holding the delimiter
// or a quote are quoted, with quotes doubled. Lines end with "\n".
func Encode(header []string, rows [][]string) string {
	var b strings.Builder
	writeLine(&b, header)
	for _, row := range rows {
		writeLine(&b, row)
	}
	return b.String()
}

// EncodeRecords writes rows using header as column order; missing keys become empty cells
func EncodeRecords(header []string, records []domain.Row) string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(header))
		for j, name := range header {
			row[j] = rec[name]
		}
		rows[i] = row
	}
	return Encode(header, rows)
}

// EncodeField quotes a single value when needed
func EncodeField(value string) string {
	if !strings.ContainsAny(value, string(Delimiter)+`"`) && strings.TrimSpace(value) == value {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteRune(Delimiter)
		}
		b.WriteString(EncodeField(f))
	}
	b.WriteByte('\n')
}
