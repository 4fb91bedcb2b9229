package exporter

import (
	"fmt"
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"

// formatFloat formats an amount with exactly 2 decimal places
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatInt(i int) string {
	return strconv.Itoa(i)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatDate renders t in loc; nil dates become empty cells
func formatDate(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}
