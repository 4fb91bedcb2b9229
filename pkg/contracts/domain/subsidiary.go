package domain

import "strings"

// Subsidiary identifies the business unit a record belongs to
type Subsidiary string

const (
	SubsidiaryKintsugi Subsidiary = "kintsugi"
	SubsidiaryTakosuya Subsidiary = "takosuya"

	// DefaultSubsidiary wins every tie in classification
	DefaultSubsidiary = SubsidiaryKintsugi
)

// Subsidiaries lists every known subsidiary in a stable order
func Subsidiaries() []Subsidiary {
	return []Subsidiary{SubsidiaryKintsugi, SubsidiaryTakosuya}
}

// IsValid reports whether s is one of the known subsidiaries
func (s Subsidiary) IsValid() bool {
	return s == SubsidiaryKintsugi || s == SubsidiaryTakosuya
}

// ParseSubsidiary resolves user input to a subsidiary.
// The second return value is false for empty or unknown input.
func ParseSubsidiary(s string) (Subsidiary, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SubsidiaryKintsugi):
		return SubsidiaryKintsugi, true
	case string(SubsidiaryTakosuya), "tako":
		return SubsidiaryTakosuya, true
	}
	return "", false
}
