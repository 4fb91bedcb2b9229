package normalize

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Logical field names
const (
	FieldID         = "id"
	FieldDate       = "date"
	FieldCustomer   = "customer"
	FieldCategory   = "category"
	FieldTotal      = "total"
	FieldStatus     = "status"
	FieldStaff      = "staff"
	FieldNotes      = "notes"
	FieldSubsidiary = "subsidiary"
	FieldBusiness   = "business"
	FieldPerson     = "person"
	FieldStateID    = "stateId"
	FieldWeek       = "week"
	FieldAmount     = "amount"
	FieldType       = "type"
	FieldName       = "name"
	FieldRole       = "role"
	FieldActive     = "active"
)

// AliasTable maps a logical field to the header spellings accepted for it, in
// priority order.
type AliasTable map[string][]string

// Lookup returns the trimmed value of the first alias present in row with a
// non-empty value, or "" when none matches.
func (t AliasTable) Lookup(row domain.Row, field string) string {
	aliases, ok := t[field]
	if !ok {
		aliases = []string{field}
	}
	for _, alias := range aliases {
		if v := strings.TrimSpace(row[alias]); v != "" {
			return v
		}
	}
	return ""
}

// merge returns t with the fields of override replacing its own
func (t AliasTable) merge(override AliasTable) AliasTable {
	out := make(AliasTable, len(t)+len(override))
	for field, aliases := range t {
		out[field] = append([]string(nil), aliases...)
	}
	for field, aliases := range override {
		out[field] = append([]string(nil), aliases...)
	}
	return out
}

// Aliases groups the alias tables of the three entities
type Aliases struct {
	Order  AliasTable `yaml:"order" json:"order"`
	Payout AliasTable `yaml:"payout" json:"payout"`
	Staff  AliasTable `yaml:"staff" json:"staff"`
}

// Merge overlays the fields named in override onto a
func (a Aliases) Merge(override Aliases) Aliases {
	return Aliases{
		Order:  a.Order.merge(override.Order),
		Payout: a.Payout.merge(override.Payout),
		Staff:  a.Staff.merge(override.Staff),
	}
}

// DefaultAliases returns the built-in header spellings
func DefaultAliases() Aliases {
	shared := AliasTable{
		FieldNotes:      {"notes", "Notes", "note", "Note"},
		FieldSubsidiary: {"subsidiary", "Subsidiary"},
		FieldBusiness:   {"business", "Business"},
	}

	return Aliases{
		Order: shared.merge(AliasTable{
			FieldID:       {"id", "ID", "order_id", "Order ID"},
			FieldDate:     {"date", "Date", "timestamp", "Timestamp"},
			FieldCustomer: {"customer", "Customer"},
			FieldCategory: {"category", "Category", "service", "Service"},
			FieldTotal:    {"total", "Total", "amount", "Amount"},
			FieldStatus:   {"status", "Status"},
			FieldStaff:    {"staff", "Staff", "employee", "Employee"},
		}),
		Payout: shared.merge(AliasTable{
			FieldPerson:  {"person", "Person", "name", "Name", "employee"},
			FieldStateID: {"stateId", "state_id", "State ID", "StateID"},
			FieldWeek:    {"week", "Week", "week_ending", "Week Ending"},
			FieldAmount:  {"amount", "Amount"},
			FieldType:    {"type", "Type"},
		}),
		Staff: shared.merge(AliasTable{
			FieldName:    {"name", "Name"},
			FieldStateID: {"stateId", "state_id", "State ID", "StateID"},
			FieldRole:    {"role", "Role"},
			FieldActive:  {"active", "Active", "status", "Status"},
		}),
	}
}

type aliasesFile struct {
	Aliases Aliases `yaml:"aliases"`
}

// LoadAliases reads the aliases section of a rules file and merges it over the defaults
func LoadAliases(path string) (Aliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Aliases{}, apperrors.NewConfigError(fmt.Sprintf("failed to read aliases file %s", path), err)
	}
	return ParseAliases(data)
}

// ParseAliases is LoadAliases over raw YAML
func ParseAliases(data []byte) (Aliases, error) {
	var file aliasesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Aliases{}, apperrors.NewConfigError("failed to parse aliases", err)
	}
	return DefaultAliases().Merge(file.Aliases), nil
}
