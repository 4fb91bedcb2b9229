// Package normalize turns decoded spreadsheet rows into typed orders, payouts
// and staff records.
//
// Parsing never fails a record: unparseable dates become nil, unparseable
// amounts become zero and unknown categories or payout types fall back to a
// default bucket.
package normalize

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// SubsidiaryClassifier assigns a subsidiary to extracted signals
type SubsidiaryClassifier interface {
	Classify(rec classifier.Record) domain.Subsidiary
}

// Mapper converts rows to entities using its alias tables and classifier
type Mapper struct {
	aliases    Aliases
	classifier SubsidiaryClassifier
	loc        *time.Location
	logger     *slog.Logger
}

// NewMapper creates a mapper. Dates are read in loc (time.Local when nil).
func NewMapper(aliases Aliases, cls SubsidiaryClassifier, loc *time.Location, logger *slog.Logger) *Mapper {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		aliases:    aliases,
		classifier: cls,
		loc:        loc,
		logger:     logger.With(slog.String("component", "normalize")),
	}
}

// Aliases returns the alias tables in use
func (m *Mapper) Aliases() Aliases {
	return m.aliases
}

// Order normalizes one order row
func (m *Mapper) Order(row domain.Row) domain.Order {
	t := m.aliases.Order

	dateRaw := t.Lookup(row, FieldDate)
	customer := t.Lookup(row, FieldCustomer)
	staff := t.Lookup(row, FieldStaff)
	notes := t.Lookup(row, FieldNotes)
	categoryRaw := t.Lookup(row, FieldCategory)
	totalRaw := t.Lookup(row, FieldTotal)

	date := m.date(FieldDate, dateRaw)
	category, ok := lookupCategory(categoryRaw)
	if !ok && categoryRaw != "" {
		m.unmapped(FieldCategory, categoryRaw)
	}

	total := m.amount(FieldTotal, totalRaw)
	if total < 0 {
		total = 0
	}

	status := t.Lookup(row, FieldStatus)
	if status == "" {
		status = domain.DefaultOrderStatus
	}

	id := t.Lookup(row, FieldID)
	if id == "" {
		id = DeriveOrderID(date, customer)
	}

	return domain.Order{
		ID:         id,
		Date:       date,
		Customer:   customer,
		Category:   category,
		Total:      total,
		Status:     status,
		Staff:      staff,
		Subsidiary: m.classify(m.OrderRecord(row)),
		Notes:      notes,
		Raw:        row.Clone(),
	}
}

// OrderRecord extracts the classification signals of an order row
func (m *Mapper) OrderRecord(row domain.Row) classifier.Record {
	t := m.aliases.Order
	categoryRaw := t.Lookup(row, FieldCategory)
	return classifier.Record{
		Subsidiary: t.Lookup(row, FieldSubsidiary),
		Business:   t.Lookup(row, FieldBusiness),
		Text: []string{
			t.Lookup(row, FieldCustomer),
			t.Lookup(row, FieldStaff),
			t.Lookup(row, FieldNotes),
			categoryRaw,
		},
		Category: string(NormalizeCategory(categoryRaw)),
	}
}

// Payout normalizes one payout row
func (m *Mapper) Payout(row domain.Row) domain.Payout {
	t := m.aliases.Payout

	person := t.Lookup(row, FieldPerson)
	notes := t.Lookup(row, FieldNotes)
	typeRaw := t.Lookup(row, FieldType)

	payoutType, ok := lookupPayoutType(typeRaw)
	if !ok && typeRaw != "" {
		m.unmapped(FieldType, typeRaw)
	}

	return domain.Payout{
		Person:     person,
		StateID:    t.Lookup(row, FieldStateID),
		Week:       m.date(FieldWeek, t.Lookup(row, FieldWeek)),
		Amount:     m.amount(FieldAmount, t.Lookup(row, FieldAmount)),
		Type:       payoutType,
		Subsidiary: m.classify(m.PayoutRecord(row)),
		Notes:      notes,
		Raw:        row.Clone(),
	}
}

// PayoutRecord extracts the classification signals of a payout row
func (m *Mapper) PayoutRecord(row domain.Row) classifier.Record {
	t := m.aliases.Payout
	return classifier.Record{
		Subsidiary: t.Lookup(row, FieldSubsidiary),
		Business:   t.Lookup(row, FieldBusiness),
		Text:       []string{t.Lookup(row, FieldPerson), t.Lookup(row, FieldNotes)},
	}
}

// Staff normalizes one staff row
func (m *Mapper) Staff(row domain.Row) domain.Staff {
	t := m.aliases.Staff

	return domain.Staff{
		Name:       t.Lookup(row, FieldName),
		StateID:    t.Lookup(row, FieldStateID),
		Role:       t.Lookup(row, FieldRole),
		Active:     ParseActive(t.Lookup(row, FieldActive)),
		Subsidiary: m.classify(m.StaffRecord(row)),
		Raw:        row.Clone(),
	}
}

// StaffRecord extracts the classification signals of a staff row
func (m *Mapper) StaffRecord(row domain.Row) classifier.Record {
	t := m.aliases.Staff
	role := t.Lookup(row, FieldRole)
	return classifier.Record{
		Subsidiary: t.Lookup(row, FieldSubsidiary),
		Business:   t.Lookup(row, FieldBusiness),
		Text:       []string{t.Lookup(row, FieldName), role, t.Lookup(row, FieldNotes)},
		Role:       role,
	}
}

// Orders normalizes a batch of order rows
func (m *Mapper) Orders(rows []domain.Row) []domain.Order {
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.Order(row))
	}
	return out
}

// Payouts normalizes a batch of payout rows
func (m *Mapper) Payouts(rows []domain.Row) []domain.Payout {
	out := make([]domain.Payout, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.Payout(row))
	}
	return out
}

// StaffList normalizes a batch of staff rows
func (m *Mapper) StaffList(rows []domain.Row) []domain.Staff {
	out := make([]domain.Staff, 0, len(rows))
	for _, row := range rows {
		out = append(out, m.Staff(row))
	}
	return out
}

func (m *Mapper) classify(rec classifier.Record) domain.Subsidiary {
	if m.classifier == nil {
		return domain.DefaultSubsidiary
	}
	if sub := m.classifier.Classify(rec); sub.IsValid() {
		return sub
	}
	return domain.DefaultSubsidiary
}

func (m *Mapper) date(field, raw string) *time.Time {
	d := ParseDateIn(raw, m.loc)
	if d == nil && raw != "" {
		m.malformed(field, raw)
	}
	return d
}

func (m *Mapper) amount(field, raw string) float64 {
	if !validAmount(raw) {
		m.malformed(field, raw)
		return 0
	}
	return ParseAmount(raw)
}

func (m *Mapper) malformed(field, value string) {
	m.logger.Debug("field defaulted", slog.Any("error", apperrors.NewMalformedFieldError(field, value)))
}

func (m *Mapper) unmapped(field, value string) {
	m.logger.Debug("value mapped to default bucket", slog.Any("error", apperrors.NewUnmappedValueError(field, value)))
}

// DeriveOrderID builds ORD-<unix millis>-<customer prefix> for orders without an id.
// The prefix is the first four letters or digits of the upper-cased customer, or NA.
func DeriveOrderID(date *time.Time, customer string) string {
	var millis int64
	if date != nil {
		millis = date.UnixMilli()
	}

	var prefix strings.Builder
	for _, r := range strings.ToUpper(customer) {
		if prefix.Len() >= 4 {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			prefix.WriteRune(r)
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString("NA")
	}

	return fmt.Sprintf("ORD-%d-%s", millis, prefix.String())
}
