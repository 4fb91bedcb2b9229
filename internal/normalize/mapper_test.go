package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

func newTestMapper() *Mapper {
	return NewMapper(DefaultAliases(), classifier.New(nil), time.UTC, nil)
}

func TestMapper_OrderEndToEnd(t *testing.T) {
	m := newTestMapper()

	order := m.Order(domain.Row{"Customer": "A", "Category": "Engine", "Total": "$15,000", "Staff": "Bob"})

	assert.Equal(t, domain.CategoryEngineReplacement, order.Category)
	assert.Equal(t, 15000.0, order.Total)
	assert.Equal(t, domain.SubsidiaryKintsugi, order.Subsidiary)
	assert.Equal(t, "A", order.Customer)
	assert.Equal(t, "Bob", order.Staff)
	assert.Equal(t, domain.DefaultOrderStatus, order.Status)
	assert.Nil(t, order.Date)
	assert.Equal(t, "ORD-0-A", order.ID)
}

func TestMapper_OrderDefaults(t *testing.T) {
	m := newTestMapper()

	order := m.Order(domain.Row{
		"date":     "2024-01-02",
		"customer": "  ",
		"Customer": "Mo's Tacos & Co",
		"amount":   "-5",
		"Status":   "pending",
		"notes":    "catering run",
	})

	require.NotNil(t, order.Date)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *order.Date)
	assert.Equal(t, "Mo's Tacos & Co", order.Customer, "blank alias falls through")
	assert.Equal(t, 0.0, order.Total, "negative totals clamp to zero")
	assert.Equal(t, "pending", order.Status)
	assert.Equal(t, domain.CategoryOther, order.Category)
	assert.Equal(t, domain.SubsidiaryTakosuya, order.Subsidiary)
	assert.Equal(t, "ORD-1704153600000-MOST", order.ID)
}

func TestMapper_OrderExplicitID(t *testing.T) {
	m := newTestMapper()

	order := m.Order(domain.Row{"Order ID": "X-9", "ID": "", "subsidiary": "Takosuya"})

	assert.Equal(t, "X-9", order.ID)
	assert.Equal(t, domain.SubsidiaryTakosuya, order.Subsidiary)
}

func TestMapper_RawIsCopy(t *testing.T) {
	m := newTestMapper()
	row := domain.Row{"Customer": "A"}

	order := m.Order(row)
	row["Customer"] = "changed"

	assert.Equal(t, "A", order.Raw["Customer"])
}

func TestMapper_Payout(t *testing.T) {
	m := newTestMapper()

	p := m.Payout(domain.Row{
		"Name":        "Alice",
		"State ID":    "S-1",
		"Week Ending": "2024-02-04",
		"Amount":      "$1,234.50",
		"Type":        "Reimburse",
		"business":    "tako stand",
	})

	assert.Equal(t, "Alice", p.Person)
	assert.Equal(t, "S-1", p.StateID)
	require.NotNil(t, p.Week)
	assert.Equal(t, 4, p.Week.Day())
	assert.Equal(t, 1234.5, p.Amount)
	assert.Equal(t, domain.PayoutReimbursement, p.Type)
	assert.Equal(t, domain.SubsidiaryTakosuya, p.Subsidiary)
}

func TestMapper_Staff(t *testing.T) {
	m := newTestMapper()

	staff := m.StaffList([]domain.Row{
		{"Name": "Kai", "Role": "Cook", "Status": "Inactive"},
		{"name": "Rin", "role": "Mechanic", "stateId": "S-2"},
	})

	require.Len(t, staff, 2)
	assert.False(t, staff[0].Active)
	assert.Equal(t, domain.SubsidiaryTakosuya, staff[0].Subsidiary)
	assert.True(t, staff[1].Active)
	assert.Equal(t, "S-2", staff[1].StateID)
	assert.Equal(t, domain.SubsidiaryKintsugi, staff[1].Subsidiary)
}

func TestMapper_NilClassifier(t *testing.T) {
	m := NewMapper(DefaultAliases(), nil, nil, nil)
	assert.Equal(t, domain.SubsidiaryKintsugi, m.Order(domain.Row{"Category": "food"}).Subsidiary)
}

func TestAliasLookupPriority(t *testing.T) {
	table := AliasTable{"customer": {"customer", "Customer", "client"}}

	assert.Equal(t, "first", table.Lookup(domain.Row{"customer": "first", "Customer": "second"}, "customer"))
	assert.Equal(t, "third", table.Lookup(domain.Row{"customer": "", "client": " third "}, "customer"))
	assert.Equal(t, "", table.Lookup(domain.Row{"other": "x"}, "customer"))
	assert.Equal(t, "raw", table.Lookup(domain.Row{"unlisted": "raw"}, "unlisted"))
}

func TestParseAliases(t *testing.T) {
	aliases, err := ParseAliases([]byte(`
aliases:
  order:
    customer: [Client, customer]
  staff:
    role: [Position]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Client", "customer"}, aliases.Order[FieldCustomer])
	assert.Equal(t, []string{"Position"}, aliases.Staff[FieldRole])
	assert.Equal(t, DefaultAliases().Order[FieldTotal], aliases.Order[FieldTotal])

	m := NewMapper(aliases, classifier.New(nil), time.UTC, nil)
	assert.Equal(t, "Acme", m.Order(domain.Row{"Client": "Acme", "Customer": "ignored"}).Customer)

	_, err = ParseAliases([]byte("aliases: [nope"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestDeriveOrderID(t *testing.T) {
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "ORD-1704067200000-JOHN", DeriveOrderID(&d, "john smith"))
	assert.Equal(t, "ORD-0-NA", DeriveOrderID(nil, "--"))
	assert.Equal(t, "ORD-0-AB12", DeriveOrderID(nil, "a.b-1 2 3"))
}
