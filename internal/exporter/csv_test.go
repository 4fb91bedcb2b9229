package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/shared/testutil"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()
	logger, logs := testutil.NewTestLogger(t)

	date := time.Date(2024, 5, 3, 23, 30, 0, 0, time.UTC)
	ds := Dataset{
		Orders: []domain.Order{{
			ID: "1", Date: &date, Customer: "Ann, Jr.", Category: domain.CategoryEngineReplacement,
			Total: 15000, Staff: "Bob", Subsidiary: domain.SubsidiaryKintsugi,
		}},
		Payouts: []domain.Payout{{
			Person: "Bob", Week: &date, Amount: 500.5, Type: domain.PayoutEarning, Subsidiary: domain.SubsidiaryKintsugi,
		}},
		Staff: []domain.Staff{{
			Name: "Bob", StateID: "S1", Role: "mechanic", Active: true, Subsidiary: domain.SubsidiaryKintsugi,
			Metrics: domain.StaffMetrics{TotalOrders: 1, TotalRevenue: 15000, TotalPayouts: 500.5, AvgOrderValue: 15000},
		}},
	}

	loc := time.FixedZone("UTC+2", 2*60*60)
	paths, err := NewWriter(dir, loc, logger).WriteAll(ds)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, OrdersFile),
		filepath.Join(dir, PayoutsFile),
		filepath.Join(dir, StaffFile),
	}, paths)

	orders := readCSV(t, paths[0])
	require.Len(t, orders, 2)
	assert.Equal(t, orderHeaders, orders[0])
	assert.Equal(t, []string{"1", "2024-05-04", "Ann, Jr.", "engine_replacement", "15000.00", "", "Bob", "kintsugi", ""}, orders[1])

	payouts := readCSV(t, paths[1])
	assert.Equal(t, "500.50", payouts[1][3])

	staff := readCSV(t, paths[2])
	assert.Equal(t, []string{"Bob", "S1", "mechanic", "true", "kintsugi", "1", "15000.00", "500.50", "15000.00"}, staff[1])

	assert.Equal(t, 3, logs.Count())
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Writing CSV file")
	testutil.AssertLogAttr(t, logs, "record_count", int64(1))
}

func TestWriter_EmptyDatasetWritesHeaders(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "today")
	paths, err := NewWriter(dir, nil, nil).WriteAll(Dataset{})
	require.NoError(t, err)

	for _, path := range paths {
		records := readCSV(t, path)
		assert.Len(t, records, 1)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "13.40", formatFloat(13.4))
	assert.Equal(t, "0.00", formatFloat(0))
	assert.Equal(t, "false", formatBool(false))
	assert.Equal(t, "", formatDate(nil, time.UTC))
}
