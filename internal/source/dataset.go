// Package source fetches the orders, payouts and staff datasets and keeps them
// in a TTL cache that falls back to the last good rows when a fetch fails.
package source

import (
	"context"
	"strings"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// Dataset names one of the logical record sets
type Dataset string

const (
	DatasetOrders  Dataset = "orders"
	DatasetPayouts Dataset = "payouts"
	DatasetStaff   Dataset = "staff"
)

// Datasets lists every dataset in a stable order
func Datasets() []Dataset {
	return []Dataset{DatasetOrders, DatasetPayouts, DatasetStaff}
}

// ParseDataset resolves user input to a dataset
func ParseDataset(s string) (Dataset, bool) {
	ds := Dataset(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Datasets() {
		if ds == known {
			return ds, true
		}
	}
	return "", false
}

// Fetcher retrieves the raw rows of a dataset
type Fetcher interface {
	Fetch(ctx context.Context, ds Dataset) ([]domain.Row, error)
}

// Tab locates a dataset inside the spreadsheet document
type Tab struct {
	GID   string
	Sheet string
}

// Tabs maps datasets to their tabs
type Tabs map[Dataset]Tab

// TabsFromConfig reads the per-dataset tab settings
func TabsFromConfig(cfg config.SourceConfig) Tabs {
	return Tabs{
		DatasetOrders:  {GID: cfg.OrdersGID, Sheet: cfg.OrdersSheet},
		DatasetPayouts: {GID: cfg.PayoutsGID, Sheet: cfg.PayoutsSheet},
		DatasetStaff:   {GID: cfg.StaffGID, Sheet: cfg.StaffSheet},
	}
}

// sheetName returns the tab's sheet name, defaulting to the dataset name
func (t Tabs) sheetName(ds Dataset) string {
	if name := strings.TrimSpace(t[ds].Sheet); name != "" {
		return name
	}
	return string(ds)
}
