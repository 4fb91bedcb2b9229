package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// File names written by Writer.WriteAll
const (
	OrdersFile  = "orders.csv"
	PayoutsFile = "payouts.csv"
	StaffFile   = "staff.csv"
)

var (
	orderHeaders  = []string{"id", "date", "customer", "category", "total", "status", "staff", "subsidiary", "notes"}
	payoutHeaders = []string{"person", "state_id", "week", "amount", "type", "subsidiary", "notes"}
	staffHeaders  = []string{"name", "state_id", "role", "active", "subsidiary", "total_orders", "total_revenue", "total_payouts", "avg_order_value"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool
}

// Writer writes CSV exports below a base directory
type Writer struct {
	dir    string
	loc    *time.Location
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir. Dates are rendered in loc.
func NewWriter(dir string, loc *time.Location, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Writer{dir: dir, loc: loc, logger: logger}
}

// Dataset groups the entities written by WriteAll
type Dataset struct {
	Orders  []domain.Order
	Payouts []domain.Payout
	Staff   []domain.Staff
}

// WriteAll writes orders, payouts and staff files and returns their paths
func (w *Writer) WriteAll(ds Dataset) ([]string, error) {
	steps := []struct {
		name string
		rows [][]string
		head []string
	}{
		{OrdersFile, w.orderRows(ds.Orders), orderHeaders},
		{PayoutsFile, w.payoutRows(ds.Payouts), payoutHeaders},
		{StaffFile, w.staffRows(ds.Staff), staffHeaders},
	}

	paths := make([]string, 0, len(steps))
	for _, step := range steps {
		path, err := w.WriteCSV(step.name, WriteOptions{
			Headers:   step.head,
			Records:   step.rows,
			BOMPrefix: true,
		})
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteCSV writes one file and returns its full path
func (w *Writer) WriteCSV(name string, options WriteOptions) (string, error) {
	fullPath := w.resolvePath(name)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix {
		if _, err := file.Write(utf8BOM); err != nil {
			return "", fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return "", fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (w *Writer) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}

func (w *Writer) orderRows(orders []domain.Order) [][]string {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.ID,
			formatDate(o.Date, w.loc),
			o.Customer,
			string(o.Category),
			formatFloat(o.Total),
			o.Status,
			o.Staff,
			string(o.Subsidiary),
			o.Notes,
		})
	}
	return rows
}

func (w *Writer) payoutRows(payouts []domain.Payout) [][]string {
	rows := make([][]string, 0, len(payouts))
	for _, p := range payouts {
		rows = append(rows, []string{
			p.Person,
			p.StateID,
			formatDate(p.Week, w.loc),
			formatFloat(p.Amount),
			string(p.Type),
			string(p.Subsidiary),
			p.Notes,
		})
	}
	return rows
}

func (w *Writer) staffRows(staff []domain.Staff) [][]string {
	rows := make([][]string, 0, len(staff))
	for _, s := range staff {
		rows = append(rows, []string{
			s.Name,
			s.StateID,
			s.Role,
			formatBool(s.Active),
			string(s.Subsidiary),
			formatInt(s.Metrics.TotalOrders),
			formatFloat(s.Metrics.TotalRevenue),
			formatFloat(s.Metrics.TotalPayouts),
			formatFloat(s.Metrics.AvgOrderValue),
		})
	}
	return rows
}
