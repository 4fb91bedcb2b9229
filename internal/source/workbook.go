package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/tabular"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// WorkbookFetcher reads datasets from local files. Path is either an .xlsx
// workbook holding one sheet per dataset or a directory of <sheet>.csv files.
type WorkbookFetcher struct {
	path string
	tabs Tabs
}

// NewWorkbookFetcher creates a fetcher over path
func NewWorkbookFetcher(path string, tabs Tabs) *WorkbookFetcher {
	return &WorkbookFetcher{path: path, tabs: tabs}
}

// Fetch reads one dataset. The file is reopened on every call so edits are picked up.
func (f *WorkbookFetcher) Fetch(ctx context.Context, ds Dataset) ([]domain.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewSourceUnavailableError("fetch cancelled", err)
	}

	info, err := os.Stat(f.path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("workbook %s not readable", f.path), err)
	}

	sheet := f.tabs.sheetName(ds)
	if info.IsDir() {
		return f.fetchCSV(ds, sheet)
	}
	return f.fetchXLSX(ds, sheet)
}

func (f *WorkbookFetcher) fetchCSV(ds Dataset, sheet string) ([]domain.Row, error) {
	candidates := []string{sheet + ".csv", strings.ToLower(sheet) + ".csv", string(ds) + ".csv"}
	for _, name := range candidates {
		data, err := os.ReadFile(filepath.Join(f.path, name))
		if err == nil {
			return tabular.DecodeRecords(string(data)), nil
		}
		if !os.IsNotExist(err) {
			return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to read %s", name), err)
		}
	}
	return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("no csv file for %s in %s", ds, f.path), nil).
		WithContext("dataset", string(ds))
}

func (f *WorkbookFetcher) fetchXLSX(ds Dataset, sheet string) ([]domain.Row, error) {
	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to open workbook %s", f.path), err)
	}
	defer wb.Close()

	name := ""
	for _, candidate := range wb.GetSheetList() {
		if strings.EqualFold(candidate, sheet) || strings.EqualFold(candidate, string(ds)) {
			name = candidate
			break
		}
	}
	if name == "" {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("sheet %s not found in workbook", sheet), nil).
			WithContext("dataset", string(ds))
	}

	cells, err := wb.GetRows(name)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to read sheet %s", name), err)
	}

	return tabular.FromCells(cells).Records(), nil
}
