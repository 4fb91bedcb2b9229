package source

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/tabular"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// SheetsFetcher reads datasets through the Google Sheets API
type SheetsFetcher struct {
	service    *sheets.Service
	documentID string
	tabs       Tabs
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewSheetsFetcher authenticates with the configured API key or credentials
// file. Extra client options are appended after the credentials.
func NewSheetsFetcher(ctx context.Context, cfg config.SourceConfig, opts ...option.ClientOption) (*SheetsFetcher, error) {
	var clientOpts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	case cfg.CredentialsFile != "":
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	case len(opts) == 0:
		return nil, apperrors.NewConfigError("sheets mode needs an api key or a credentials file", nil)
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to create sheets service", err)
	}

	return &SheetsFetcher{
		service:    service,
		documentID: cfg.DocumentID,
		tabs:       TabsFromConfig(cfg),
		timeout:    cfg.FetchTimeout,
		limiter:    newLimiter(cfg.RateLimitRPS, cfg.RateBurst),
	}, nil
}

// Fetch reads every value of the dataset's sheet
func (f *SheetsFetcher) Fetch(ctx context.Context, ds Dataset) ([]domain.Row, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewSourceUnavailableError("rate limiter wait aborted", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	sheet := f.tabs.sheetName(ds)
	resp, err := f.service.Spreadsheets.Values.Get(f.documentID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to read sheet %s", sheet), err).
			WithContext("dataset", string(ds))
	}

	return tabular.FromCells(valuesToCells(resp.Values)).Records(), nil
}

// valuesToCells renders API values as strings
func valuesToCells(values [][]interface{}) [][]string {
	cells := make([][]string, len(values))
	for i, row := range values {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			cells[i][j] = fmt.Sprint(v)
		}
	}
	return cells
}
