package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/tabular"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// maxExportBytes bounds the size of a single export download
const maxExportBytes = 32 << 20

// ExportFetcher downloads datasets through the spreadsheet CSV export endpoint
type ExportFetcher struct {
	client     *http.Client
	baseURL    string
	documentID string
	tabs       Tabs
	timeout    time.Duration
	maxBytes   int64
	limiter    *rate.Limiter
}

// NewExportFetcher creates an export fetcher. A nil client means http.DefaultClient.
func NewExportFetcher(cfg config.SourceConfig, client *http.Client) *ExportFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &ExportFetcher{
		client:     client,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		documentID: cfg.DocumentID,
		tabs:       TabsFromConfig(cfg),
		timeout:    cfg.FetchTimeout,
		maxBytes:   maxExportBytes,
		limiter:    newLimiter(cfg.RateLimitRPS, cfg.RateBurst),
	}
}

// URL returns the export address of ds. Tabs with a gid use the export
// endpoint; the others are addressed by sheet name.
func (f *ExportFetcher) URL(ds Dataset) string {
	doc := url.PathEscape(f.documentID)
	if gid := strings.TrimSpace(f.tabs[ds].GID); gid != "" {
		return fmt.Sprintf("%s/%s/export?format=csv&gid=%s", f.baseURL, doc, url.QueryEscape(gid))
	}
	return fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&sheet=%s", f.baseURL, doc, url.QueryEscape(f.tabs.sheetName(ds)))
}

// Fetch downloads and decodes one dataset
func (f *ExportFetcher) Fetch(ctx context.Context, ds Dataset) ([]domain.Row, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewSourceUnavailableError("rate limiter wait aborted", err)
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	target := f.URL(ds)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError("failed to build export request", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to fetch %s", ds), err).
			WithContext("dataset", string(ds))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("export returned status %d", resp.StatusCode), nil).
			WithContext("dataset", string(ds)).
			WithContext("status", resp.StatusCode)
	}

	// one byte past the limit tells a full body from a truncated one
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("failed to read %s export", ds), err).
			WithContext("dataset", string(ds))
	}
	if int64(len(body)) > f.maxBytes {
		return nil, apperrors.NewSourceUnavailableError(fmt.Sprintf("%s export exceeds %d bytes", ds, f.maxBytes), nil).
			WithContext("dataset", string(ds)).
			WithContext("limit_bytes", f.maxBytes)
	}

	return tabular.DecodeRecords(string(body)), nil
}

// newLimiter builds an outbound limiter; rps <= 0 disables limiting
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
