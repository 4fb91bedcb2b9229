package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
)

func TestSheetsFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/spreadsheets/doc-1/values/Orders"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Orders!A1:B3","majorDimension":"ROWS","values":[["Customer","Total"],["A","$15,000"],["B"]]}`))
	}))
	defer srv.Close()

	cfg := config.Default().Source
	cfg.DocumentID = "doc-1"
	cfg.APIKey = "test-key"
	cfg.RateLimitRPS = 0

	f, err := NewSheetsFetcher(context.Background(), cfg,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	rows, err := f.Fetch(context.Background(), DatasetOrders)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "$15,000", rows[0]["Total"])
	assert.Equal(t, "", rows[1]["Total"])
}

func newTestSheetsFetcher(t *testing.T, srv *httptest.Server, timeout time.Duration) *SheetsFetcher {
	t.Helper()

	cfg := config.Default().Source
	cfg.DocumentID = "doc-1"
	cfg.APIKey = "test-key"
	cfg.RateLimitRPS = 0
	cfg.FetchTimeout = timeout

	f, err := NewSheetsFetcher(context.Background(), cfg,
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return f
}

func TestSheetsFetcher_SkipsBlankRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"range":"Staff!A1:B4","majorDimension":"ROWS","values":[["Name","Active"],["Bob","true"],[],["Tina","true"]]}`))
	}))
	defer srv.Close()

	rows, err := newTestSheetsFetcher(t, srv, time.Second).Fetch(context.Background(), DatasetStaff)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[0]["Name"])
	assert.Equal(t, "Tina", rows[1]["Name"])
}

func TestSheetsFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := newTestSheetsFetcher(t, srv, 50*time.Millisecond)

	started := time.Now()
	_, err := f.Fetch(context.Background(), DatasetOrders)

	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
	assert.Less(t, time.Since(started), time.Second)
}

func TestSheetsFetcher_RequiresCredentials(t *testing.T) {
	cfg := config.Default().Source
	cfg.DocumentID = "doc-1"

	_, err := NewSheetsFetcher(context.Background(), cfg)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestValuesToCells(t *testing.T) {
	cells := valuesToCells([][]interface{}{{"a", 1.5, nil, true}})
	assert.Equal(t, [][]string{{"a", "1.5", "", "true"}}, cells)
}
