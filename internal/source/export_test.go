package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/config"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
)

func testSourceConfig(baseURL string) config.SourceConfig {
	cfg := config.Default().Source
	cfg.BaseURL = baseURL
	cfg.DocumentID = "doc-1"
	cfg.OrdersGID = "0"
	cfg.RateLimitRPS = 0
	cfg.FetchTimeout = time.Second
	return cfg
}

func TestExportFetcher_URL(t *testing.T) {
	f := NewExportFetcher(testSourceConfig("https://example.test/d/"), nil)

	assert.Equal(t, "https://example.test/d/doc-1/export?format=csv&gid=0", f.URL(DatasetOrders))
	assert.Equal(t, "https://example.test/d/doc-1/gviz/tq?tqx=out:csv&sheet=Payouts", f.URL(DatasetPayouts))
}

func TestExportFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/doc-1/export", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("Customer,Total\nA,\"$15,000\"\n"))
	}))
	defer srv.Close()

	f := NewExportFetcher(testSourceConfig(srv.URL), srv.Client())
	rows, err := f.Fetch(context.Background(), DatasetOrders)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "$15,000", rows[0]["Total"])
}

func TestExportFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewExportFetcher(testSourceConfig(srv.URL), srv.Client())
	_, err := f.Fetch(context.Background(), DatasetStaff)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
}

func TestExportFetcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testSourceConfig(srv.URL)
	cfg.FetchTimeout = 50 * time.Millisecond
	f := NewExportFetcher(cfg, srv.Client())

	_, err := f.Fetch(context.Background(), DatasetOrders)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
}

func TestExportFetcher_OversizedBody(t *testing.T) {
	body := "Customer,Total\nA,100\nB,200\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	f := NewExportFetcher(testSourceConfig(srv.URL), srv.Client())

	f.maxBytes = int64(len(body))
	rows, err := f.Fetch(context.Background(), DatasetOrders)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	f.maxBytes = int64(len(body)) - 3
	rows, err = f.Fetch(context.Background(), DatasetOrders)
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSourceUnavailable))
}

func TestExportFetcher_OversizedBodyServesCachedRows(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			_, _ = w.Write([]byte("name\nKai\nRin\nMo\nTeo\n"))
			return
		}
		_, _ = w.Write([]byte("name\nKai\n"))
	}))
	defer srv.Close()

	f := NewExportFetcher(testSourceConfig(srv.URL), srv.Client())
	f.maxBytes = 16
	cache, clock, _ := newTestCache(f)

	first := cache.Fetch(context.Background(), DatasetStaff)
	clock.Advance(time.Hour)
	second := cache.Fetch(context.Background(), DatasetStaff)

	require.Len(t, first, 1)
	assert.Equal(t, first, second)
}

func TestExportFetcher_ThroughCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) > 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("name\nKai\n"))
	}))
	defer srv.Close()

	cache, clock, _ := newTestCache(NewExportFetcher(testSourceConfig(srv.URL), srv.Client()))

	first := cache.Fetch(context.Background(), DatasetStaff)
	clock.Advance(time.Hour)
	second := cache.Fetch(context.Background(), DatasetStaff)

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, first, second)
}
