package http

import (
	"context"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/aggregate"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/services"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations exposed over HTTP
type DashboardServiceInterface interface {
	Orders(ctx context.Context, q services.Query) (*services.OrdersView, error)
	Payouts(ctx context.Context, q services.Query) (*services.PayoutsView, error)
	Staff(ctx context.Context, q services.Query) (*services.StaffView, error)
	Summary(ctx context.Context, q services.Query) (*services.SummaryReport, error)
	Alerts(ctx context.Context, q services.Query) []aggregate.Alert
	Weeks(ctx context.Context, q services.Query) ([]services.WeekReport, error)
	Refresh(ctx context.Context) services.RefreshResult

	// Classifier rules
	Rules() map[domain.Subsidiary]classifier.RuleConfig
	UpdateRule(ctx context.Context, sub domain.Subsidiary, kind classifier.SignalKind, value, op string) (bool, error)
	Classify(ds source.Dataset, row domain.Row) (*services.Classification, error)
}
