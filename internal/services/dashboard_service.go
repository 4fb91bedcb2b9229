package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/aggregate"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/infrastructure"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/normalize"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/timerange"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// DatasetCache is the part of the source cache the service depends on
type DatasetCache interface {
	FetchAll(ctx context.Context) source.Data
	Refresh(ctx context.Context) source.Data
	Stats() []source.EntryStats
}

// Query selects a subsidiary and a time window. An empty subsidiary means both;
// an empty period means the default period.
type Query struct {
	Subsidiary domain.Subsidiary
	Period     timerange.Period
	Start      *time.Time
	End        *time.Time
}

// Entities are the normalized datasets
type Entities struct {
	Orders  []domain.Order
	Payouts []domain.Payout
	Staff   []domain.Staff
}

// DashboardService builds dashboard views from the cached datasets
type DashboardService struct {
	cache      DatasetCache
	mapper     *normalize.Mapper
	classifier *classifier.Classifier
	loc        *time.Location
	now        func() time.Time
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    *infrastructure.PipelineMetrics
}

// Option configures a DashboardService
type Option func(*DashboardService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.now = now }
}

// WithTelemetry records spans and pipeline metrics
func WithTelemetry(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) Option {
	return func(s *DashboardService) {
		s.tracer = tracer
		s.metrics = metrics
	}
}

// NewDashboardService wires the pipeline stages together
func NewDashboardService(cache DatasetCache, mapper *normalize.Mapper, cls *classifier.Classifier, loc *time.Location, logger *slog.Logger, opts ...Option) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &DashboardService{
		cache:      cache,
		mapper:     mapper,
		classifier: cls,
		loc:        loc,
		now:        time.Now,
		logger:     infrastructure.WithComponent(logger, "dashboard_service"),
		tracer:     noop.NewTracerProvider().Tracer("dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches and normalizes every dataset
func (s *DashboardService) Load(ctx context.Context) Entities {
	ctx, span := s.tracer.Start(ctx, "dashboard.load")
	defer span.End()

	start := time.Now()
	raw := s.cache.FetchAll(ctx)
	entities := Entities{
		Orders:  s.mapper.Orders(raw.Orders),
		Payouts: s.mapper.Payouts(raw.Payouts),
		Staff:   s.mapper.StaffList(raw.Staff),
	}

	span.SetAttributes(
		attribute.Int("orders", len(entities.Orders)),
		attribute.Int("payouts", len(entities.Payouts)),
		attribute.Int("staff", len(entities.Staff)),
	)
	s.record(ctx, entities, time.Since(start))

	s.logger.DebugContext(ctx, "datasets normalized",
		slog.Int("orders", len(entities.Orders)),
		slog.Int("payouts", len(entities.Payouts)),
		slog.Int("staff", len(entities.Staff)))

	return entities
}

// Window resolves the current and previous windows of q
func (s *DashboardService) Window(q Query) (domain.TimeRange, domain.TimeRange, error) {
	engine := timerange.NewEngine(s.loc, timerange.WithNow(s.now))
	switch q.Period {
	case "":
	case timerange.PeriodCustom:
		engine.SetCustomRange(q.Start, q.End)
	default:
		if err := engine.SetPeriod(q.Period); err != nil {
			return domain.TimeRange{}, domain.TimeRange{}, err
		}
	}
	return engine.Current(), engine.Previous(), nil
}

// OrdersView lists the orders of a window
type OrdersView struct {
	Range      domain.TimeRange                          `json:"range"`
	Orders     []domain.Order                            `json:"orders"`
	Total      float64                                   `json:"total"`
	ByCategory map[domain.OrderCategory]aggregate.Totals `json:"by_category"`
	ByStaff    map[string]aggregate.StaffTotals          `json:"by_staff"`
}

// Orders returns the orders matching q
func (s *DashboardService) Orders(ctx context.Context, q Query) (*OrdersView, error) {
	current, _, err := s.Window(q)
	if err != nil {
		return nil, err
	}

	orders := s.orders(s.Load(ctx), q.Subsidiary, current)
	return &OrdersView{
		Range:      current,
		Orders:     orders,
		Total:      aggregate.SumOrders(orders),
		ByCategory: aggregate.GroupByCategory(orders),
		ByStaff:    aggregate.GroupByStaff(orders),
	}, nil
}

// PayoutsView lists the payouts of a window
type PayoutsView struct {
	Range    domain.TimeRange                  `json:"range"`
	Payouts  []domain.Payout                   `json:"payouts"`
	Total    float64                           `json:"total"`
	ByPerson map[string]aggregate.PersonTotals `json:"by_person"`
	ByWeek   map[string]aggregate.Totals       `json:"by_week"`
}

// Payouts returns the payouts matching q
func (s *DashboardService) Payouts(ctx context.Context, q Query) (*PayoutsView, error) {
	current, _, err := s.Window(q)
	if err != nil {
		return nil, err
	}

	payouts := s.payouts(s.Load(ctx), q.Subsidiary, current)
	return &PayoutsView{
		Range:    current,
		Payouts:  payouts,
		Total:    aggregate.SumPayouts(payouts),
		ByPerson: aggregate.GroupByPerson(payouts),
		ByWeek:   aggregate.GroupByWeek(payouts),
	}, nil
}

// StaffView lists staff with metrics computed over a window
type StaffView struct {
	Range domain.TimeRange `json:"range"`
	Staff []domain.Staff   `json:"staff"`
}

// Staff returns the staff of q's subsidiary with metrics for q's window
func (s *DashboardService) Staff(ctx context.Context, q Query) (*StaffView, error) {
	current, _, err := s.Window(q)
	if err != nil {
		return nil, err
	}

	entities := s.Load(ctx)
	staff := aggregate.FilterBySubsidiary(q.Subsidiary, entities.Staff)
	aggregate.ApplyStaffMetrics(staff,
		s.orders(entities, q.Subsidiary, current),
		s.payouts(entities, q.Subsidiary, current))

	return &StaffView{Range: current, Staff: staff}, nil
}

// SubsidiaryReport is the summary of one subsidiary with trends
type SubsidiaryReport struct {
	Summary    aggregate.Summary                         `json:"summary"`
	Previous   aggregate.Summary                         `json:"previous"`
	KPIs       aggregate.KPIs                            `json:"kpis"`
	ByCategory map[domain.OrderCategory]aggregate.Totals `json:"by_category"`
}

// SummaryReport compares the current window with the previous one
type SummaryReport struct {
	Range        domain.TimeRange   `json:"range"`
	Previous     domain.TimeRange   `json:"previous_range"`
	Subsidiaries []SubsidiaryReport `json:"subsidiaries"`
}

// Summary builds per subsidiary summaries and KPIs for q
func (s *DashboardService) Summary(ctx context.Context, q Query) (*SummaryReport, error) {
	current, previous, err := s.Window(q)
	if err != nil {
		return nil, err
	}
	return s.summary(s.Load(ctx), q, current, previous), nil
}

func (s *DashboardService) summary(entities Entities, q Query, current, previous domain.TimeRange) *SummaryReport {
	curOrders := timerange.FilterByRange(current, entities.Orders, domain.OrderDate)
	curPayouts := timerange.FilterByRange(current, entities.Payouts, domain.PayoutWeek)
	prevOrders := timerange.FilterByRange(previous, entities.Orders, domain.OrderDate)
	prevPayouts := timerange.FilterByRange(previous, entities.Payouts, domain.PayoutWeek)

	report := &SummaryReport{Range: current, Previous: previous}
	for _, sub := range subsidiaries(q.Subsidiary) {
		cur := aggregate.SubsidiarySummary(sub, curOrders, curPayouts, entities.Staff)
		prev := aggregate.SubsidiarySummary(sub, prevOrders, prevPayouts, entities.Staff)
		report.Subsidiaries = append(report.Subsidiaries, SubsidiaryReport{
			Summary:    cur,
			Previous:   prev,
			KPIs:       aggregate.BuildKPIs(cur, &prev),
			ByCategory: aggregate.GroupByCategory(aggregate.FilterBySubsidiary(sub, curOrders)),
		})
	}
	return report
}

// Alerts flags staff issues across the whole dataset. Only staff are
// filtered by subsidiary; payouts match by name regardless of their own
// classification.
func (s *DashboardService) Alerts(ctx context.Context, q Query) []aggregate.Alert {
	entities := s.Load(ctx)
	return aggregate.IdentifyAlerts(aggregate.FilterBySubsidiary(q.Subsidiary, entities.Staff), entities.Payouts)
}

// WeekReport aggregates one Monday to Sunday week
type WeekReport struct {
	Range   domain.TimeRange `json:"range"`
	Orders  int              `json:"orders"`
	Revenue float64          `json:"revenue"`
	Payouts float64          `json:"payouts"`
}

// Weeks splits q's window into weeks and aggregates each
func (s *DashboardService) Weeks(ctx context.Context, q Query) ([]WeekReport, error) {
	current, _, err := s.Window(q)
	if err != nil {
		return nil, err
	}

	entities := s.Load(ctx)
	orders := aggregate.FilterBySubsidiary(q.Subsidiary, entities.Orders)
	payouts := aggregate.FilterBySubsidiary(q.Subsidiary, entities.Payouts)

	weeks := timerange.WeeksInRange(current)
	reports := make([]WeekReport, 0, len(weeks))
	for _, week := range weeks {
		weekOrders := timerange.FilterByRange(week, orders, domain.OrderDate)
		reports = append(reports, WeekReport{
			Range:   week,
			Orders:  len(weekOrders),
			Revenue: aggregate.SumOrders(weekOrders),
			Payouts: aggregate.SumPayouts(timerange.FilterByRange(week, payouts, domain.PayoutWeek)),
		})
	}
	return reports, nil
}

// Snapshot is the one-shot report printed by the snapshot command
type Snapshot struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Summary     *SummaryReport      `json:"summary"`
	Alerts      []aggregate.Alert   `json:"alerts"`
	Sources     []source.EntryStats `json:"sources"`
}

// Snapshot loads the datasets once and builds the summary and alerts for q
func (s *DashboardService) Snapshot(ctx context.Context, q Query) (*Snapshot, error) {
	current, previous, err := s.Window(q)
	if err != nil {
		return nil, err
	}

	entities := s.Load(ctx)
	return &Snapshot{
		GeneratedAt: s.now(),
		Summary:     s.summary(entities, q, current, previous),
		Alerts:      aggregate.IdentifyAlerts(aggregate.FilterBySubsidiary(q.Subsidiary, entities.Staff), entities.Payouts),
		Sources:     s.cache.Stats(),
	}, nil
}

// RefreshResult reports the row counts after a refresh
type RefreshResult struct {
	RefreshedAt time.Time           `json:"refreshed_at"`
	Orders      int                 `json:"orders"`
	Payouts     int                 `json:"payouts"`
	Staff       int                 `json:"staff"`
	Sources     []source.EntryStats `json:"sources"`
}

// Refresh drops the cache and refetches every dataset
func (s *DashboardService) Refresh(ctx context.Context) RefreshResult {
	data := s.cache.Refresh(ctx)
	s.logger.InfoContext(ctx, "datasets refreshed",
		slog.Int("orders", len(data.Orders)),
		slog.Int("payouts", len(data.Payouts)),
		slog.Int("staff", len(data.Staff)))

	return RefreshResult{
		RefreshedAt: s.now(),
		Orders:      len(data.Orders),
		Payouts:     len(data.Payouts),
		Staff:       len(data.Staff),
		Sources:     s.cache.Stats(),
	}
}

// Sources reports the cache state
func (s *DashboardService) Sources() []source.EntryStats {
	return s.cache.Stats()
}

// Rules returns the current classifier rules
func (s *DashboardService) Rules() map[domain.Subsidiary]classifier.RuleConfig {
	return s.classifier.Snapshot()
}

// Rule operations
const (
	RuleOpAdd    = "add"
	RuleOpRemove = "remove"
)

// UpdateRule adds or removes one rule value. It reports whether the rules changed.
func (s *DashboardService) UpdateRule(ctx context.Context, sub domain.Subsidiary, kind classifier.SignalKind, value, op string) (bool, error) {
	var (
		changed bool
		err     error
	)
	switch op {
	case RuleOpAdd:
		changed, err = s.classifier.Add(sub, kind, value)
	case RuleOpRemove:
		changed, err = s.classifier.Remove(sub, kind, value)
	default:
		return false, apperrors.NewValidationError("op must be add or remove")
	}
	if err != nil {
		return false, err
	}

	s.logger.InfoContext(ctx, "classifier rule updated",
		slog.String("subsidiary", string(sub)),
		slog.String("kind", string(kind)),
		slog.String("value", value),
		slog.String("op", op),
		slog.Bool("changed", changed))
	return changed, nil
}

// Classification is the outcome of classifying an ad-hoc row
type Classification struct {
	Dataset  source.Dataset      `json:"dataset"`
	Decision classifier.Decision `json:"decision"`
	Entity   interface{}         `json:"entity"`
}

// Classify normalizes row as a record of ds and explains its subsidiary
func (s *DashboardService) Classify(ds source.Dataset, row domain.Row) (*Classification, error) {
	result := &Classification{Dataset: ds}
	switch ds {
	case source.DatasetOrders:
		result.Decision = s.classifier.Explain(s.mapper.OrderRecord(row))
		result.Entity = s.mapper.Order(row)
	case source.DatasetPayouts:
		result.Decision = s.classifier.Explain(s.mapper.PayoutRecord(row))
		result.Entity = s.mapper.Payout(row)
	case source.DatasetStaff:
		result.Decision = s.classifier.Explain(s.mapper.StaffRecord(row))
		result.Entity = s.mapper.Staff(row)
	default:
		return nil, apperrors.NewValidationError("dataset must be orders, payouts or staff")
	}
	return result, nil
}

func (s *DashboardService) orders(e Entities, sub domain.Subsidiary, r domain.TimeRange) []domain.Order {
	return timerange.FilterByRange(r, aggregate.FilterBySubsidiary(sub, e.Orders), domain.OrderDate)
}

func (s *DashboardService) payouts(e Entities, sub domain.Subsidiary, r domain.TimeRange) []domain.Payout {
	return timerange.FilterByRange(r, aggregate.FilterBySubsidiary(sub, e.Payouts), domain.PayoutWeek)
}

func (s *DashboardService) record(ctx context.Context, e Entities, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordsNormalized.Add(ctx, int64(len(e.Orders)), metric.WithAttributes(attribute.String("dataset", "orders")))
	s.metrics.RecordsNormalized.Add(ctx, int64(len(e.Payouts)), metric.WithAttributes(attribute.String("dataset", "payouts")))
	s.metrics.RecordsNormalized.Add(ctx, int64(len(e.Staff)), metric.WithAttributes(attribute.String("dataset", "staff")))

	counts := make(map[domain.Subsidiary]int64)
	for _, o := range e.Orders {
		counts[o.Subsidiary]++
	}
	for _, p := range e.Payouts {
		counts[p.Subsidiary]++
	}
	for _, st := range e.Staff {
		counts[st.Subsidiary]++
	}
	for sub, n := range counts {
		s.metrics.Classifications.Add(ctx, n, metric.WithAttributes(attribute.String("subsidiary", string(sub))))
	}

	s.metrics.BuildDuration.Record(ctx, elapsed.Seconds())
}

// subsidiaries expands an optional filter into the list to report on
func subsidiaries(sub domain.Subsidiary) []domain.Subsidiary {
	if sub.IsValid() {
		return []domain.Subsidiary{sub}
	}
	return domain.Subsidiaries()
}
