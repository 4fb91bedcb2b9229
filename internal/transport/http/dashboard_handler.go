package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/Omega248/kintsugi-dashboard-sub000/internal/classifier"
	apperrors "github.com/Omega248/kintsugi-dashboard-sub000/internal/errors"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/middleware"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/normalize"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/services"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/source"
	"github.com/Omega248/kintsugi-dashboard-sub000/internal/timerange"
	"github.com/Omega248/kintsugi-dashboard-sub000/pkg/contracts/domain"
)

// DashboardHandler serves the dashboard views
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *middleware.Validator
	loc          *time.Location
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler. loc is used to read
// start and end query dates.
func NewDashboardHandler(service DashboardServiceInterface, loc *time.Location, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{
		service:      service,
		validator:    middleware.NewValidator(),
		loc:          loc,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes mounts the dashboard endpoints on r
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/orders", h.GetOrders)
	r.Get("/payouts", h.GetPayouts)
	r.Get("/staff", h.GetStaff)
	r.Get("/summary", h.GetSummary)
	r.Get("/alerts", h.GetAlerts)
	r.Get("/weeks", h.GetWeeks)
	r.Post("/refresh", h.Refresh)

	r.Route("/rules", func(r chi.Router) {
		r.Get("/", h.GetRules)
		r.Post("/{subsidiary}", h.UpdateRule)
	})
	r.Post("/classify", h.Classify)
}

// Response is the success envelope
type Response struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
	Count  *int        `json:"count,omitempty"`
}

func success(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

func successList(data interface{}, n int) Response {
	return Response{Status: "success", Data: data, Count: &n}
}

// dashboardQuery holds the raw query parameters shared by the views
type dashboardQuery struct {
	Subsidiary string `query:"subsidiary" validate:"omitempty,subsidiary"`
	Period     string `query:"period" validate:"omitempty,period"`
	Start      string `query:"start" validate:"omitempty,iso8601"`
	End        string `query:"end" validate:"omitempty,iso8601"`
}

// parseQuery validates the query string. Start or end without a period
// selects a custom range.
func (h *DashboardHandler) parseQuery(r *http.Request) (services.Query, error) {
	values := r.URL.Query()
	raw := dashboardQuery{
		Subsidiary: values.Get("subsidiary"),
		Period:     values.Get("period"),
		Start:      values.Get("start"),
		End:        values.Get("end"),
	}
	if err := h.validator.ValidateStruct(raw); err != nil {
		return services.Query{}, err
	}

	var q services.Query
	if raw.Subsidiary != "" {
		q.Subsidiary, _ = domain.ParseSubsidiary(raw.Subsidiary)
	}
	if raw.Period != "" {
		q.Period, _ = timerange.ParsePeriod(raw.Period)
	}

	if raw.Start != "" {
		q.Start = normalize.ParseDateIn(raw.Start, h.loc)
	}
	if raw.End != "" {
		q.End = normalize.ParseDateIn(raw.End, h.loc)
	}
	if (raw.Start != "" && q.Start == nil) || (raw.End != "" && q.End == nil) {
		return services.Query{}, apperrors.NewValidationError("start and end must be valid dates")
	}
	if q.Period == "" && (q.Start != nil || q.End != nil) {
		q.Period = timerange.PeriodCustom
	}

	return q, nil
}

// GetOrders handles GET /api/orders
func (h *DashboardHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Orders(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, successList(view, len(view.Orders)))
}

// GetPayouts handles GET /api/payouts
func (h *DashboardHandler) GetPayouts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Payouts(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, successList(view, len(view.Payouts)))
}

// GetStaff handles GET /api/staff
func (h *DashboardHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Staff(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, successList(view, len(view.Staff)))
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Summary(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, success(report))
}

// GetAlerts handles GET /api/alerts
func (h *DashboardHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	alerts := h.service.Alerts(r.Context(), q)
	render.JSON(w, r, successList(alerts, len(alerts)))
}

// GetWeeks handles GET /api/weeks
func (h *DashboardHandler) GetWeeks(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	weeks, err := h.service.Weeks(r.Context(), q)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, successList(weeks, len(weeks)))
}

// Refresh handles POST /api/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "manual refresh requested")
	render.JSON(w, r, success(h.service.Refresh(r.Context())))
}

// GetRules handles GET /api/rules
func (h *DashboardHandler) GetRules(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, success(h.service.Rules()))
}

// RuleRequest is the body of POST /api/rules/{subsidiary}
type RuleRequest struct {
	Kind  string `json:"kind" validate:"required,oneof=keyword keywords category categories role roles"`
	Value string `json:"value" validate:"required,max=200"`
	Op    string `json:"op" validate:"omitempty,oneof=add remove"`
}

// RuleResponse reports the outcome of a rule update
type RuleResponse struct {
	Subsidiary domain.Subsidiary     `json:"subsidiary"`
	Kind       classifier.SignalKind `json:"kind"`
	Value      string                `json:"value"`
	Op         string                `json:"op"`
	Changed    bool                  `json:"changed"`
}

// UpdateRule handles POST /api/rules/{subsidiary}
func (h *DashboardHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	sub, ok := domain.ParseSubsidiary(chi.URLParam(r, "subsidiary"))
	if !ok {
		h.errorHandler.HandleError(w, r, apperrors.NewValidationError(
			fmt.Sprintf("unknown subsidiary %q", chi.URLParam(r, "subsidiary"))))
		return
	}

	var req RuleRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if req.Op == "" {
		req.Op = services.RuleOpAdd
	}
	kind, _ := classifier.ParseSignalKind(req.Kind)

	changed, err := h.service.UpdateRule(r.Context(), sub, kind, req.Value, req.Op)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, success(RuleResponse{
		Subsidiary: sub,
		Kind:       kind,
		Value:      req.Value,
		Op:         req.Op,
		Changed:    changed,
	}))
}

// ClassifyRequest is the body of POST /api/classify
type ClassifyRequest struct {
	Dataset string            `json:"dataset" validate:"required,oneof=orders payouts staff"`
	Row     map[string]string `json:"row" validate:"required"`
}

// Classify handles POST /api/classify
func (h *DashboardHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	ds, _ := source.ParseDataset(req.Dataset)
	result, err := h.service.Classify(ds, domain.Row(req.Row))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, success(result))
}
