package payrollhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/payroll"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
}

func NewHandler(service *payroll.Service) *Handler {
	return &Handler{Service: service}
}

type runPayload struct {
	PeriodStart      string `json:"periodStart"`
	PeriodEnd        string `json:"periodEnd"`
	DisbursementDate string `json:"disbursementDate"`
	RunType          string `json:"runType"`
}

type adjustmentPayload struct {
	EmployeeID string `json:"employeeId"`
	Label      string `json:"label"`
	Amount     int64  `json:"amount"`
	Taxable    bool   `json:"taxable"`
}

type exclusionPayload struct {
	Excluded bool `json:"excluded"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll/runs", func(r chi.Router) {
		r.Get("/", h.handleListRuns)
		r.Post("/", h.handleCreateRun)
		r.Get("/{runID}", h.handleGetRun)
		r.Post("/{runID}/process", h.handleProcessRun)
		r.Get("/{runID}/totals", h.handleRunTotals)
		r.Get("/{runID}/adjustments", h.handleListAdjustments)
		r.Post("/{runID}/adjustments", h.handleAddAdjustment)
		r.Put("/{runID}/adjustments/{adjustmentID}", h.handleUpdateAdjustment)
		r.Delete("/{runID}/adjustments/{adjustmentID}", h.handleDeleteAdjustment)
		r.Put("/{runID}/employees/{employeeID}/exclusion", h.handleSetExclusion)
	})
}

func (h *Handler) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload runPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	v.Required("runType", payload.RunType, "run type is required")
	v.Enum("runType", payload.RunType,
		[]string{payroll.RunTypeRegular, payroll.RunTypeOffCycle, payroll.RunTypePartialPayment},
		"must be one of regular, off_cycle, partial_payment")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	in := payroll.CreateRunInput{
		PeriodStart: start,
		PeriodEnd:   end,
		RunType:     strings.ToLower(strings.TrimSpace(payload.RunType)),
	}
	if payload.DisbursementDate != "" {
		disburse, ok := v.Date("disbursementDate", payload.DisbursementDate)
		if !ok {
			v.Reject(w, middleware.GetRequestID(r.Context()))
			return
		}
		in.DisbursementDate = disburse
	}

	run, err := h.Service.CreateRun(r.Context(), user.TenantID, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Created(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRuns(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	runs, total, err := h.Service.ListRuns(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"items": runs, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	run, err := h.Service.GetRun(r.Context(), user.TenantID, chi.URLParam(r, "runID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, run, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleProcessRun(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	outcome, err := h.Service.ProcessRun(r.Context(), user.TenantID, chi.URLParam(r, "runID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, outcome, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRunTotals(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	totals, err := h.Service.GetRunTotals(r.Context(), user.TenantID, chi.URLParam(r, "runID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, totals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	adjustments, total, err := h.Service.ListAdjustments(r.Context(), user.TenantID,
		chi.URLParam(r, "runID"), r.URL.Query().Get("employeeId"), page.Limit, page.Offset)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"items": adjustments, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddAdjustment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("label", payload.Label, "label is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	item, err := h.Service.AddAdjustment(r.Context(), user.TenantID, chi.URLParam(r, "runID"), payload.EmployeeID,
		payroll.AdjustmentInput{Label: payload.Label, Amount: payload.Amount, Taxable: payload.Taxable})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Created(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAdjustment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	v := shared.NewValidator()
	v.Required("label", payload.Label, "label is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	item, err := h.Service.UpdateAdjustment(r.Context(), user.TenantID,
		chi.URLParam(r, "runID"), chi.URLParam(r, "adjustmentID"),
		payroll.AdjustmentInput{Label: payload.Label, Amount: payload.Amount, Taxable: payload.Taxable})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	item, err := h.Service.DeleteAdjustment(r.Context(), user.TenantID,
		chi.URLParam(r, "runID"), chi.URLParam(r, "adjustmentID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSetExclusion(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	var payload exclusionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	item, err := h.Service.SetLineExclusion(r.Context(), user.TenantID,
		chi.URLParam(r, "runID"), chi.URLParam(r, "employeeID"), payload.Excluded)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, item, middleware.GetRequestID(r.Context()))
}

func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, payroll.ErrInvalidPeriod),
		errors.Is(err, payroll.ErrInvalidRunType),
		errors.Is(err, payroll.ErrInvalidLabel):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, payroll.ErrRunNotFound),
		errors.Is(err, payroll.ErrLineItemNotFound),
		errors.Is(err, payroll.ErrAdjustmentNotFound),
		errors.Is(err, payroll.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payroll.ErrRunNotDraft),
		errors.Is(err, payroll.ErrDuplicateRegular):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	case errors.Is(err, payroll.ErrConcurrencyConflict):
		api.Fail(w, http.StatusConflict, "concurrency_conflict", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}
