package advancehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrun/internal/domain/advance"
	"payrun/internal/transport/http/api"
	"payrun/internal/transport/http/middleware"
	"payrun/internal/transport/http/shared"
)

type Handler struct {
	Service *advance.Service
}

func NewHandler(service *advance.Service) *Handler {
	return &Handler{Service: service}
}

type advancePayload struct {
	EmployeeID       string `json:"employeeId"`
	TotalAmount      int64  `json:"totalAmount"`
	TenureMonths     int    `json:"tenureMonths"`
	StartMonth       string `json:"startMonth"`
	DisbursementDate string `json:"disbursementDate"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/advances", func(r chi.Router) {
		r.Get("/", h.handleListAdvances)
		r.Post("/", h.handleCreateAdvance)
		r.Get("/{advanceID}", h.handleGetAdvance)
		r.Post("/{advanceID}/cancel", h.handleCancelAdvance)
	})
}

func (h *Handler) handleCreateAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload advancePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Positive("totalAmount", payload.TotalAmount, "must be a positive amount in minor units")
	v.Positive("tenureMonths", int64(payload.TenureMonths), "must be a positive number of months")
	v.Required("startMonth", payload.StartMonth, "start month is required")
	var start time.Time
	if payload.StartMonth != "" {
		start, _ = v.Date("startMonth", payload.StartMonth)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	in := advance.CreateAdvanceInput{
		EmployeeID:   payload.EmployeeID,
		TotalAmount:  payload.TotalAmount,
		TenureMonths: payload.TenureMonths,
		StartMonth:   start,
	}
	if payload.DisbursementDate != "" {
		disburse, ok := v.Date("disbursementDate", payload.DisbursementDate)
		if !ok {
			v.Reject(w, middleware.GetRequestID(r.Context()))
			return
		}
		in.DisbursementDate = disburse
	}

	adv, err := h.Service.CreateAdvance(r.Context(), user.TenantID, in)
	if err != nil {
		writeAdvanceError(w, r, err)
		return
	}
	api.Created(w, adv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdvances(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	page := shared.ParsePagination(r, 20, 100)
	advances, total, err := h.Service.ListAdvances(r.Context(), user.TenantID, r.URL.Query().Get("employeeId"), page.Limit, page.Offset)
	if err != nil {
		writeAdvanceError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"items": advances, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	adv, err := h.Service.GetAdvance(r.Context(), user.TenantID, chi.URLParam(r, "advanceID"))
	if err != nil {
		writeAdvanceError(w, r, err)
		return
	}
	api.Success(w, adv, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCancelAdvance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	adv, err := h.Service.CancelAdvance(r.Context(), user.TenantID, chi.URLParam(r, "advanceID"))
	if err != nil {
		writeAdvanceError(w, r, err)
		return
	}
	api.Success(w, adv, middleware.GetRequestID(r.Context()))
}

func writeAdvanceError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, advance.ErrInvalidAmount),
		errors.Is(err, advance.ErrInvalidTenure),
		errors.Is(err, advance.ErrInvalidStartMonth):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, advance.ErrAdvanceNotFound),
		errors.Is(err, advance.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, advance.ErrActiveAdvanceExists),
		errors.Is(err, advance.ErrAdvanceNotActive),
		errors.Is(err, advance.ErrCancelAfterRepayment):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}
