package reportshandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cleanops/internal/domain/reports"
	"cleanops/internal/transport/http/api"
	"cleanops/internal/transport/http/middleware"
)

type Service interface {
	Finance(ctx context.Context, companyID string) (reports.FinanceReport, error)
	FinancePDF(ctx context.Context, companyID string) ([]byte, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/finance", h.handleFinance)
		r.Get("/finance.pdf", h.handleFinancePDF)
	})
}

func (h *Handler) handleFinance(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	report, err := h.Service.Finance(r.Context(), principal.CompanyID)
	if err != nil {
		slog.Error("finance report failed", "companyId", principal.CompanyID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to build finance report", requestID)
		return
	}
	api.Success(w, report, requestID)
}

func (h *Handler) handleFinancePDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	data, err := h.Service.FinancePDF(r.Context(), principal.CompanyID)
	if err != nil {
		slog.Error("finance pdf failed", "companyId", principal.CompanyID, "err", err)
		api.Fail(w, http.StatusInternalServerError, "report_failed", "failed to render finance report", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=finance-report.pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("finance pdf write failed", "err", err)
	}
}
