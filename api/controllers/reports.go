package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/andreviana/cellshop-pos-backend/api/responses"
	"github.com/andreviana/cellshop-pos-backend/internal/reports"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

// SalesSummaryReport aggregates revenue for a [from, to) window. Defaults to
// the current day when the window is omitted.
func SalesSummaryReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		now := time.Now().UTC()
		from := now.Truncate(24 * time.Hour)
		to := from.Add(24 * time.Hour)

		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from timestamp"))
				return
			}
			from = parsed
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to timestamp"))
				return
			}
			to = parsed
		}

		summary, err := svc.SalesSummary(r.Context(), store, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

// LowStockReport lists products at or below their replenishment thresholds.
func LowStockReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.LowStock(r.Context(), store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}
