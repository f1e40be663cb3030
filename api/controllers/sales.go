package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/api/responses"
	"github.com/andreviana/cellshop-pos-backend/api/validators"
	"github.com/andreviana/cellshop-pos-backend/internal/sales"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
	"github.com/andreviana/cellshop-pos-backend/pkg/pagination"
)

type saleLineRequest struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	Name      string          `json:"name" validate:"required,max=200"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       int             `json:"qty" validate:"required,min=1"`
}

type salePaymentRequest struct {
	Method string          `json:"method" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type salePaymentTermsRequest struct {
	Kind        string               `json:"kind" validate:"required"`
	Method      string               `json:"method,omitempty"`
	Payments    []salePaymentRequest `json:"payments,omitempty" validate:"omitempty,dive"`
	ClientName  string               `json:"client_name,omitempty" validate:"omitempty,max=200"`
	ClientPhone string               `json:"client_phone,omitempty" validate:"omitempty,max=40"`
	DueDate     *time.Time           `json:"due_date,omitempty"`
}

type createSaleRequest struct {
	Items         []saleLineRequest       `json:"items" validate:"required,min=1,dive"`
	Discount      decimal.Decimal         `json:"discount"`
	Payment       salePaymentTermsRequest `json:"payment" validate:"required"`
	MaintenanceID *uuid.UUID              `json:"maintenance_id,omitempty"`
}

type settleFiadoRequest struct {
	Method string `json:"method" validate:"required"`
}

func (p salePaymentTermsRequest) toPaymentTerms() (sales.PaymentTerms, error) {
	kind, err := enums.ParsePaymentKind(strings.TrimSpace(p.Kind))
	if err != nil {
		return sales.PaymentTerms{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment kind")
	}

	terms := sales.PaymentTerms{
		Kind:        kind,
		ClientName:  strings.TrimSpace(p.ClientName),
		ClientPhone: strings.TrimSpace(p.ClientPhone),
		DueDate:     p.DueDate,
	}

	if raw := strings.TrimSpace(p.Method); raw != "" {
		method, err := enums.ParsePaymentMethod(raw)
		if err != nil {
			return sales.PaymentTerms{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		terms.Method = &method
	}

	for _, entry := range p.Payments {
		method, err := enums.ParsePaymentMethod(strings.TrimSpace(entry.Method))
		if err != nil {
			return sales.PaymentTerms{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
		}
		terms.Payments = append(terms.Payments, sales.PaymentInput{
			Method: method,
			Amount: entry.Amount,
		})
	}

	return terms, nil
}

// CreateSale runs a POS checkout: prices the cart, validates the payment
// terms and decrements catalog stock in one transaction.
func CreateSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terms, err := payload.Payment.toPaymentTerms()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := sales.CreateSaleInput{
			Discount:      payload.Discount,
			Payment:       terms,
			MaintenanceID: payload.MaintenanceID,
		}
		for _, item := range payload.Items {
			input.Lines = append(input.Lines, sales.SaleLineInput{
				ProductID: item.ProductID,
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Qty:       item.Qty,
			})
		}

		sale, err := svc.Create(r.Context(), store, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

func GetSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := uuidParam(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), store, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// ListSales filters by a [from, to) window plus optional status and kind.
func ListSales(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := sales.ListFilter{}

		if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
			from, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid from timestamp"))
				return
			}
			filter.From = &from
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
			to, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid to timestamp"))
				return
			}
			filter.To = &to
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseSaleStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("kind")); raw != "" {
			kind, err := enums.ParsePaymentKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
				return
			}
			filter.Kind = &kind
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("cursor")); raw != "" {
			cursor, err := pagination.ParseCursor(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
				return
			}
			filter.Cursor = cursor
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Limit = limit

		result, err := svc.List(r.Context(), store, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// RefundSale flips a sale to refunded and restocks its catalog items.
func RefundSale(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := uuidParam(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Refund(r.Context(), store, saleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SettleFiado marks a pending fiado sale as paid with the presented method.
func SettleFiado(svc sales.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := uuidParam(r, "saleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload settleFiadoRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(strings.TrimSpace(payload.Method))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		sale, err := svc.SettleFiado(r.Context(), store, saleID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}
