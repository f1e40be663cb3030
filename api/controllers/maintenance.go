package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/api/responses"
	"github.com/andreviana/cellshop-pos-backend/api/validators"
	"github.com/andreviana/cellshop-pos-backend/internal/maintenance"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

type createTicketRequest struct {
	Customer    string          `json:"customer" validate:"required,max=200"`
	Phone       string          `json:"phone" validate:"omitempty,max=40"`
	Device      string          `json:"device" validate:"required,max=200"`
	Brand       string          `json:"brand" validate:"omitempty,max=100"`
	Model       string          `json:"model" validate:"omitempty,max=100"`
	Issue       string          `json:"issue" validate:"omitempty,max=2000"`
	Value       decimal.Decimal `json:"value"`
	Notes       string          `json:"notes" validate:"omitempty,max=2000"`
	PartOrdered bool            `json:"part_ordered"`
	OrderDate   *time.Time      `json:"order_date,omitempty"`
}

type updateTicketRequest struct {
	Customer     *string          `json:"customer,omitempty" validate:"omitempty,max=200"`
	Phone        *string          `json:"phone,omitempty" validate:"omitempty,max=40"`
	Device       *string          `json:"device,omitempty" validate:"omitempty,max=200"`
	Brand        *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model        *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Issue        *string          `json:"issue,omitempty" validate:"omitempty,max=2000"`
	Status       *string          `json:"status,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	Notes        *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
	PartOrdered  *bool            `json:"part_ordered,omitempty"`
	OrderDate    *time.Time       `json:"order_date,omitempty"`
	DeliveryDate *time.Time       `json:"delivery_date,omitempty"`
}

type billTicketRequest struct {
	Payment salePaymentTermsRequest `json:"payment" validate:"required"`
}

// CreateTicket opens a maintenance ticket for a customer device.
func CreateTicket(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createTicketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticket, err := svc.Create(r.Context(), store, maintenance.CreateTicketInput{
			Customer:    payload.Customer,
			Phone:       payload.Phone,
			Device:      payload.Device,
			Brand:       payload.Brand,
			Model:       payload.Model,
			Issue:       payload.Issue,
			Value:       payload.Value,
			Notes:       payload.Notes,
			PartOrdered: payload.PartOrdered,
			OrderDate:   payload.OrderDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, ticket)
	}
}

func UpdateTicket(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := uuidParam(r, "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTicketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := maintenance.UpdateTicketInput{
			Customer:     payload.Customer,
			Phone:        payload.Phone,
			Device:       payload.Device,
			Brand:        payload.Brand,
			Model:        payload.Model,
			Issue:        payload.Issue,
			Value:        payload.Value,
			Notes:        payload.Notes,
			PartOrdered:  payload.PartOrdered,
			OrderDate:    payload.OrderDate,
			DeliveryDate: payload.DeliveryDate,
		}
		if payload.Status != nil {
			status, err := enums.ParseMaintenanceStatus(strings.TrimSpace(*payload.Status))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		ticket, err := svc.Update(r.Context(), store, ticketID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ticket)
	}
}

func DeleteTicket(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := uuidParam(r, "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), store, ticketID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetTicket(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := uuidParam(r, "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticket, err := svc.Get(r.Context(), store, ticketID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, ticket)
	}
}

func ListTickets(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := maintenance.ListFilter{
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 200),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseMaintenanceStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			filter.Status = &status
		}

		tickets, err := svc.List(r.Context(), store, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tickets)
	}
}

// BillTicket charges a completed repair through checkout and marks the ticket
// paid.
func BillTicket(svc maintenance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ticketID, err := uuidParam(r, "ticketID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload billTicketRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		terms, err := payload.Payment.toPaymentTerms()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Bill(r.Context(), store, ticketID, terms)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}
