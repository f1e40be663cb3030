package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/internal/sales"
	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
)

// Service exposes repair ticket tracking, scoped to the operator's store.
type Service interface {
	Create(ctx context.Context, store string, input CreateTicketInput) (*TicketDTO, error)
	Update(ctx context.Context, store string, ticketID uuid.UUID, input UpdateTicketInput) (*TicketDTO, error)
	Delete(ctx context.Context, store string, ticketID uuid.UUID) error
	Get(ctx context.Context, store string, ticketID uuid.UUID) (*TicketDTO, error)
	List(ctx context.Context, store string, filter ListFilter) ([]TicketDTO, error)
	Bill(ctx context.Context, store string, ticketID uuid.UUID, payment sales.PaymentTerms) (*sales.SaleDTO, error)
}

// CreateTicketInput holds the validated payload to open a ticket.
type CreateTicketInput struct {
	Customer    string
	Phone       string
	Device      string
	Brand       string
	Model       string
	Issue       string
	Value       decimal.Decimal
	Notes       string
	PartOrdered bool
	OrderDate   *time.Time
}

// UpdateTicketInput holds optional mutation values for a ticket. Status moves
// freely between any two states.
type UpdateTicketInput struct {
	Customer     *string
	Phone        *string
	Device       *string
	Brand        *string
	Model        *string
	Issue        *string
	Status       *enums.MaintenanceStatus
	Value        *decimal.Decimal
	Notes        *string
	PartOrdered  *bool
	OrderDate    *time.Time
	DeliveryDate *time.Time
}

type service struct {
	repo     *Repository
	salesSvc sales.Service
}

// NewService constructs a maintenance service instance.
func NewService(repo *Repository, salesSvc sales.Service) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("maintenance repository required")
	}
	if salesSvc == nil {
		return nil, fmt.Errorf("sales service required")
	}
	return &service{repo: repo, salesSvc: salesSvc}, nil
}

// Create opens a ticket in the pending state.
func (s *service) Create(ctx context.Context, store string, input CreateTicketInput) (*TicketDTO, error) {
	customer := strings.TrimSpace(input.Customer)
	if customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
	}
	device := strings.TrimSpace(input.Device)
	if device == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device is required")
	}

	value := input.Value
	if value.IsNegative() {
		value = decimal.Zero
	}

	ticket := &models.MaintenanceTicket{
		Store:       store,
		Customer:    customer,
		Phone:       strings.TrimSpace(input.Phone),
		Device:      device,
		Brand:       strings.TrimSpace(input.Brand),
		Model:       strings.TrimSpace(input.Model),
		Issue:       strings.TrimSpace(input.Issue),
		Status:      enums.MaintenanceStatusPending,
		Value:       value,
		Notes:       input.Notes,
		PartOrdered: input.PartOrdered,
		OrderDate:   input.OrderDate,
	}
	created, err := s.repo.Create(ctx, ticket)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert ticket")
	}
	return NewTicketDTO(created), nil
}

// Update applies partial changes to a ticket owned by the store.
func (s *service) Update(ctx context.Context, store string, ticketID uuid.UUID, input UpdateTicketInput) (*TicketDTO, error) {
	ticket, err := s.loadOwned(ctx, store, ticketID)
	if err != nil {
		return nil, err
	}

	if input.Customer != nil {
		customer := strings.TrimSpace(*input.Customer)
		if customer == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer is required")
		}
		ticket.Customer = customer
	}
	if input.Phone != nil {
		ticket.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Device != nil {
		device := strings.TrimSpace(*input.Device)
		if device == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "device is required")
		}
		ticket.Device = device
	}
	if input.Brand != nil {
		ticket.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		ticket.Model = strings.TrimSpace(*input.Model)
	}
	if input.Issue != nil {
		ticket.Issue = strings.TrimSpace(*input.Issue)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket status")
		}
		ticket.Status = *input.Status
	}
	if input.Value != nil {
		value := *input.Value
		if value.IsNegative() {
			value = decimal.Zero
		}
		ticket.Value = value
	}
	if input.Notes != nil {
		ticket.Notes = *input.Notes
	}
	if input.PartOrdered != nil {
		ticket.PartOrdered = *input.PartOrdered
	}
	if input.OrderDate != nil {
		ticket.OrderDate = input.OrderDate
	}
	if input.DeliveryDate != nil {
		ticket.DeliveryDate = input.DeliveryDate
	}

	updated, err := s.repo.Update(ctx, ticket)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update ticket")
	}
	return NewTicketDTO(updated), nil
}

// Delete removes a ticket owned by the store.
func (s *service) Delete(ctx context.Context, store string, ticketID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, store, ticketID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, store, ticketID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete ticket")
	}
	return nil
}

// Get returns one ticket.
func (s *service) Get(ctx context.Context, store string, ticketID uuid.UUID) (*TicketDTO, error) {
	ticket, err := s.loadOwned(ctx, store, ticketID)
	if err != nil {
		return nil, err
	}
	return NewTicketDTO(ticket), nil
}

// List returns the store's tickets, newest first.
func (s *service) List(ctx context.Context, store string, filter ListFilter) ([]TicketDTO, error) {
	rows, err := s.repo.List(ctx, store, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list tickets")
	}
	out := make([]TicketDTO, len(rows))
	for i := range rows {
		out[i] = *NewTicketDTO(&rows[i])
	}
	return out, nil
}

// Bill charges a completed repair through the normal checkout path: the paid
// guard flips first, then a one-line sale carrying the ticket back-reference is
// created. Billing the same ticket twice is a state conflict.
func (s *service) Bill(ctx context.Context, store string, ticketID uuid.UUID, payment sales.PaymentTerms) (*sales.SaleDTO, error) {
	ticket, err := s.loadOwned(ctx, store, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status != enums.MaintenanceStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "only completed repairs can be billed")
	}
	if !ticket.Value.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket has no value to bill")
	}

	affected, err := s.repo.MarkPaid(ctx, store, ticketID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark ticket paid")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket already billed")
	}

	label := fmt.Sprintf("Manutenção: %s", ticket.Device)
	if ticket.Issue != "" {
		label = fmt.Sprintf("%s (%s)", label, ticket.Issue)
	}
	sale, err := s.salesSvc.Create(ctx, store, sales.CreateSaleInput{
		Lines: []sales.SaleLineInput{
			{Name: label, UnitPrice: ticket.Value, Qty: 1},
		},
		Payment:       payment,
		MaintenanceID: &ticketID,
	})
	if err != nil {
		// Undo the paid flip so the ticket can be billed again.
		if _, undoErr := s.repo.UnmarkPaid(ctx, store, ticketID); undoErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, errors.Join(err, undoErr), "bill ticket")
		}
		return nil, err
	}
	return sale, nil
}

func (s *service) loadOwned(ctx context.Context, store string, ticketID uuid.UUID) (*models.MaintenanceTicket, error) {
	ticket, err := s.repo.FindByStoreAndID(ctx, store, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load ticket")
	}
	return ticket, nil
}
