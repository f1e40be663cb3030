package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
	"github.com/andreviana/cellshop-pos-backend/pkg/outbox"
	"github.com/andreviana/cellshop-pos-backend/pkg/outbox/payloads"
	"github.com/andreviana/cellshop-pos-backend/pkg/pagination"
	"github.com/shopspring/decimal"
)

// Service exposes checkout, refund, and fiado settlement, all scoped to the
// operator's store.
type Service interface {
	Create(ctx context.Context, store string, input CreateSaleInput) (*SaleDTO, error)
	Get(ctx context.Context, store string, saleID uuid.UUID) (*SaleDTO, error)
	List(ctx context.Context, store string, filter ListFilter) (*SalePage, error)
	Refund(ctx context.Context, store string, saleID uuid.UUID) (*SaleDTO, error)
	SettleFiado(ctx context.Context, store string, saleID uuid.UUID, method enums.PaymentMethod) (*SaleDTO, error)
}

// CreateSaleInput holds the validated payload for a checkout. Lines carry the
// POS snapshot (name and unit price) even for catalog-backed products.
type CreateSaleInput struct {
	Lines         []SaleLineInput
	Discount      decimal.Decimal
	Payment       PaymentTerms
	MaintenanceID *uuid.UUID
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	events eventEmitter
	logg   *logger.Logger
}

// NewService constructs a sales service instance.
func NewService(repo *Repository, tx txRunner, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

// Create runs the whole checkout in one transaction: the sale row with its
// items and payments, one clamped stock decrement per catalog line, the audit
// movements, and the outbox event. Nothing persists on failure.
func (s *service) Create(ctx context.Context, store string, input CreateSaleInput) (*SaleDTO, error) {
	if err := validateLines(input.Lines); err != nil {
		return nil, err
	}
	pricing := ComputePricing(input.Lines, input.Discount)
	if err := ValidatePaymentTerms(input.Payment, pricing.Total); err != nil {
		return nil, err
	}

	status := enums.SaleStatusCompleted
	if input.Payment.Kind == enums.PaymentKindFiado {
		status = enums.SaleStatusPending
	}

	sale := &models.Sale{
		Store:         store,
		Subtotal:      pricing.Subtotal,
		Discount:      pricing.Discount,
		Total:         pricing.Total,
		PaymentKind:   input.Payment.Kind,
		PaymentMethod: input.Payment.Method,
		ClientName:    strings.TrimSpace(input.Payment.ClientName),
		ClientPhone:   strings.TrimSpace(input.Payment.ClientPhone),
		DueDate:       input.Payment.DueDate,
		MaintenanceID: input.MaintenanceID,
		Status:        status,
	}
	for _, line := range input.Lines {
		sale.Items = append(sale.Items, models.SaleItem{
			ProductID: line.ProductID,
			Name:      strings.TrimSpace(line.Name),
			UnitPrice: line.UnitPrice,
			Qty:       line.Qty,
		})
	}
	for _, payment := range input.Payment.Payments {
		sale.Payments = append(sale.Payments, models.SalePayment{
			Method: payment.Method,
			Amount: payment.Amount,
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		created, err := txRepo.Create(ctx, sale)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert sale")
		}

		for _, line := range input.Lines {
			if line.ProductID == nil {
				continue
			}
			if err := s.takeStock(ctx, txRepo, store, created.ID, *line.ProductID, line.Qty); err != nil {
				return err
			}
		}

		event := payloads.SaleCreated{
			SaleID:      created.ID,
			Store:       store,
			Total:       created.Total,
			PaymentKind: created.PaymentKind.String(),
			CreatedAt:   time.Now(),
		}
		for _, line := range input.Lines {
			event.Lines = append(event.Lines, payloads.SaleLine{
				ProductID: line.ProductID,
				Name:      line.Name,
				UnitPrice: line.UnitPrice,
				Qty:       line.Qty,
			})
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSaleCreated,
			AggregateType: enums.OutboxAggregateSale,
			AggregateID:   created.ID,
			Data:          event,
			Version:       1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sale")
	}

	return s.Get(ctx, store, sale.ID)
}

// takeStock applies the clamped decrement for one catalog line plus its audit
// row. A vanished product is logged and skipped, never an error.
func (s *service) takeStock(ctx context.Context, txRepo *Repository, store string, saleID, productID uuid.UUID, qty int) error {
	product, err := txRepo.FindProduct(ctx, store, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logCtx := s.logg.WithField(ctx, "product_id", productID.String())
			s.logg.Warn(logCtx, "product missing at sale time, stock untouched")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}

	if _, err := txRepo.DecrementStockClamped(ctx, store, productID, qty); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
	}

	delta := qty
	if product.Stock < qty {
		delta = product.Stock
	}
	if delta == 0 {
		return nil
	}
	movement := &models.StockMovement{
		ProductID: productID,
		Store:     store,
		Delta:     -delta,
		Reason:    enums.StockMovementReasonSale,
		SaleID:    &saleID,
	}
	if err := txRepo.RecordMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record stock movement")
	}
	return nil
}

// Get returns one sale with its items and payments.
func (s *service) Get(ctx context.Context, store string, saleID uuid.UUID) (*SaleDTO, error) {
	sale, err := s.repo.FindByStoreAndID(ctx, store, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sale")
	}
	return NewSaleDTO(sale), nil
}

// List returns one page of the store's sales, newest first. The repository is
// asked for one extra row so the page can tell whether a next cursor exists.
func (s *service) List(ctx context.Context, store string, filter ListFilter) (*SalePage, error) {
	limit := pagination.NormalizeLimit(filter.Limit)
	filter.Limit = pagination.LimitWithBuffer(limit)

	rows, err := s.repo.List(ctx, store, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list sales")
	}

	page := &SalePage{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	page.Sales = make([]SaleDTO, len(rows))
	for i := range rows {
		page.Sales[i] = *NewSaleDTO(&rows[i])
	}
	return page, nil
}

// Refund flips the sale to refunded and restores stock for every line still
// backed by a catalog product, all in one transaction. Refunding an already
// refunded sale is a clean no-op, including under concurrent duplicates.
func (s *service) Refund(ctx context.Context, store string, saleID uuid.UUID) (*SaleDTO, error) {
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		sale, err := txRepo.FindByStoreAndID(ctx, store, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sale")
		}
		if sale.Status == enums.SaleStatusRefunded {
			return nil
		}

		affected, err := txRepo.MarkRefunded(ctx, store, saleID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mark refunded")
		}
		if affected == 0 {
			// A concurrent refund won the flip; its transaction owns the restock.
			return nil
		}

		for _, item := range sale.Items {
			if item.ProductID == nil {
				continue
			}
			rows, err := txRepo.IncrementStock(ctx, store, *item.ProductID, item.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restore stock")
			}
			if rows == 0 {
				logCtx := s.logg.WithField(ctx, "product_id", item.ProductID.String())
				s.logg.Warn(logCtx, "product missing at refund time, stock not restored")
				continue
			}
			movement := &models.StockMovement{
				ProductID: *item.ProductID,
				Store:     store,
				Delta:     item.Qty,
				Reason:    enums.StockMovementReasonRefund,
				SaleID:    &saleID,
			}
			if err := txRepo.RecordMovement(ctx, movement); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record stock movement")
			}
		}

		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventSaleRefunded,
			AggregateType: enums.OutboxAggregateSale,
			AggregateID:   saleID,
			Data: payloads.SaleRefunded{
				SaleID:     saleID,
				Store:      store,
				Total:      sale.Total,
				RefundedAt: time.Now(),
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refund sale")
	}

	return s.Get(ctx, store, saleID)
}

// SettleFiado completes a pending fiado sale recording the collected payment
// method. The pending guard makes a second settlement a state conflict instead
// of a silent double-collect. Stock is untouched.
func (s *service) SettleFiado(ctx context.Context, store string, saleID uuid.UUID, method enums.PaymentMethod) (*SaleDTO, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		sale, err := txRepo.FindByStoreAndID(ctx, store, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sale")
		}
		if !sale.IsFiado() {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale is not fiado")
		}

		affected, err := txRepo.SettlePending(ctx, store, saleID, method)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: settle fiado")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "fiado sale already settled")
		}

		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventFiadoSettled,
			AggregateType: enums.OutboxAggregateSale,
			AggregateID:   saleID,
			Data: payloads.FiadoSettled{
				SaleID:    saleID,
				Store:     store,
				Total:     sale.Total,
				Method:    method.String(),
				SettledAt: time.Now(),
			},
			Version: 1,
		})
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle fiado")
	}

	return s.Get(ctx, store, saleID)
}

func validateLines(lines []SaleLineInput) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale requires at least one line")
	}
	for _, line := range lines {
		if strings.TrimSpace(line.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "line name is required")
		}
		if line.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line unit price must be non-negative")
		}
	}
	return nil
}
