package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
)

// Service exposes catalog and stock-ledger operations, all scoped to the
// operator's store.
type Service interface {
	Create(ctx context.Context, store string, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, store string, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, store string, productID uuid.UUID) error
	Get(ctx context.Context, store string, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, store string, filter ListFilter) ([]ProductDTO, error)
	AdjustStock(ctx context.Context, store string, productID uuid.UUID, input AdjustStockInput) (*ProductDTO, error)
	ListMovements(ctx context.Context, store string, productID uuid.UUID, limit int) ([]MovementDTO, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name      string
	Brand     string
	Model     string
	Category  string
	Price     decimal.Decimal
	CostPrice decimal.Decimal
	Stock     int
	MinStock  int
}

// UpdateProductInput holds optional mutation values for a product. Stock is
// absent on purpose: stock only moves through AdjustStock and sales.
type UpdateProductInput struct {
	Name      *string
	Brand     *string
	Model     *string
	Category  *string
	Price     *decimal.Decimal
	CostPrice *decimal.Decimal
	MinStock  *int
}

// AdjustStockInput is one manual stock edit.
type AdjustStockInput struct {
	Operation enums.StockOperation
	Qty       int
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService constructs a product service instance.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Create validates, coerces, and inserts a catalog entry.
func (s *service) Create(ctx context.Context, store string, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	row := &models.Product{
		Store:     store,
		Name:      name,
		NameLower: strings.ToLower(name),
		Brand:     strings.TrimSpace(input.Brand),
		Model:     strings.TrimSpace(input.Model),
		Category:  strings.TrimSpace(input.Category),
		Price:     coerceMoney(input.Price),
		CostPrice: coerceMoney(input.CostPrice),
		Stock:     coerceQty(input.Stock),
		MinStock:  coerceQty(input.MinStock),
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	return NewProductDTO(created), nil
}

// Update applies partial changes to a product owned by the store.
func (s *service) Update(ctx context.Context, store string, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	row, err := s.loadOwned(ctx, store, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		row.Name = name
		row.NameLower = strings.ToLower(name)
	}
	if input.Brand != nil {
		row.Brand = strings.TrimSpace(*input.Brand)
	}
	if input.Model != nil {
		row.Model = strings.TrimSpace(*input.Model)
	}
	if input.Category != nil {
		row.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		row.Price = coerceMoney(*input.Price)
	}
	if input.CostPrice != nil {
		row.CostPrice = coerceMoney(*input.CostPrice)
	}
	if input.MinStock != nil {
		row.MinStock = coerceQty(*input.MinStock)
	}

	updated, err := s.repo.Update(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(updated), nil
}

// Delete removes a product owned by the store.
func (s *service) Delete(ctx context.Context, store string, productID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, store, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, store, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
	}
	return nil
}

// Get returns one product with its derived stock status.
func (s *service) Get(ctx context.Context, store string, productID uuid.UUID) (*ProductDTO, error) {
	row, err := s.loadOwned(ctx, store, productID)
	if err != nil {
		return nil, err
	}
	return NewProductDTO(row), nil
}

// List returns the store's catalog, optionally filtered by search term,
// category, or replenishment need.
func (s *service) List(ctx context.Context, store string, filter ListFilter) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, store, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	out := make([]ProductDTO, len(rows))
	for i := range rows {
		out[i] = *NewProductDTO(&rows[i])
	}
	return out, nil
}

// AdjustStock applies one manual stock edit and its audit row in a single
// transaction. Removing more than the current stock is rejected.
func (s *service) AdjustStock(ctx context.Context, store string, productID uuid.UUID, input AdjustStockInput) (*ProductDTO, error) {
	if !input.Operation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid stock operation")
	}
	if input.Qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "qty must be non-negative")
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		current, err := txRepo.FindByStoreAndID(ctx, store, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		var delta int
		var reason enums.StockMovementReason
		switch input.Operation {
		case enums.StockOperationAdd:
			if _, err := txRepo.IncrementStock(ctx, store, productID, input.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: increment stock")
			}
			delta, reason = input.Qty, enums.StockMovementReasonManualAdd
		case enums.StockOperationRemove:
			affected, err := txRepo.DecrementStockGuarded(ctx, store, productID, input.Qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: decrement stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "cannot remove more than current stock")
			}
			delta, reason = -input.Qty, enums.StockMovementReasonManualRemove
		case enums.StockOperationSet:
			if _, err := txRepo.SetStock(ctx, store, productID, input.Qty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: set stock")
			}
			delta, reason = input.Qty-current.Stock, enums.StockMovementReasonManualSet
		}

		movement := &models.StockMovement{
			ProductID: productID,
			Store:     store,
			Delta:     delta,
			Reason:    reason,
		}
		if err := txRepo.RecordMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: record stock movement")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust stock")
	}

	return s.Get(ctx, store, productID)
}

// ListMovements returns the product's newest stock audit entries.
func (s *service) ListMovements(ctx context.Context, store string, productID uuid.UUID, limit int) ([]MovementDTO, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if _, err := s.loadOwned(ctx, store, productID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListMovements(ctx, store, productID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock movements")
	}
	out := make([]MovementDTO, len(rows))
	for i := range rows {
		out[i] = *NewMovementDTO(&rows[i])
	}
	return out, nil
}

func (s *service) loadOwned(ctx context.Context, store string, productID uuid.UUID) (*models.Product, error) {
	row, err := s.repo.FindByStoreAndID(ctx, store, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return row, nil
}

func coerceMoney(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

func coerceQty(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
