package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/pagination"
)

const testStore = "loja1@cellshop.test"

func seedProduct(t *testing.T, conn *gorm.DB, name string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Store:     testStore,
		Name:      name,
		NameLower: name,
		Price:     money(50),
		Stock:     stock,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func singleCashSale(product *models.Product, qty int) CreateSaleInput {
	return CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: product.Price, Qty: qty},
		},
		Payment: PaymentTerms{
			Kind:   enums.PaymentKindSingle,
			Method: methodPtr(enums.PaymentMethodCash),
		},
	}
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Capa iPhone", 10)

	dto, err := svc.Create(ctx, testStore, singleCashSale(product, 3))
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusCompleted, dto.Status)
	assert.True(t, dto.Total.Equal(money(150)), "total %s", dto.Total)

	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 7, after.Stock)

	var movement models.StockMovement
	require.NoError(t, conn.First(&movement, "product_id = ?", product.ID).Error)
	assert.Equal(t, -3, movement.Delta)
	assert.Equal(t, enums.StockMovementReasonSale, movement.Reason)
	require.NotNil(t, movement.SaleID)
	assert.Equal(t, dto.ID, *movement.SaleID)

	var event models.OutboxEvent
	require.NoError(t, conn.First(&event, "aggregate_id = ?", dto.ID).Error)
	assert.Equal(t, enums.OutboxEventSaleCreated, event.EventType)
}

func TestCreateSaleClampsOversellAtZero(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Fone TWS", 2)

	_, err := svc.Create(ctx, testStore, singleCashSale(product, 5))
	require.NoError(t, err)

	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 0, after.Stock)

	var movement models.StockMovement
	require.NoError(t, conn.First(&movement, "product_id = ?", product.ID).Error)
	assert.Equal(t, -2, movement.Delta)
}

func TestCreateSaleAdHocLineLeavesStockAlone(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Create(ctx, testStore, CreateSaleInput{
		Lines: []SaleLineInput{
			{Name: "Troca de conector", UnitPrice: money(80), Qty: 1},
		},
		Payment: PaymentTerms{
			Kind:   enums.PaymentKindSingle,
			Method: methodPtr(enums.PaymentMethodPix),
		},
	})
	require.NoError(t, err)
	assert.True(t, dto.Total.Equal(money(80)), "total %s", dto.Total)

	var count int64
	require.NoError(t, conn.Model(&models.StockMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateSaleSplitPersistsPayments(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Carregador", 10)

	input := CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: money(125), Qty: 2},
		},
		Discount: money(20),
		Payment: PaymentTerms{
			Kind: enums.PaymentKindSplit,
			Payments: []PaymentInput{
				{Method: enums.PaymentMethodPix, Amount: money(150)},
				{Method: enums.PaymentMethodCash, Amount: money(80)},
			},
		},
	}
	dto, err := svc.Create(ctx, testStore, input)
	require.NoError(t, err)
	assert.True(t, dto.Total.Equal(money(230)), "total %s", dto.Total)
	assert.Nil(t, dto.PaymentMethod)
	require.Len(t, dto.Payments, 2)

	var payments []models.SalePayment
	require.NoError(t, conn.Where("sale_id = ?", dto.ID).Find(&payments).Error)
	assert.Len(t, payments, 2)
}

func TestCreateSaleUnbalancedSplitPersistsNothing(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Película", 10)

	input := CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: money(125), Qty: 2},
		},
		Discount: money(20),
		Payment: PaymentTerms{
			Kind: enums.PaymentKindSplit,
			Payments: []PaymentInput{
				{Method: enums.PaymentMethodPix, Amount: money(150)},
				{Method: enums.PaymentMethodCash, Amount: money(70)},
			},
		},
	}
	_, err := svc.Create(ctx, testStore, input)
	require.Error(t, err)

	var sales int64
	require.NoError(t, conn.Model(&models.Sale{}).Count(&sales).Error)
	assert.Zero(t, sales)

	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 10, after.Stock)
}

func TestCreateFiadoSaleStartsPending(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Bateria", 5)

	due := time.Now().AddDate(0, 1, 0)
	dto, err := svc.Create(ctx, testStore, CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: money(120), Qty: 1},
		},
		Payment: PaymentTerms{
			Kind:        enums.PaymentKindFiado,
			ClientName:  "Maria",
			ClientPhone: "11 98888-7777",
			DueDate:     &due,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusPending, dto.Status)
	assert.Nil(t, dto.PaymentMethod)

	// Fiado still takes the goods off the shelf at sale time.
	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 4, after.Stock)
}

func TestRefundRestoresStockAndIsIdempotent(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Capa Galaxy", 10)

	dto, err := svc.Create(ctx, testStore, singleCashSale(product, 3))
	require.NoError(t, err)

	var mid models.Product
	require.NoError(t, conn.First(&mid, "id = ?", product.ID).Error)
	require.Equal(t, 7, mid.Stock)

	refunded, err := svc.Refund(ctx, testStore, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusRefunded, refunded.Status)

	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 10, after.Stock)

	// The second refund is a clean no-op: no extra restock, no error.
	again, err := svc.Refund(ctx, testStore, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusRefunded, again.Status)

	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 10, after.Stock)

	var refundMovements int64
	require.NoError(t, conn.Model(&models.StockMovement{}).
		Where("reason = ?", enums.StockMovementReasonRefund).
		Count(&refundMovements).Error)
	assert.EqualValues(t, 1, refundMovements)
}

func TestRefundUnknownSale(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	_, err := svc.Refund(context.Background(), testStore, uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRefundSkipsDeletedProduct(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Cabo Lightning", 10)

	dto, err := svc.Create(ctx, testStore, singleCashSale(product, 2))
	require.NoError(t, err)

	require.NoError(t, conn.Delete(&models.Product{}, "id = ?", product.ID).Error)

	refunded, err := svc.Refund(ctx, testStore, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusRefunded, refunded.Status)

	var refundMovements int64
	require.NoError(t, conn.Model(&models.StockMovement{}).
		Where("reason = ?", enums.StockMovementReasonRefund).
		Count(&refundMovements).Error)
	assert.Zero(t, refundMovements)
}

func TestSettleFiado(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Fone com fio", 5)

	due := time.Now().AddDate(0, 1, 0)
	dto, err := svc.Create(ctx, testStore, CreateSaleInput{
		Lines: []SaleLineInput{
			{ProductID: &product.ID, Name: product.Name, UnitPrice: money(40), Qty: 1},
		},
		Payment: PaymentTerms{
			Kind:        enums.PaymentKindFiado,
			ClientName:  "Carlos",
			ClientPhone: "11 97777-1234",
			DueDate:     &due,
		},
	})
	require.NoError(t, err)

	settled, err := svc.SettleFiado(ctx, testStore, dto.ID, enums.PaymentMethodPix)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusCompleted, settled.Status)
	require.NotNil(t, settled.PaymentMethod)
	assert.Equal(t, enums.PaymentMethodPix, *settled.PaymentMethod)

	// Settlement never touches stock.
	var after models.Product
	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 4, after.Stock)

	_, err = svc.SettleFiado(ctx, testStore, dto.ID, enums.PaymentMethodCash)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())

	require.NoError(t, conn.First(&after, "id = ?", product.ID).Error)
	assert.Equal(t, 4, after.Stock)
}

func TestSettleNonFiadoRejected(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Suporte veicular", 5)

	dto, err := svc.Create(ctx, testStore, singleCashSale(product, 1))
	require.NoError(t, err)

	_, err = svc.SettleFiado(ctx, testStore, dto.ID, enums.PaymentMethodPix)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestListPaginatesWithCursor(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Pelicula 3D", 50)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, testStore, singleCashSale(product, 1))
		require.NoError(t, err)
	}

	seen := map[uuid.UUID]bool{}
	filter := ListFilter{Limit: 2}
	for pages := 0; ; pages++ {
		require.Less(t, pages, 5, "cursor loop did not terminate")

		page, err := svc.List(ctx, testStore, filter)
		require.NoError(t, err)
		for _, sale := range page.Sales {
			assert.False(t, seen[sale.ID], "sale %s repeated across pages", sale.ID)
			seen[sale.ID] = true
		}

		if page.NextCursor == "" {
			break
		}
		require.Len(t, page.Sales, 2)
		cursor, err := pagination.ParseCursor(page.NextCursor)
		require.NoError(t, err)
		filter.Cursor = cursor
	}
	assert.Len(t, seen, 5)
}

func TestSaleScopedToStore(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, conn, "Capinha", 5)

	dto, err := svc.Create(ctx, testStore, singleCashSale(product, 1))
	require.NoError(t, err)

	_, err = svc.Get(ctx, "loja2@cellshop.test", dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
