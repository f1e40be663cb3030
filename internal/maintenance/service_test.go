package maintenance

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/internal/sales"
	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
	"github.com/andreviana/cellshop-pos-backend/pkg/outbox"
)

const testStore = "loja1@cellshop.test"

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:maintenance_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.MaintenanceTicket{},
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
		&models.SalePayment{},
		&models.StockMovement{},
		&models.OutboxEvent{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	logg := logger.New(logger.Options{ServiceName: "maintenance-test", Output: io.Discard})
	events := outbox.NewService(outbox.NewRepository(conn), logg)
	salesSvc, err := sales.NewService(sales.NewRepository(conn), gormTxRunner{db: conn}, events, logg)
	if err != nil {
		t.Fatalf("new sales service: %v", err)
	}
	svc, err := NewService(NewRepository(conn), salesSvc)
	if err != nil {
		t.Fatalf("new maintenance service: %v", err)
	}
	return svc, conn
}

func openTicket(t *testing.T, svc Service, value float64) *TicketDTO {
	t.Helper()
	dto, err := svc.Create(context.Background(), testStore, CreateTicketInput{
		Customer: "Ana",
		Phone:    "11 96666-5555",
		Device:   "iPhone 12",
		Issue:    "troca de tela",
		Value:    decimal.NewFromFloat(value),
	})
	require.NoError(t, err)
	return dto
}

func TestCreateTicketStartsPending(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	dto := openTicket(t, svc, 350)
	assert.Equal(t, enums.MaintenanceStatusPending, dto.Status)
	assert.False(t, dto.Paid)
	assert.True(t, dto.Value.Equal(decimal.NewFromInt(350)))
}

func TestCreateTicketRequiresCustomerAndDevice(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, testStore, CreateTicketInput{Device: "iPhone"})
	require.Error(t, err)

	_, err = svc.Create(ctx, testStore, CreateTicketInput{Customer: "Ana"})
	require.Error(t, err)
}

func TestUpdateTicketStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()
	dto := openTicket(t, svc, 200)

	status := enums.MaintenanceStatusInProgress
	updated, err := svc.Update(ctx, testStore, dto.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusInProgress, updated.Status)

	// Transitions are unrestricted, moving back to pending is fine.
	status = enums.MaintenanceStatusPending
	updated, err = svc.Update(ctx, testStore, dto.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, enums.MaintenanceStatusPending, updated.Status)
}

func TestTicketScopedToStore(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	dto := openTicket(t, svc, 100)

	_, err := svc.Get(context.Background(), "loja2@cellshop.test", dto.ID)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListFiltersByStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	openTicket(t, svc, 100)
	second := openTicket(t, svc, 150)
	status := enums.MaintenanceStatusCompleted
	_, err := svc.Update(ctx, testStore, second.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)

	completed, err := svc.List(ctx, testStore, ListFilter{Status: &status})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, second.ID, completed[0].ID)
}

func TestBillCompletedRepair(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	dto := openTicket(t, svc, 350)

	status := enums.MaintenanceStatusCompleted
	_, err := svc.Update(ctx, testStore, dto.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)

	method := enums.PaymentMethodPix
	sale, err := svc.Bill(ctx, testStore, dto.ID, sales.PaymentTerms{
		Kind:   enums.PaymentKindSingle,
		Method: &method,
	})
	require.NoError(t, err)
	require.NotNil(t, sale.MaintenanceID)
	assert.Equal(t, dto.ID, *sale.MaintenanceID)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(350)), "total %s", sale.Total)

	var ticket models.MaintenanceTicket
	require.NoError(t, conn.First(&ticket, "id = ?", dto.ID).Error)
	assert.True(t, ticket.Paid)

	// Billing again is a state conflict.
	_, err = svc.Bill(ctx, testStore, dto.ID, sales.PaymentTerms{
		Kind:   enums.PaymentKindSingle,
		Method: &method,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestBillRequiresCompletedStatus(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	dto := openTicket(t, svc, 350)

	method := enums.PaymentMethodCash
	_, err := svc.Bill(context.Background(), testStore, dto.ID, sales.PaymentTerms{
		Kind:   enums.PaymentKindSingle,
		Method: &method,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestBillRollsBackPaidOnInvalidPayment(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t)
	ctx := context.Background()
	dto := openTicket(t, svc, 350)

	status := enums.MaintenanceStatusCompleted
	_, err := svc.Update(ctx, testStore, dto.ID, UpdateTicketInput{Status: &status})
	require.NoError(t, err)

	// Single-method sale without a method fails validation in checkout.
	_, err = svc.Bill(ctx, testStore, dto.ID, sales.PaymentTerms{Kind: enums.PaymentKindSingle})
	require.Error(t, err)

	var ticket models.MaintenanceTicket
	require.NoError(t, conn.First(&ticket, "id = ?", dto.ID).Error)
	assert.False(t, ticket.Paid, "paid flag must roll back when checkout fails")

	// A correct retry succeeds.
	method := enums.PaymentMethodCard
	_, err = svc.Bill(ctx, testStore, dto.ID, sales.PaymentTerms{
		Kind:   enums.PaymentKindSingle,
		Method: &method,
	})
	require.NoError(t, err)
}
