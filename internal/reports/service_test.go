package reports

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/andreviana/cellshop-pos-backend/pkg/db/models"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

const testStore = "loja1@cellshop.test"

type memoryCache struct {
	values map[string]string
	sets   int
	gets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.gets++
	if v, ok := c.values[key]; ok {
		return v, nil
	}
	return "", errors.New("cache miss")
}

func (c *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.sets++
	c.values[key] = value.(string)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:reports_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = conn.AutoMigrate(
		&models.Product{},
		&models.Sale{},
		&models.SaleItem{},
		&models.SalePayment{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, cache summaryCache) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	logg := logger.New(logger.Options{ServiceName: "reports-test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), cache, time.Minute, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func methodPtr(m enums.PaymentMethod) *enums.PaymentMethod {
	return &m
}

func seedSale(t *testing.T, conn *gorm.DB, sale *models.Sale) {
	t.Helper()
	if sale.Subtotal.IsZero() {
		sale.Subtotal = sale.Total
	}
	if err := conn.Create(sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func TestSalesSummaryBucketsByMethod(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()

	due := time.Now().AddDate(0, 1, 0)
	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(100),
		PaymentKind: enums.PaymentKindSingle, PaymentMethod: methodPtr(enums.PaymentMethodPix),
		Status: enums.SaleStatusCompleted,
	})
	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(230),
		PaymentKind: enums.PaymentKindSplit,
		Status:      enums.SaleStatusCompleted,
		Payments: []models.SalePayment{
			{Method: enums.PaymentMethodPix, Amount: money(150)},
			{Method: enums.PaymentMethodCash, Amount: money(80)},
		},
	})
	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(120),
		PaymentKind: enums.PaymentKindFiado,
		ClientName:  "Maria", ClientPhone: "11 90000-0000", DueDate: &due,
		Status: enums.SaleStatusPending,
	})
	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(60),
		PaymentKind: enums.PaymentKindSingle, PaymentMethod: methodPtr(enums.PaymentMethodCash),
		Status: enums.SaleStatusRefunded,
	})
	// Another store's sale never leaks into the report.
	seedSale(t, conn, &models.Sale{
		Store: "loja2@cellshop.test", Total: money(999),
		PaymentKind: enums.PaymentKindSingle, PaymentMethod: methodPtr(enums.PaymentMethodPix),
		Status: enums.SaleStatusCompleted,
	})

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	summary, err := svc.SalesSummary(ctx, testStore, from, to)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.SaleCount)
	assert.True(t, summary.Revenue.Equal(money(330)), "revenue %s", summary.Revenue)

	pix := summary.ByMethod[enums.PaymentMethodPix]
	require.NotNil(t, pix)
	assert.Equal(t, 2, pix.Count)
	assert.True(t, pix.Total.Equal(money(250)), "pix total %s", pix.Total)

	cash := summary.ByMethod[enums.PaymentMethodCash]
	require.NotNil(t, cash)
	assert.True(t, cash.Total.Equal(money(80)), "cash total %s", cash.Total)

	assert.Equal(t, 1, summary.PendingFiado.Count)
	assert.True(t, summary.PendingFiado.Total.Equal(money(120)))
	assert.Equal(t, 1, summary.Refunded.Count)
}

func TestSalesSummaryUsesCache(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	svc, conn := newTestService(t, cache)
	ctx := context.Background()

	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(100),
		PaymentKind: enums.PaymentKindSingle, PaymentMethod: methodPtr(enums.PaymentMethodPix),
		Status: enums.SaleStatusCompleted,
	})

	from := time.Now().Add(-time.Hour).Truncate(time.Second)
	to := time.Now().Add(time.Hour).Truncate(time.Second)

	first, err := svc.SalesSummary(ctx, testStore, from, to)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets)

	// A sale landing after the snapshot is invisible until the TTL expires.
	seedSale(t, conn, &models.Sale{
		Store: testStore, Total: money(500),
		PaymentKind: enums.PaymentKindSingle, PaymentMethod: methodPtr(enums.PaymentMethodCash),
		Status: enums.SaleStatusCompleted,
	})

	second, err := svc.SalesSummary(ctx, testStore, from, to)
	require.NoError(t, err)
	assert.Equal(t, first.SaleCount, second.SaleCount)
	assert.True(t, first.Revenue.Equal(second.Revenue))
	assert.Equal(t, 1, cache.sets, "cache hit must not rewrite the entry")
}

func TestSalesSummaryRejectsEmptyWindow(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t, nil)
	now := time.Now()
	_, err := svc.SalesSummary(context.Background(), testStore, now, now)
	require.Error(t, err)
}

func TestLowStockReport(t *testing.T) {
	t.Parallel()

	svc, conn := newTestService(t, nil)
	ctx := context.Background()

	seed := []models.Product{
		{Store: testStore, Name: "Capa", NameLower: "capa", Price: money(20), Stock: 10, MinStock: 5},
		{Store: testStore, Name: "Película", NameLower: "película", Price: money(15), Stock: 3, MinStock: 8},
		{Store: testStore, Name: "Fone", NameLower: "fone", Price: money(80), Stock: 0, MinStock: 2},
		{Store: testStore, Name: "Cabo", NameLower: "cabo", Price: money(25), Stock: 2, MinStock: 8},
	}
	for i := range seed {
		require.NoError(t, conn.Create(&seed[i]).Error)
	}

	report, err := svc.LowStock(ctx, testStore)
	require.NoError(t, err)
	assert.Equal(t, 2, report.CriticalCount, "empty fone + cabo at a quarter of minimum")
	assert.Equal(t, 1, report.LowCount)
	assert.Len(t, report.Items, 3)
}
