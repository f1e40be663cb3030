package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/andreviana/cellshop-pos-backend/internal/products"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

// MethodBucket aggregates completed sales revenue attributed to one payment
// method. Split sales contribute per payment entry.
type MethodBucket struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// SalesSummaryDTO is the per-period sales report.
type SalesSummaryDTO struct {
	From         time.Time                             `json:"from"`
	To           time.Time                             `json:"to"`
	SaleCount    int                                   `json:"saleCount"`
	Revenue      decimal.Decimal                       `json:"revenue"`
	ByMethod     map[enums.PaymentMethod]*MethodBucket `json:"byMethod"`
	PendingFiado MethodBucket                          `json:"pendingFiado"`
	Refunded     MethodBucket                          `json:"refunded"`
}

// LowStockItem is one product needing replenishment.
type LowStockItem struct {
	ID       uuid.UUID         `json:"id"`
	Name     string            `json:"name"`
	Stock    int               `json:"stock"`
	MinStock int               `json:"minStock"`
	Status   enums.StockStatus `json:"status"`
}

// LowStockReportDTO lists the products at or below their replenishment minimum.
type LowStockReportDTO struct {
	CriticalCount int            `json:"criticalCount"`
	LowCount      int            `json:"lowCount"`
	Items         []LowStockItem `json:"items"`
}

type summaryCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Service aggregates sales and stock reports, scoped to the operator's store.
type Service interface {
	SalesSummary(ctx context.Context, store string, from, to time.Time) (*SalesSummaryDTO, error)
	LowStock(ctx context.Context, store string) (*LowStockReportDTO, error)
}

type service struct {
	repo     *Repository
	cache    summaryCache
	cacheTTL time.Duration
	logg     *logger.Logger
}

// NewService constructs a reports service. cache may be nil, which disables
// summary caching.
func NewService(repo *Repository, cache summaryCache, cacheTTL time.Duration, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cacheTTL <= 0 {
		cacheTTL = 60 * time.Second
	}
	return &service{repo: repo, cache: cache, cacheTTL: cacheTTL, logg: logg}, nil
}

// SalesSummary aggregates a period's sales per payment method, with a separate
// bucket for fiado still pending collection. Served from cache when fresh.
func (s *service) SalesSummary(ctx context.Context, store string, from, to time.Time) (*SalesSummaryDTO, error) {
	if !to.After(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report window must end after it starts")
	}

	key := summaryCacheKey(store, from, to)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached SalesSummaryDTO
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	rows, err := s.repo.SalesInWindow(ctx, store, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sales window")
	}

	summary := &SalesSummaryDTO{
		From:         from,
		To:           to,
		Revenue:      decimal.Zero,
		ByMethod:     make(map[enums.PaymentMethod]*MethodBucket),
		PendingFiado: MethodBucket{Total: decimal.Zero},
		Refunded:     MethodBucket{Total: decimal.Zero},
	}

	for i := range rows {
		sale := &rows[i]
		switch sale.Status {
		case enums.SaleStatusRefunded:
			summary.Refunded.Count++
			summary.Refunded.Total = summary.Refunded.Total.Add(sale.Total)
		case enums.SaleStatusPending:
			summary.PendingFiado.Count++
			summary.PendingFiado.Total = summary.PendingFiado.Total.Add(sale.Total)
		case enums.SaleStatusCompleted:
			summary.SaleCount++
			summary.Revenue = summary.Revenue.Add(sale.Total)
			if sale.PaymentKind == enums.PaymentKindSplit {
				for _, payment := range sale.Payments {
					bucketFor(summary.ByMethod, payment.Method).add(payment.Amount)
				}
			} else if sale.PaymentMethod != nil {
				bucketFor(summary.ByMethod, *sale.PaymentMethod).add(sale.Total)
			}
		}
	}

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				s.logg.Warn(ctx, "report cache write failed")
			}
		}
	}
	return summary, nil
}

// LowStock lists the store's products needing replenishment.
func (s *service) LowStock(ctx context.Context, store string) (*LowStockReportDTO, error) {
	rows, err := s.repo.ProductsNeedingReplenishment(ctx, store)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load low stock products")
	}

	report := &LowStockReportDTO{Items: make([]LowStockItem, 0, len(rows))}
	for i := range rows {
		p := &rows[i]
		status := product.StockStatusFor(p.Stock, p.MinStock)
		switch status {
		case enums.StockStatusCritical:
			report.CriticalCount++
		case enums.StockStatusLow:
			report.LowCount++
		default:
			continue
		}
		report.Items = append(report.Items, LowStockItem{
			ID:       p.ID,
			Name:     p.Name,
			Stock:    p.Stock,
			MinStock: p.MinStock,
			Status:   status,
		})
	}
	return report, nil
}

func bucketFor(buckets map[enums.PaymentMethod]*MethodBucket, method enums.PaymentMethod) *MethodBucket {
	bucket, ok := buckets[method]
	if !ok {
		bucket = &MethodBucket{Total: decimal.Zero}
		buckets[method] = bucket
	}
	return bucket
}

func (b *MethodBucket) add(amount decimal.Decimal) {
	b.Count++
	b.Total = b.Total.Add(amount)
}

func summaryCacheKey(store string, from, to time.Time) string {
	return fmt.Sprintf("reports:summary:%s:%d:%d", store, from.Unix(), to.Unix())
}
