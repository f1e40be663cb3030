package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andreviana/cellshop-pos-backend/api/controllers"
	"github.com/andreviana/cellshop-pos-backend/api/middleware"
	"github.com/andreviana/cellshop-pos-backend/internal/auth"
	"github.com/andreviana/cellshop-pos-backend/internal/maintenance"
	products "github.com/andreviana/cellshop-pos-backend/internal/products"
	"github.com/andreviana/cellshop-pos-backend/internal/reports"
	"github.com/andreviana/cellshop-pos-backend/internal/sales"
	"github.com/andreviana/cellshop-pos-backend/pkg/auth/session"
	"github.com/andreviana/cellshop-pos-backend/pkg/config"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
	"github.com/andreviana/cellshop-pos-backend/pkg/metrics"
	"github.com/andreviana/cellshop-pos-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps bundles everything the HTTP surface needs, wired once in cmd/api.
type Deps struct {
	Config             *config.Config
	Logger             *logger.Logger
	DB                 pinger
	Redis              *redis.Client
	HTTPMetrics        *metrics.HTTPMetrics
	MetricsHandler     http.Handler
	SessionManager     sessionManager
	AuthService        auth.Service
	ProductService     products.Service
	SalesService       sales.Service
	MaintenanceService maintenance.Service
	ReportsService     reports.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	// A nil *redis.Client must stay nil once it lands in the middleware
	// interfaces, so the conversion is guarded.
	var idempotencyStore redis.IdempotencyStore
	var rateLimitStore middleware.RateLimiterStore
	var cachePinger pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateLimitStore = deps.Redis
		cachePinger = deps.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger, logg))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateLimitStore, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionManager, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.ProductService, logg))
			r.Post("/", controllers.CreateProduct(deps.ProductService, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.ProductService, logg))
			r.Patch("/{productID}", controllers.UpdateProduct(deps.ProductService, logg))
			r.Delete("/{productID}", controllers.DeleteProduct(deps.ProductService, logg))
			r.Post("/{productID}/stock", controllers.AdjustStock(deps.ProductService, logg))
			r.Get("/{productID}/movements", controllers.ListStockMovements(deps.ProductService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.ListSales(deps.SalesService, logg))
			r.Post("/", controllers.CreateSale(deps.SalesService, logg))
			r.Get("/{saleID}", controllers.GetSale(deps.SalesService, logg))
			r.Post("/{saleID}/refund", controllers.RefundSale(deps.SalesService, logg))
			r.Post("/{saleID}/settle", controllers.SettleFiado(deps.SalesService, logg))
		})

		r.Route("/maintenance", func(r chi.Router) {
			r.Get("/", controllers.ListTickets(deps.MaintenanceService, logg))
			r.Post("/", controllers.CreateTicket(deps.MaintenanceService, logg))
			r.Get("/{ticketID}", controllers.GetTicket(deps.MaintenanceService, logg))
			r.Patch("/{ticketID}", controllers.UpdateTicket(deps.MaintenanceService, logg))
			r.Delete("/{ticketID}", controllers.DeleteTicket(deps.MaintenanceService, logg))
			r.Post("/{ticketID}/bill", controllers.BillTicket(deps.MaintenanceService, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/sales-summary", controllers.SalesSummaryReport(deps.ReportsService, logg))
			r.Get("/low-stock", controllers.LowStockReport(deps.ReportsService, logg))
		})
	})

	return r
}
