package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/andreviana/cellshop-pos-backend/api/middleware"
	"github.com/andreviana/cellshop-pos-backend/api/responses"
	"github.com/andreviana/cellshop-pos-backend/api/validators"
	productsvc "github.com/andreviana/cellshop-pos-backend/internal/products"
	"github.com/andreviana/cellshop-pos-backend/pkg/enums"
	pkgerrors "github.com/andreviana/cellshop-pos-backend/pkg/errors"
	"github.com/andreviana/cellshop-pos-backend/pkg/logger"
)

func storeFromRequest(r *http.Request) (string, error) {
	store := middleware.StoreFromContext(r.Context())
	if store == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return store, nil
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

type createProductRequest struct {
	Name      string          `json:"name" validate:"required,max=200"`
	Brand     string          `json:"brand" validate:"omitempty,max=100"`
	Model     string          `json:"model" validate:"omitempty,max=100"`
	Category  string          `json:"category" validate:"omitempty,max=100"`
	Price     decimal.Decimal `json:"price"`
	CostPrice decimal.Decimal `json:"cost_price"`
	Stock     int             `json:"stock" validate:"omitempty,min=0"`
	MinStock  int             `json:"min_stock" validate:"omitempty,min=0"`
}

type updateProductRequest struct {
	Name      *string          `json:"name,omitempty" validate:"omitempty,max=200"`
	Brand     *string          `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model     *string          `json:"model,omitempty" validate:"omitempty,max=100"`
	Category  *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	CostPrice *decimal.Decimal `json:"cost_price,omitempty"`
	MinStock  *int             `json:"min_stock,omitempty" validate:"omitempty,min=0"`
}

type adjustStockRequest struct {
	Operation string `json:"operation" validate:"required"`
	Qty       int    `json:"qty" validate:"min=0"`
}

// CreateProduct handles catalog product creation for the operator's store.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), store, productsvc.CreateProductInput{
			Name:      payload.Name,
			Brand:     payload.Brand,
			Model:     payload.Model,
			Category:  payload.Category,
			Price:     payload.Price,
			CostPrice: payload.CostPrice,
			Stock:     payload.Stock,
			MinStock:  payload.MinStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), store, productID, productsvc.UpdateProductInput{
			Name:      payload.Name,
			Brand:     payload.Brand,
			Model:     payload.Model,
			Category:  payload.Category,
			Price:     payload.Price,
			CostPrice: payload.CostPrice,
			MinStock:  payload.MinStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), store, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), store, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListProducts supports search, category and replenishment filters via query
// parameters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := productsvc.ListFilter{
			Search:            validators.SanitizeString(r.URL.Query().Get("search"), 200),
			Category:          validators.SanitizeString(r.URL.Query().Get("category"), 100),
			ReplenishmentOnly: r.URL.Query().Get("replenishment") == "true",
		}

		products, err := svc.List(r.Context(), store, filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// AdjustStock applies a manual stock edit and records the movement.
func AdjustStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		operation, err := enums.ParseStockOperation(strings.TrimSpace(payload.Operation))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid operation"))
			return
		}

		product, err := svc.AdjustStock(r.Context(), store, productID, productsvc.AdjustStockInput{
			Operation: operation,
			Qty:       payload.Qty,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func ListStockMovements(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := storeFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := uuidParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movements, err := svc.ListMovements(r.Context(), store, productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movements)
	}
}
