package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kidoralabs/kidora-backend/api/responses"
	"github.com/kidoralabs/kidora-backend/api/validators"
	productsvc "github.com/kidoralabs/kidora-backend/internal/products"
	dbtypes "github.com/kidoralabs/kidora-backend/pkg/db/types"
	pkgerrors "github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/logger"
	"github.com/kidoralabs/kidora-backend/pkg/types"
)

type createProductRequest struct {
	Name            string            `json:"name" validate:"required"`
	Description     *string           `json:"description,omitempty"`
	Category        string            `json:"category" validate:"required"`
	Price           decimal.Decimal   `json:"price" validate:"required"`
	DiscountPercent *decimal.Decimal  `json:"discountPercent,omitempty"`
	Stock           int               `json:"stock" validate:"min=0"`
	SizesStock      dbtypes.SizeStock `json:"sizesStock,omitempty"`
	Images          []string          `json:"images,omitempty"`
	VideoURL        *string           `json:"videoUrl,omitempty"`
	LowStockThresh  *int              `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
}

type updateProductRequest struct {
	Name            *string           `json:"name,omitempty"`
	Description     *string           `json:"description,omitempty"`
	Category        *string           `json:"category,omitempty"`
	Price           *decimal.Decimal  `json:"price,omitempty"`
	DiscountPercent *decimal.Decimal  `json:"discountPercent,omitempty"`
	Stock           *int              `json:"stock,omitempty" validate:"omitempty,min=0"`
	SizesStock      dbtypes.SizeStock `json:"sizesStock,omitempty"`
	Images          []string          `json:"images,omitempty"`
	VideoURL        *string           `json:"videoUrl"`
	IsActive        *bool             `json:"isActive,omitempty"`
	LowStockThresh  *int              `json:"lowStockThreshold,omitempty" validate:"omitempty,min=0"`
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := productsvc.ListFilters{
			Search: strings.TrimSpace(r.URL.Query().Get("search")),
		}
		for _, raw := range r.URL.Query()["category"] {
			if c := strings.TrimSpace(raw); c != "" {
				filters.Categories = append(filters.Categories, c)
			}
		}

		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// ProductsByCategory serves the storefront category pages. It accepts a
// single category query parameter and shares the list semantics.
func ProductsByCategory(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		if category == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "category is required"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), productsvc.ListFilters{Categories: []string{category}}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func SearchProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "q is required"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), productsvc.ListFilters{Search: query}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func ProductCategories(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func ProductCategoryCounts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.CategoryCounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"counts": counts})
	}
}

func LowStockProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.LowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Name:            payload.Name,
			Description:     payload.Description,
			Category:        payload.Category,
			Price:           payload.Price,
			DiscountPercent: payload.DiscountPercent,
			Stock:           payload.Stock,
			SizesStock:      payload.SizesStock,
			Images:          payload.Images,
			VideoURL:        payload.VideoURL,
			LowStockThresh:  payload.LowStockThresh,
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
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		keys, err := validators.DecodeJSONBodyKeys(r, &payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		_, sizesSet := keys["sizesStock"]
		_, imagesSet := keys["images"]
		_, videoSet := keys["videoUrl"]

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:            payload.Name,
			Description:     payload.Description,
			Category:        payload.Category,
			Price:           payload.Price,
			DiscountPercent: payload.DiscountPercent,
			Stock:           payload.Stock,
			SizesStock:      payload.SizesStock,
			SizesStockSet:   sizesSet,
			Images:          payload.Images,
			ImagesSet:       imagesSet,
			VideoURL:        payload.VideoURL,
			VideoURLSet:     videoSet,
			IsActive:        payload.IsActive,
			LowStockThresh:  payload.LowStockThresh,
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
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.Message{Message: "product deleted"})
	}
}
