package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kidoralabs/kidora-backend/internal/products"
	pkgerrors "github.com/kidoralabs/kidora-backend/pkg/errors"
	"github.com/kidoralabs/kidora-backend/pkg/pagination"
)

type stubProductsService struct {
	list      *products.ProductListDTO
	listErr   error
	filters   products.ListFilters
	params    pagination.Params
	updateIn  *products.UpdateProductInput
	updateID  uuid.UUID
	createIn  *products.CreateProductInput
	createErr error
}

func (s *stubProductsService) List(ctx context.Context, filters products.ListFilters, params pagination.Params) (*products.ProductListDTO, error) {
	s.filters = filters
	s.params = params
	if s.list == nil {
		s.list = &products.ProductListDTO{Items: []products.ProductDTO{}}
	}
	return s.list, s.listErr
}

func (s *stubProductsService) Get(ctx context.Context, id uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id}, nil
}

func (s *stubProductsService) Create(ctx context.Context, input products.CreateProductInput) (*products.ProductDTO, error) {
	s.createIn = &input
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &products.ProductDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (s *stubProductsService) Update(ctx context.Context, id uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	s.updateID = id
	s.updateIn = &input
	return &products.ProductDTO{ID: id}, nil
}

func (s *stubProductsService) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubProductsService) Categories(ctx context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubProductsService) CategoryCounts(ctx context.Context) ([]products.CategoryCount, error) {
	return nil, nil
}

func (s *stubProductsService) LowStock(ctx context.Context) ([]products.ProductDTO, error) {
	return nil, nil
}

func TestListProductsFilters(t *testing.T) {
	svc := &stubProductsService{}
	handler := ListProducts(svc, controllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/products?category=Shoes&category=Bags&search=run&page=2&size=5", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.filters.Categories) != 2 {
		t.Fatalf("unexpected categories %v", svc.filters.Categories)
	}
	if svc.filters.Search != "run" {
		t.Fatalf("unexpected search %q", svc.filters.Search)
	}
	if svc.params.Page != 2 || svc.params.Size != 5 {
		t.Fatalf("unexpected pagination %+v", svc.params)
	}
}

func TestListProductsBadPagination(t *testing.T) {
	handler := ListProducts(&stubProductsService{}, controllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/products?page=zero", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestSearchProductsRequiresQuery(t *testing.T) {
	handler := SearchProducts(&stubProductsService{}, controllerLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/products/search", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCreateProductValidation(t *testing.T) {
	svc := &stubProductsService{}
	handler := CreateProduct(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/admin/products", `{"name":"","category":"Shoes","price":"10.00"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.createIn != nil {
		t.Fatal("service should not be called on invalid payload")
	}

	var body struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	if body.Error.Details["name"] == "" {
		t.Fatalf("expected a name detail, got %+v", body.Error.Details)
	}
}

func TestCreateProductCreated(t *testing.T) {
	svc := &stubProductsService{}
	handler := CreateProduct(svc, controllerLogger())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, jsonRequest(http.MethodPost, "/api/admin/products", `{"name":"Runner","category":"Shoes","price":"99.90","stock":4}`))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.createIn == nil || svc.createIn.Name != "Runner" {
		t.Fatalf("unexpected input %+v", svc.createIn)
	}
}

func TestUpdateProductPartialKeys(t *testing.T) {
	productID := uuid.New()

	run := func(t *testing.T, body string) *stubProductsService {
		t.Helper()
		svc := &stubProductsService{}
		router := chi.NewRouter()
		router.Put("/api/admin/products/{id}", UpdateProduct(svc, controllerLogger()))

		req := jsonRequest(http.MethodPut, "/api/admin/products/"+productID.String(), body)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
		}
		if svc.updateIn == nil {
			t.Fatal("service was not called")
		}
		if svc.updateID != productID {
			t.Fatalf("unexpected id %s", svc.updateID)
		}
		return svc
	}

	t.Run("omitted collections stay untouched", func(t *testing.T) {
		svc := run(t, `{"name":"Renamed"}`)
		in := svc.updateIn
		if in.SizesStockSet || in.ImagesSet || in.VideoURLSet {
			t.Fatalf("expected no set flags, got %+v", in)
		}
		if in.Name == nil || *in.Name != "Renamed" {
			t.Fatalf("unexpected name %v", in.Name)
		}
	})

	t.Run("explicit null clears video url", func(t *testing.T) {
		svc := run(t, `{"videoUrl":null}`)
		in := svc.updateIn
		if !in.VideoURLSet {
			t.Fatal("expected VideoURLSet true")
		}
		if in.VideoURL != nil {
			t.Fatalf("expected nil video url, got %v", *in.VideoURL)
		}
	})

	t.Run("empty images array clears the gallery", func(t *testing.T) {
		svc := run(t, `{"images":[]}`)
		in := svc.updateIn
		if !in.ImagesSet {
			t.Fatal("expected ImagesSet true")
		}
		if len(in.Images) != 0 {
			t.Fatalf("unexpected images %v", in.Images)
		}
	})
}

func TestUpdateProductBadID(t *testing.T) {
	router := chi.NewRouter()
	router.Put("/api/admin/products/{id}", UpdateProduct(&stubProductsService{}, controllerLogger()))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, jsonRequest(http.MethodPut, "/api/admin/products/not-a-uuid", `{"name":"x"}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
