package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productsvc "github.com/avalenz-dev/storefront-backend/internal/products"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

type stubProductsService struct {
	listResp []productsvc.ProductDTO
	listErr  error
	getResp  *productsvc.ProductDTO
	getErr   error
	gotID    uuid.UUID
}

func (s *stubProductsService) ListProducts(ctx context.Context) ([]productsvc.ProductDTO, error) {
	return s.listResp, s.listErr
}

func (s *stubProductsService) GetProduct(ctx context.Context, id uuid.UUID) (*productsvc.ProductDTO, error) {
	s.gotID = id
	return s.getResp, s.getErr
}

func getProductRequest(productID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/products/"+productID, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("productId", productID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestListProductsReturnsCatalog(t *testing.T) {
	stub := &stubProductsService{
		listResp: []productsvc.ProductDTO{
			{ID: uuid.New(), Name: "Desk Lamp", Price: decimal.RequireFromString("24.75"), Category: "home"},
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	ListProducts(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []productsvc.ProductDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	assert.Equal(t, "Desk Lamp", payload.Data[0].Name)
}

func TestGetProductParsesID(t *testing.T) {
	productID := uuid.New()
	stub := &stubProductsService{
		getResp: &productsvc.ProductDTO{ID: productID, Name: "Desk Lamp", Price: decimal.RequireFromString("24.75")},
	}

	rec := httptest.NewRecorder()
	GetProduct(stub, testLogger()).ServeHTTP(rec, getProductRequest(productID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, productID, stub.gotID)
}

func TestGetProductInvalidIDIs400(t *testing.T) {
	rec := httptest.NewRecorder()
	GetProduct(&stubProductsService{}, testLogger()).ServeHTTP(rec, getProductRequest("not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductMissingIs404(t *testing.T) {
	stub := &stubProductsService{
		getErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found"),
	}

	rec := httptest.NewRecorder()
	GetProduct(stub, testLogger()).ServeHTTP(rec, getProductRequest(uuid.NewString()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
