package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avalenz-dev/storefront-backend/api/middleware"
	ordersvc "github.com/avalenz-dev/storefront-backend/internal/orders"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

type stubOrdersService struct {
	createResp *ordersvc.OrderDTO
	createErr  error
	createReq  ordersvc.CreateOrderRequest
	listResp   []ordersvc.OrderDTO
	listErr    error
	userID     uuid.UUID
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, userID uuid.UUID, req ordersvc.CreateOrderRequest) (*ordersvc.OrderDTO, error) {
	s.userID = userID
	s.createReq = req
	return s.createResp, s.createErr
}

func (s *stubOrdersService) ListOrders(ctx context.Context, userID uuid.UUID) ([]ordersvc.OrderDTO, error) {
	s.userID = userID
	return s.listResp, s.listErr
}

func authenticatedRequest(method, target string, body *bytes.Buffer, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
}

func TestCreateOrderReturns201(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	stub := &stubOrdersService{
		createResp: &ordersvc.OrderDTO{
			ID:          uuid.New(),
			UserID:      userID,
			TotalAmount: decimal.RequireFromString("179.98"),
		},
	}

	body := bytes.NewBufferString(fmt.Sprintf(
		`{"items":[{"product_id":%q,"quantity":2}],"shipping_address":"1 Main St","payment_method":"stripe"}`,
		productID,
	))
	rec := httptest.NewRecorder()
	CreateOrder(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/orders", body, userID))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, userID, stub.userID)
	require.Len(t, stub.createReq.Items, 1)
	assert.Equal(t, productID, stub.createReq.Items[0].ProductID)
	assert.Equal(t, 2, stub.createReq.Items[0].Quantity)
}

func TestCreateOrderWithoutAuthIs401(t *testing.T) {
	body := bytes.NewBufferString(`{"items":[],"shipping_address":"1 Main St","payment_method":"stripe"}`)
	req := httptest.NewRequest(http.MethodPost, "/orders", body)
	rec := httptest.NewRecorder()
	CreateOrder(&stubOrdersService{}, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrderValidationErrorIs400(t *testing.T) {
	stub := &stubOrdersService{
		createErr: pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item"),
	}

	productID := uuid.New()
	body := bytes.NewBufferString(fmt.Sprintf(
		`{"items":[{"product_id":%q,"quantity":1}],"shipping_address":"1 Main St","payment_method":"stripe"}`,
		productID,
	))
	rec := httptest.NewRecorder()
	CreateOrder(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/orders", body, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersReturnsCallerOrders(t *testing.T) {
	userID := uuid.New()
	stub := &stubOrdersService{
		listResp: []ordersvc.OrderDTO{
			{ID: uuid.New(), UserID: userID, TotalAmount: decimal.RequireFromString("20.00")},
			{ID: uuid.New(), UserID: userID, TotalAmount: decimal.RequireFromString("10.00")},
		},
	}

	rec := httptest.NewRecorder()
	ListOrders(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodGet, "/orders", nil, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, stub.userID)

	var payload struct {
		Data []ordersvc.OrderDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Data, 2)
}
