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

	paymentsvc "github.com/avalenz-dev/storefront-backend/internal/payments"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

type stubPaymentsService struct {
	cardResp   *paymentsvc.PaymentDTO
	cardErr    error
	cardReq    paymentsvc.CardPaymentRequest
	walletResp *paymentsvc.PaymentDTO
	walletErr  error
	walletReq  paymentsvc.WalletPaymentRequest
	userID     uuid.UUID
}

func (s *stubPaymentsService) ProcessCardPayment(ctx context.Context, userID uuid.UUID, req paymentsvc.CardPaymentRequest) (*paymentsvc.PaymentDTO, error) {
	s.userID = userID
	s.cardReq = req
	return s.cardResp, s.cardErr
}

func (s *stubPaymentsService) ProcessWalletPayment(ctx context.Context, userID uuid.UUID, req paymentsvc.WalletPaymentRequest) (*paymentsvc.PaymentDTO, error) {
	s.userID = userID
	s.walletReq = req
	return s.walletResp, s.walletErr
}

func TestStripePaymentSuccess(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	stub := &stubPaymentsService{
		cardResp: &paymentsvc.PaymentDTO{
			ID:            uuid.New(),
			OrderID:       orderID,
			Amount:        decimal.RequireFromString("211.48"),
			Method:        enums.PaymentMethodStripe,
			ProviderTxnID: "pi_123",
			Status:        enums.PaymentRecordStatusCompleted,
		},
	}

	body := bytes.NewBufferString(fmt.Sprintf(`{"order_id":%q,"payment_method_id":"pm_card_visa"}`, orderID))
	rec := httptest.NewRecorder()
	StripePayment(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/payments/stripe", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, stub.userID)
	assert.Equal(t, orderID, stub.cardReq.OrderID)
	assert.Equal(t, "pm_card_visa", stub.cardReq.PaymentMethodID)

	var payload struct {
		Data paymentsvc.PaymentDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "pi_123", payload.Data.ProviderTxnID)
}

func TestStripePaymentProviderFailureIs500Generic(t *testing.T) {
	orderID := uuid.New()
	stub := &stubPaymentsService{
		cardErr: pkgerrors.Wrap(pkgerrors.CodePayment, fmt.Errorf("card declined"), "payment capture failed"),
	}

	body := bytes.NewBufferString(fmt.Sprintf(`{"order_id":%q,"payment_method_id":"pm_card_declined"}`, orderID))
	rec := httptest.NewRecorder()
	StripePayment(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/payments/stripe", body, uuid.New()))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "payment processing failed", payload.Error.Message)
	assert.NotContains(t, payload.Error.Message, "declined")
}

func TestStripePaymentWithoutAuthIs401(t *testing.T) {
	body := bytes.NewBufferString(`{"order_id":"x","payment_method_id":"pm"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/stripe", body)
	rec := httptest.NewRecorder()
	StripePayment(&stubPaymentsService{}, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayPalPaymentSuccess(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	stub := &stubPaymentsService{
		walletResp: &paymentsvc.PaymentDTO{
			ID:            uuid.New(),
			OrderID:       orderID,
			Amount:        decimal.RequireFromString("10.00"),
			Method:        enums.PaymentMethodPayPal,
			ProviderTxnID: "PAY-456",
			Status:        enums.PaymentRecordStatusCompleted,
		},
	}

	body := bytes.NewBufferString(fmt.Sprintf(`{"order_id":%q,"payment_id":"PAY-456"}`, orderID))
	rec := httptest.NewRecorder()
	PayPalPayment(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/payments/paypal", body, userID))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, orderID, stub.walletReq.OrderID)
	assert.Equal(t, "PAY-456", stub.walletReq.PaymentID)
}

func TestPayPalPaymentForeignOrderIs404(t *testing.T) {
	orderID := uuid.New()
	stub := &stubPaymentsService{
		walletErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found"),
	}

	body := bytes.NewBufferString(fmt.Sprintf(`{"order_id":%q,"payment_id":"PAY-456"}`, orderID))
	rec := httptest.NewRecorder()
	PayPalPayment(stub, testLogger()).ServeHTTP(rec, authenticatedRequest(http.MethodPost, "/payments/paypal", body, uuid.New()))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
