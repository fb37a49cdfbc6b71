package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
)

// CardPaymentRequest is the payload accepted by POST /payments/stripe.
type CardPaymentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PaymentMethodID string    `json:"payment_method_id" validate:"required"`
}

// WalletPaymentRequest is the payload accepted by POST /payments/paypal.
type WalletPaymentRequest struct {
	OrderID   uuid.UUID `json:"order_id" validate:"required"`
	PaymentID string    `json:"payment_id" validate:"required"`
}

// PaymentDTO is the transport shape of a recorded capture.
type PaymentDTO struct {
	ID            uuid.UUID                 `json:"id"`
	OrderID       uuid.UUID                 `json:"order_id"`
	Amount        decimal.Decimal           `json:"amount"`
	Method        enums.PaymentMethod       `json:"method"`
	ProviderTxnID string                    `json:"provider_txn_id"`
	Status        enums.PaymentRecordStatus `json:"status"`
	CreatedAt     time.Time                 `json:"created_at"`
}

func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}

	return &PaymentDTO{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Method:        p.Method,
		ProviderTxnID: p.ProviderTxnID,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
	}
}
