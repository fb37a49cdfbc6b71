package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

// Capturer charges the provider for the full order amount and returns the
// provider's transaction reference.
type Capturer interface {
	Capture(ctx context.Context, amount decimal.Decimal, credential string) (string, error)
}

// Service defines the behavior needed by the payments controller.
type Service interface {
	ProcessCardPayment(ctx context.Context, userID uuid.UUID, req CardPaymentRequest) (*PaymentDTO, error)
	ProcessWalletPayment(ctx context.Context, userID uuid.UUID, req WalletPaymentRequest) (*PaymentDTO, error)
}

type orderFinder interface {
	FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	payments Repository
	orders   orderFinder
	tx       txRunner
	stripe   Capturer
	paypal   Capturer
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	PaymentRepo    Repository
	OrderRepo      orderFinder
	TxRunner       txRunner
	StripeCapturer Capturer
	PayPalCapturer Capturer
}

// NewService constructs a payments service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.PaymentRepo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.StripeCapturer == nil {
		return nil, fmt.Errorf("stripe capturer is required")
	}
	if params.PayPalCapturer == nil {
		return nil, fmt.Errorf("paypal capturer is required")
	}
	return &service{
		payments: params.PaymentRepo,
		orders:   params.OrderRepo,
		tx:       params.TxRunner,
		stripe:   params.StripeCapturer,
		paypal:   params.PayPalCapturer,
	}, nil
}

func (s *service) ProcessCardPayment(ctx context.Context, userID uuid.UUID, req CardPaymentRequest) (*PaymentDTO, error) {
	return s.capture(ctx, userID, req.OrderID, enums.PaymentMethodStripe, req.PaymentMethodID, s.stripe)
}

func (s *service) ProcessWalletPayment(ctx context.Context, userID uuid.UUID, req WalletPaymentRequest) (*PaymentDTO, error) {
	return s.capture(ctx, userID, req.OrderID, enums.PaymentMethodPayPal, req.PaymentID, s.paypal)
}

// capture runs the shared payment flow: load the caller's order, charge the
// provider for its total, then flip the order to paid and write the ledger
// row as one transaction. Provider failures leave the order untouched.
func (s *service) capture(ctx context.Context, userID, orderID uuid.UUID, method enums.PaymentMethod, credential string, capturer Capturer) (*PaymentDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if strings.TrimSpace(credential) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment credential is required")
	}

	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup order")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
	}

	providerTxnID, err := capturer.Capture(ctx, order.TotalAmount, credential)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "payment capture failed")
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		OrderID:       order.ID,
		Amount:        order.TotalAmount,
		Method:        method,
		ProviderTxnID: providerTxnID,
		Status:        enums.PaymentRecordStatusCompleted,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.payments.WithTx(tx)
		rows, err := repo.MarkOrderPaid(ctx, order.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "order already paid")
		}
		_, err = repo.CreatePayment(ctx, payment)
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record payment")
	}

	return FromModel(payment), nil
}
