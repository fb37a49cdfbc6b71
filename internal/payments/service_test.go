package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/internal/orders"
	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  shipping_address TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME
);`
	paymentsTable := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  method TEXT NOT NULL,
  provider_txn_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'completed',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ordersTable).Error)
	require.NoError(t, db.Exec(orderItemsTable).Error)
	require.NoError(t, db.Exec(paymentsTable).Error)
	return db
}

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(tx.WithContext(ctx))
	})
}

type stubCapturer struct {
	txnID string
	err   error
	calls int
}

func (s *stubCapturer) Capture(ctx context.Context, amount decimal.Decimal, credential string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.txnID, nil
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, total string, status enums.PaymentStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		TotalAmount:     decimal.RequireFromString(total),
		Status:          enums.OrderStatusPending,
		PaymentStatus:   status,
		ShippingAddress: "1 Main St",
		PaymentMethod:   enums.PaymentMethodStripe,
	}
	require.NoError(t, db.Omit("Items").Create(order).Error)
	return order
}

func newPaymentsService(t *testing.T, db *gorm.DB, stripeCap, paypalCap Capturer) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		PaymentRepo:    NewRepository(db),
		OrderRepo:      orders.NewRepository(db),
		TxRunner:       gormTxRunner{db: db},
		StripeCapturer: stripeCap,
		PayPalCapturer: paypalCap,
	})
	require.NoError(t, err)
	return svc
}

func paymentCount(t *testing.T, db *gorm.DB, orderID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Where("order_id = ?", orderID).Count(&count).Error)
	return count
}

func TestProcessCardPaymentMarksPaidAndWritesLedger(t *testing.T) {
	db := setupPaymentsTestDB(t)
	stripeCap := &stubCapturer{txnID: "pi_123"}
	svc := newPaymentsService(t, db, stripeCap, &stubCapturer{txnID: "unused"})

	userID := uuid.New()
	order := seedOrder(t, db, userID, "211.48", enums.PaymentStatusPending)

	dto, err := svc.ProcessCardPayment(context.Background(), userID, CardPaymentRequest{
		OrderID:         order.ID,
		PaymentMethodID: "pm_card_visa",
	})
	require.NoError(t, err)

	assert.Equal(t, order.ID, dto.OrderID)
	assert.Equal(t, enums.PaymentMethodStripe, dto.Method)
	assert.Equal(t, "pi_123", dto.ProviderTxnID)
	assert.Equal(t, enums.PaymentRecordStatusCompleted, dto.Status)
	assert.True(t, dto.Amount.Equal(order.TotalAmount))
	assert.Equal(t, 1, stripeCap.calls)

	var persisted models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&persisted).Error)
	assert.Equal(t, enums.PaymentStatusPaid, persisted.PaymentStatus)
	assert.EqualValues(t, 1, paymentCount(t, db, order.ID))
}

func TestProcessWalletPaymentUsesPayPalCapturer(t *testing.T) {
	db := setupPaymentsTestDB(t)
	paypalCap := &stubCapturer{txnID: "PAY-456"}
	svc := newPaymentsService(t, db, &stubCapturer{txnID: "unused"}, paypalCap)

	userID := uuid.New()
	order := seedOrder(t, db, userID, "10.00", enums.PaymentStatusPending)

	dto, err := svc.ProcessWalletPayment(context.Background(), userID, WalletPaymentRequest{
		OrderID:   order.ID,
		PaymentID: "PAY-456",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentMethodPayPal, dto.Method)
	assert.Equal(t, "PAY-456", dto.ProviderTxnID)
	assert.Equal(t, 1, paypalCap.calls)
}

func TestProcessCardPaymentProviderFailureLeavesOrderUntouched(t *testing.T) {
	db := setupPaymentsTestDB(t)
	stripeCap := &stubCapturer{err: errors.New("card declined")}
	svc := newPaymentsService(t, db, stripeCap, &stubCapturer{})

	userID := uuid.New()
	order := seedOrder(t, db, userID, "50.00", enums.PaymentStatusPending)

	_, err := svc.ProcessCardPayment(context.Background(), userID, CardPaymentRequest{
		OrderID:         order.ID,
		PaymentMethodID: "pm_card_declined",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodePayment, typed.Code())

	var persisted models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&persisted).Error)
	assert.Equal(t, enums.PaymentStatusPending, persisted.PaymentStatus)
	assert.Zero(t, paymentCount(t, db, order.ID))
}

func TestProcessCardPaymentForeignOrderIsNotFound(t *testing.T) {
	db := setupPaymentsTestDB(t)
	stripeCap := &stubCapturer{txnID: "pi_123"}
	svc := newPaymentsService(t, db, stripeCap, &stubCapturer{})

	owner := uuid.New()
	order := seedOrder(t, db, owner, "50.00", enums.PaymentStatusPending)

	_, err := svc.ProcessCardPayment(context.Background(), uuid.New(), CardPaymentRequest{
		OrderID:         order.ID,
		PaymentMethodID: "pm_card_visa",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	assert.Zero(t, stripeCap.calls, "capture must not run for a foreign order")
}

func TestProcessCardPaymentAlreadyPaidIsConflict(t *testing.T) {
	db := setupPaymentsTestDB(t)
	stripeCap := &stubCapturer{txnID: "pi_123"}
	svc := newPaymentsService(t, db, stripeCap, &stubCapturer{})

	userID := uuid.New()
	order := seedOrder(t, db, userID, "50.00", enums.PaymentStatusPaid)

	_, err := svc.ProcessCardPayment(context.Background(), userID, CardPaymentRequest{
		OrderID:         order.ID,
		PaymentMethodID: "pm_card_visa",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Zero(t, stripeCap.calls)
	assert.Zero(t, paymentCount(t, db, order.ID))
}

type staleOrderFinder struct {
	order *models.Order
}

func (s staleOrderFinder) FindByIDForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.order, nil
}

// A capture that loses the guarded update race must not write a second
// ledger row even though it read the order as pending.
func TestProcessCardPaymentLosingRaceRecordsNothing(t *testing.T) {
	db := setupPaymentsTestDB(t)

	userID := uuid.New()
	order := seedOrder(t, db, userID, "50.00", enums.PaymentStatusPaid)

	stale := *order
	stale.PaymentStatus = enums.PaymentStatusPending

	stripeCap := &stubCapturer{txnID: "pi_duplicate"}
	svc, err := NewService(ServiceParams{
		PaymentRepo:    NewRepository(db),
		OrderRepo:      staleOrderFinder{order: &stale},
		TxRunner:       gormTxRunner{db: db},
		StripeCapturer: stripeCap,
		PayPalCapturer: &stubCapturer{},
	})
	require.NoError(t, err)

	_, err = svc.ProcessCardPayment(context.Background(), userID, CardPaymentRequest{
		OrderID:         order.ID,
		PaymentMethodID: "pm_card_visa",
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
	assert.Zero(t, paymentCount(t, db, order.ID))
}

func TestProcessCardPaymentValidatesInput(t *testing.T) {
	db := setupPaymentsTestDB(t)
	svc := newPaymentsService(t, db, &stubCapturer{}, &stubCapturer{})

	_, err := svc.ProcessCardPayment(context.Background(), uuid.New(), CardPaymentRequest{
		OrderID:         uuid.Nil,
		PaymentMethodID: "pm_card_visa",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	_, err = svc.ProcessCardPayment(context.Background(), uuid.New(), CardPaymentRequest{
		OrderID:         uuid.New(),
		PaymentMethodID: "",
	})
	typed = pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}
