package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
)

// Repository exposes the persistence operations for payment capture.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (int64, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// MarkOrderPaid flips payment_status pending→paid and reports the affected
// row count. A zero count means another capture already won the race.
func (r *repository) MarkOrderPaid(ctx context.Context, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, enums.PaymentStatusPending).
		Update("payment_status", enums.PaymentStatusPaid)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}
