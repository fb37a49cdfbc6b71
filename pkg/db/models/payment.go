package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avalenz-dev/storefront-backend/pkg/enums"
)

// Payment is the append-only ledger entry written for each successful capture.
// Amount always equals the owning order's total at capture time.
type Payment struct {
	ID            uuid.UUID                 `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID                 `gorm:"column:order_id;type:uuid;not null;index"`
	Amount        decimal.Decimal           `gorm:"column:amount;type:numeric(12,2);not null"`
	Method        enums.PaymentMethod       `gorm:"column:method;type:text;not null"`
	ProviderTxnID string                    `gorm:"column:provider_txn_id;not null"`
	Status        enums.PaymentRecordStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
