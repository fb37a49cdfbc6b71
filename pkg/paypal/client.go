package paypal

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

// Client records PayPal wallet captures. The wallet flow completes on the
// client side, so the server accepts the approved payment id as the provider
// transaction reference rather than re-confirming it with PayPal.
type Client struct {
	logg *logger.Logger
}

func NewClient(logg *logger.Logger) *Client {
	return &Client{logg: logg}
}

// Capture validates the approved wallet payment id and returns it as the
// provider transaction id.
func (c *Client) Capture(ctx context.Context, amount decimal.Decimal, paymentID string) (string, error) {
	if c == nil {
		return "", errors.New("paypal client not initialized")
	}

	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return "", errors.New("paypal payment id is required")
	}
	if !amount.IsPositive() {
		return "", errors.New("charge amount must be positive")
	}

	if c.logg != nil {
		logCtx := c.logg.WithFields(ctx, map[string]any{
			"payment_id": paymentID,
			"amount":     amount.StringFixed(2),
		})
		c.logg.Info(logCtx, "paypal wallet capture accepted")
	}
	return paymentID, nil
}
