package controllers

import (
	"net/http"

	"github.com/avalenz-dev/storefront-backend/api/responses"
	"github.com/avalenz-dev/storefront-backend/api/validators"
	paymentsvc "github.com/avalenz-dev/storefront-backend/internal/payments"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

// StripePayment captures a card payment for the caller's order.
func StripePayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		uid, ok := callerID(w, r, logg)
		if !ok {
			return
		}

		var body paymentsvc.CardPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessCardPayment(r.Context(), uid, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// PayPalPayment records a wallet capture for the caller's order.
func PayPalPayment(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment service unavailable"))
			return
		}

		uid, ok := callerID(w, r, logg)
		if !ok {
			return
		}

		var body paymentsvc.WalletPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessWalletPayment(r.Context(), uid, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
