package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avalenz-dev/storefront-backend/api/middleware"
	"github.com/avalenz-dev/storefront-backend/api/responses"
	"github.com/avalenz-dev/storefront-backend/api/validators"
	ordersvc "github.com/avalenz-dev/storefront-backend/internal/orders"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

// CreateOrder places a new order for the authenticated caller.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		uid, ok := callerID(w, r, logg)
		if !ok {
			return
		}

		var body ordersvc.CreateOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateOrder(r.Context(), uid, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ListOrders returns the caller's orders, newest first.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		uid, ok := callerID(w, r, logg)
		if !ok {
			return
		}

		result, err := svc.ListOrders(r.Context(), uid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// callerID resolves the authenticated user id from the request context,
// writing the error response itself when the context is unusable.
func callerID(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
		return uuid.Nil, false
	}

	uid, err := uuid.Parse(userID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
		return uuid.Nil, false
	}
	return uid, true
}
