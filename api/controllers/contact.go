package controllers

import (
	"net/http"

	"github.com/avalenz-dev/storefront-backend/api/responses"
	"github.com/avalenz-dev/storefront-backend/api/validators"
	contactsvc "github.com/avalenz-dev/storefront-backend/internal/contact"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
	"github.com/avalenz-dev/storefront-backend/pkg/logger"
)

// Contact relays a contact form submission to the support channel.
func Contact(svc contactsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var body contactsvc.ContactRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SendMessage(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "received"})
	}
}
