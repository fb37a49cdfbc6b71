package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contactsvc "github.com/avalenz-dev/storefront-backend/internal/contact"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

type stubContactService struct {
	req   contactsvc.ContactRequest
	err   error
	calls int
}

func (s *stubContactService) SendMessage(ctx context.Context, req contactsvc.ContactRequest) error {
	s.calls++
	s.req = req
	return s.err
}

func TestContactAcceptsSubmission(t *testing.T) {
	stub := &stubContactService{}

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","subject":"Hi","message":"Hello there"}`)
	req := httptest.NewRequest(http.MethodPost, "/contact", body)
	rec := httptest.NewRecorder()
	Contact(stub, testLogger()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "Ada", stub.req.Name)
	assert.Equal(t, "Hello there", stub.req.Message)
}

func TestContactMissingFieldsIs400(t *testing.T) {
	stub := &stubContactService{}

	body := bytes.NewBufferString(`{"name":"Ada"}`)
	req := httptest.NewRequest(http.MethodPost, "/contact", body)
	rec := httptest.NewRecorder()
	Contact(stub, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, stub.calls)
}

func TestContactServiceValidationIs400(t *testing.T) {
	stub := &stubContactService{
		err: pkgerrors.New(pkgerrors.CodeValidation, "name, email, and message are required"),
	}

	body := bytes.NewBufferString(`{"name":"  ","email":"ada@example.com","message":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/contact", body)
	rec := httptest.NewRecorder()
	Contact(stub, testLogger()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
