package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identityapp "github.com/webconf/checkout/internal/application/identity"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/dto"
)

func newCustomerRouter(registry CustomerRegistry, customer *identity.Customer) *gin.Engine {
	h := NewCustomerHandler(registry, nil)
	router := gin.New()
	router.POST("/customers", h.Register)
	if customer != nil {
		router.GET("/customers/me", authenticated(customer), h.Me)
	} else {
		router.GET("/customers/me", h.Me)
	}
	return router
}

func registerBody() string {
	return `{
		"email": "ada@example.com",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"identity_document_type": "DNI",
		"identity_document": "12345678"
	}`
}

func TestRegister(t *testing.T) {
	registry := &fakeCustomerRegistry{
		registered: &identityapp.RegisterCustomerResponse{
			Customer: identityapp.CustomerResponse{Email: "ada@example.com"},
			Token:    "signed-link-token",
		},
	}
	router := newCustomerRouter(registry, nil)

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(registerBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed-link-token")
}

func TestRegister_InvalidBody(t *testing.T) {
	router := newCustomerRouter(&fakeCustomerRegistry{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"email": "not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	registry := &fakeCustomerRegistry{err: shared.NewDomainError("ALREADY_EXISTS", "Email already registered")}
	router := newCustomerRouter(registry, nil)

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(registerBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
}

func TestMe(t *testing.T) {
	customer := testCustomer()
	registry := &fakeCustomerRegistry{
		customer: &identityapp.CustomerResponse{ID: customer.ID, Email: customer.Email},
	}
	router := newCustomerRouter(registry, customer)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/me", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), customer.Email)
}

func TestMe_Unauthenticated(t *testing.T) {
	router := newCustomerRouter(&fakeCustomerRegistry{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/customers/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
