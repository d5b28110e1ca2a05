package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/webconf/checkout/internal/application/identity"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/middleware"
)

// CustomerRegistry is the slice of the identity application service the
// handler needs
type CustomerRegistry interface {
	Register(ctx context.Context, req identityapp.RegisterCustomerRequest) (*identityapp.RegisterCustomerResponse, error)
	GetByID(ctx context.Context, customerID uuid.UUID) (*identityapp.CustomerResponse, error)
}

// CustomerHandler serves customer registration and profile access
type CustomerHandler struct {
	BaseHandler
	customers CustomerRegistry
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(customers CustomerRegistry, logger *zap.Logger) *CustomerHandler {
	return &CustomerHandler{
		BaseHandler: NewBaseHandler(logger),
		customers:   customers,
	}
}

// Register handles POST /customers. Registration is idempotent on the
// (email, identity document) pair and always answers with a fresh link
// token.
func (h *CustomerHandler) Register(c *gin.Context) {
	var req identityapp.RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid registration payload")
		return
	}

	resp, err := h.customers.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Me handles GET /customers/me for the authenticated customer
func (h *CustomerHandler) Me(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}
	resp, err := h.customers.GetByID(c.Request.Context(), customer.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
