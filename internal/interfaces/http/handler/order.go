package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	billingapp "github.com/webconf/checkout/internal/application/billing"
	orderingapp "github.com/webconf/checkout/internal/application/ordering"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/middleware"
)

// OrderCreator is the slice of the ordering application service the
// handler needs
type OrderCreator interface {
	Create(ctx context.Context, customer *identity.Customer, req orderingapp.CreateOrderRequest) (*orderingapp.OrderResponse, error)
	List(ctx context.Context, customer *identity.Customer) ([]orderingapp.OrderResponse, error)
	GetByID(ctx context.Context, customer *identity.Customer, orderID uuid.UUID) (*orderingapp.OrderResponse, error)
}

// OrderCanceller is the slice of the billing application service the
// handler needs
type OrderCanceller interface {
	Cancel(ctx context.Context, customer *identity.Customer, orderID uuid.UUID, req *billingapp.CancelOrderRequest) (*billingapp.CancellationResponse, error)
	GetByOrder(ctx context.Context, customer *identity.Customer, orderID uuid.UUID) (*billingapp.CancellationResponse, error)
}

// OrderHandler serves the checkout flow: creating orders and following
// them through payment and cancellation. All routes require the
// customer link token.
type OrderHandler struct {
	BaseHandler
	orders        OrderCreator
	cancellations OrderCanceller
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders OrderCreator, cancellations OrderCanceller, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		BaseHandler:   NewBaseHandler(logger),
		orders:        orders,
		cancellations: cancellations,
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}

	var req orderingapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid order payload")
		return
	}

	resp, err := h.orders.Create(c.Request.Context(), customer, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List handles GET /orders for the authenticated customer
func (h *OrderHandler) List(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}

	orders, err := h.orders.List(c.Request.Context(), customer)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	resp, err := h.orders.GetByID(c.Request.Context(), customer, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// CreateCancellation handles POST /orders/:id/cancellation
func (h *OrderHandler) CreateCancellation(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	var req billingapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err, "Invalid cancellation payload")
		return
	}

	resp, err := h.cancellations.Cancel(c.Request.Context(), customer, orderID, &req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// GetCancellation handles GET /orders/:id/cancellation
func (h *OrderHandler) GetCancellation(c *gin.Context) {
	customer, ok := middleware.GetCustomer(c)
	if !ok {
		h.HandleError(c, shared.ErrUnauthorized)
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order id")
		return
	}

	resp, err := h.cancellations.GetByOrder(c.Request.Context(), customer, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
