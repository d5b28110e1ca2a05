package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingapp "github.com/webconf/checkout/internal/application/billing"
	orderingapp "github.com/webconf/checkout/internal/application/ordering"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/dto"
)

func newOrderRouter(orders OrderCreator, cancellations OrderCanceller, customer *identity.Customer) *gin.Engine {
	h := NewOrderHandler(orders, cancellations, nil)
	router := gin.New()
	group := router.Group("/orders")
	if customer != nil {
		group.Use(authenticated(customer))
	}
	group.POST("", h.Create)
	group.GET("", h.List)
	group.GET("/:id", h.Get)
	group.POST("/:id/cancellation", h.CreateCancellation)
	group.GET("/:id/cancellation", h.GetCancellation)
	return router
}

func sampleOrder() *orderingapp.OrderResponse {
	return &orderingapp.OrderResponse{
		ID:          uuid.New(),
		Status:      "CREATED",
		Total:       decimal.NewFromInt(1900),
		Currency:    "ARS",
		CheckoutURL: "https://mp.example/checkout/pref-1",
	}
}

func TestCreateOrder(t *testing.T) {
	order := sampleOrder()
	orders := &fakeOrderCreator{created: order}
	router := newOrderRouter(orders, &fakeOrderCanceller{}, testCustomer())

	itemID := uuid.New()
	body := `{"items": [{"item_id": "` + itemID.String() + `", "quantity": 2}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), order.CheckoutURL)

	require.NotNil(t, orders.createReq)
	require.Len(t, orders.createReq.Items, 1)
	assert.Equal(t, itemID, orders.createReq.Items[0].ItemID)
	assert.Equal(t, 2, orders.createReq.Items[0].Quantity)
}

func TestCreateOrder_Unauthenticated(t *testing.T) {
	router := newOrderRouter(&fakeOrderCreator{}, &fakeOrderCanceller{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items": []}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateOrder_InvalidBody(t *testing.T) {
	router := newOrderRouter(&fakeOrderCreator{}, &fakeOrderCanceller{}, testCustomer())

	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items": [{"quantity": 0}]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	orders := &fakeOrderCreator{err: shared.NewDomainError("INSUFFICIENT_STOCK", "Not enough stock")}
	router := newOrderRouter(orders, &fakeOrderCanceller{}, testCustomer())

	body := `{"items": [{"item_id": "` + uuid.NewString() + `", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INSUFFICIENT_STOCK", resp.Error.Code)
}

func TestCreateOrder_GatewayUnavailable(t *testing.T) {
	orders := &fakeOrderCreator{err: ordering.ErrGatewayUnavailable}
	router := newOrderRouter(orders, &fakeOrderCanceller{}, testCustomer())

	body := `{"items": [{"item_id": "` + uuid.NewString() + `", "quantity": 1}]}`
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeExternalService, resp.Error.Code)
}

func TestListOrders(t *testing.T) {
	order := sampleOrder()
	orders := &fakeOrderCreator{orders: []orderingapp.OrderResponse{*order}}
	router := newOrderRouter(orders, &fakeOrderCanceller{}, testCustomer())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), order.ID.String())
}

func TestGetOrder(t *testing.T) {
	order := sampleOrder()
	orders := &fakeOrderCreator{orders: []orderingapp.OrderResponse{*order}}
	router := newOrderRouter(orders, &fakeOrderCanceller{}, testCustomer())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+order.ID.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newOrderRouter(&fakeOrderCreator{}, &fakeOrderCanceller{}, testCustomer())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateCancellation(t *testing.T) {
	orderID := uuid.New()
	cancellations := &fakeOrderCanceller{
		cancellation: &billingapp.CancellationResponse{
			ID:      uuid.New(),
			OrderID: orderID,
			Status:  "COMPLETED",
			Total:   decimal.NewFromInt(1900),
		},
	}
	router := newOrderRouter(&fakeOrderCreator{}, cancellations, testCustomer())

	body := `{"reason": "No puedo asistir"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID.String()+"/cancellation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "COMPLETED")

	require.NotNil(t, cancellations.cancelReq)
	assert.Equal(t, "No puedo asistir", cancellations.cancelReq.Reason)
}

func TestCreateCancellation_MissingReason(t *testing.T) {
	router := newOrderRouter(&fakeOrderCreator{}, &fakeOrderCanceller{}, testCustomer())

	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/cancellation", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCancellation_AlreadyCancelled(t *testing.T) {
	cancellations := &fakeOrderCanceller{err: shared.NewDomainError("INVALID_STATE", "Order already has a cancellation")}
	router := newOrderRouter(&fakeOrderCreator{}, cancellations, testCustomer())

	body := `{"reason": "cambio de planes"}`
	req := httptest.NewRequest(http.MethodPost, "/orders/"+uuid.NewString()+"/cancellation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetCancellation(t *testing.T) {
	cancellations := &fakeOrderCanceller{
		cancellation: &billingapp.CancellationResponse{ID: uuid.New(), Status: "REQUESTED"},
	}
	router := newOrderRouter(&fakeOrderCreator{}, cancellations, testCustomer())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString()+"/cancellation", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "REQUESTED")
}
