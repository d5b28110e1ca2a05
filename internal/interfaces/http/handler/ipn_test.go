package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderingapp "github.com/webconf/checkout/internal/application/ordering"
)

func newIPNRouter(processor NotificationProcessor) *gin.Engine {
	h := NewIPNHandler(processor, nil)
	router := gin.New()
	router.POST("/payments/ipn", h.Notify)
	return router
}

func TestNotify_QueryParameters(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionProcessed}
	router := newIPNRouter(processor)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn?topic=payment&id=123456", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.topics, 1)
	assert.Equal(t, "payment", processor.topics[0])
	assert.Equal(t, "123456", processor.ids[0])
}

func TestNotify_TypeAndDataIDQueryParameters(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionProcessed}
	router := newIPNRouter(processor)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn?type=payment&data.id=12345", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.topics, 1)
	assert.Equal(t, "payment", processor.topics[0])
	assert.Equal(t, "12345", processor.ids[0])
}

func TestNotify_WebhookBody(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionProcessed}
	router := newIPNRouter(processor)

	body := `{"type": "payment", "data": {"id": 123456}}`
	req := httptest.NewRequest(http.MethodPost, "/payments/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.topics, 1)
	assert.Equal(t, "payment", processor.topics[0])
	assert.Equal(t, "123456", processor.ids[0])
}

func TestNotify_WebhookBodyStringID(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionProcessed}
	router := newIPNRouter(processor)

	body := `{"type": "merchant_order", "data": {"id": "9876"}}`
	req := httptest.NewRequest(http.MethodPost, "/payments/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, processor.ids, 1)
	assert.Equal(t, "merchant_order", processor.topics[0])
	assert.Equal(t, "9876", processor.ids[0])
}

func TestNotify_MissingTopicAndID(t *testing.T) {
	processor := &fakeProcessor{}
	router := newIPNRouter(processor)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/payments/ipn", nil))

	// Unrecognized deliveries are acknowledged so the provider stops retrying
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, processor.topics)
}

func TestNotify_SkippedStaysAcknowledged(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionSkipped}
	router := newIPNRouter(processor)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn?topic=payment&id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotify_ProcessingFailureRequestsRedelivery(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionError, err: errBoom}
	router := newIPNRouter(processor)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn?topic=payment&id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotify_AnomalyIsAcknowledged(t *testing.T) {
	processor := &fakeProcessor{disposition: orderingapp.DispositionAnomaly, err: errBoom}
	router := newIPNRouter(processor)

	req := httptest.NewRequest(http.MethodPost, "/payments/ipn?topic=payment&id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Anomalies will not resolve with a redelivery, so answer 200
	assert.Equal(t, http.StatusOK, rec.Code)
}
