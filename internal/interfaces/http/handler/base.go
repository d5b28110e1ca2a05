package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/billing"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/interfaces/http/dto"
	"github.com/webconf/checkout/internal/interfaces/http/middleware"
)

// BaseHandler provides the response and error-mapping utilities shared
// by all handlers
type BaseHandler struct {
	logger *zap.Logger
}

// NewBaseHandler creates a base handler
func NewBaseHandler(logger *zap.Logger) BaseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return BaseHandler{logger: logger}
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// BindError sends a 400 for a failed request binding, with per-field
// details when the validator produced them
func (h *BaseHandler) BindError(c *gin.Context, err error, message string) {
	c.JSON(http.StatusBadRequest, middleware.BindingErrorResponse(err, message))
}

// HandleError maps an error to its HTTP response. Domain errors carry
// their own code; validation errors surface field details; upstream
// provider failures answer as gateway errors.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(dto.ErrCodeValidation, "Validation failed", []*shared.ValidationError{validationErr}))
		return
	}
	var validationErrs shared.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(dto.ErrCodeValidation, "Validation failed", validationErrs))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.HTTPStatus(domainErr.Code), dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	if status, ok := upstreamStatus(err); ok {
		h.logger.Warn("upstream provider failure",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, dto.NewErrorResponse(dto.ErrCodeExternalService, "Upstream provider failure"))
		return
	}

	h.logger.Error("unhandled error",
		zap.String("path", c.FullPath()),
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "Internal server error"))
}

// upstreamStatus classifies payment-provider and tax-authority failures
func upstreamStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, ordering.ErrGatewayUnavailable),
		errors.Is(err, billing.ErrTaxAuthUnavailable):
		return http.StatusServiceUnavailable, true
	case errors.Is(err, ordering.ErrGatewayRequestFailed),
		errors.Is(err, ordering.ErrGatewayInvalidResponse),
		errors.Is(err, ordering.ErrGatewayResourceNotFound),
		errors.Is(err, ordering.ErrGatewayNotConfigured),
		errors.Is(err, billing.ErrTaxAuthAuthentication),
		errors.Is(err, billing.ErrTaxAuthRejected):
		return http.StatusBadGateway, true
	}
	return 0, false
}

// bindFilter parses pagination query parameters into a repository filter
func bindFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}
	filter := shared.DefaultFilter()
	if req.Page > 0 {
		filter.Page = req.Page
	}
	if req.PageSize > 0 {
		filter.PageSize = req.PageSize
	}
	if req.OrderBy != "" {
		filter.OrderBy = req.OrderBy
	}
	if req.OrderDir != "" {
		filter.OrderDir = req.OrderDir
	}
	filter.Search = req.Search
	return filter, nil
}
