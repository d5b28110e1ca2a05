package dto

import "net/http"

// Error codes produced by the interface layer itself; domain errors
// carry their own codes
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeInternal        = "INTERNAL"
	ErrCodeExternalService = "EXTERNAL_SERVICE"
)

// HTTPStatus maps an error code to its HTTP status. Domain error codes
// not listed here are business rule rejections, answered as 400.
func HTTPStatus(code string) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case "ALREADY_EXISTS", "CONCURRENCY_CONFLICT", "INVALID_STATE", "INSUFFICIENT_STOCK":
		return http.StatusConflict
	case ErrCodeExternalService:
		return http.StatusBadGateway
	case ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
