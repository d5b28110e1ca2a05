package shared

// DomainError is a business rule violation with a stable machine code.
// The HTTP layer maps codes to status codes; messages are for humans.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError builds a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Errors shared across bounded contexts. State and conflict errors are
// raised inline with contextual messages instead.
var (
	ErrNotFound        = NewDomainError("NOT_FOUND", "Resource not found")
	ErrUnauthorized    = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrInvalidCurrency = NewDomainError("INVALID_CURRENCY", "Monetary amounts have mismatched currencies")
)

// ValidationError is a domain error carrying a pointer to the offending field.
// It is surfaced to API clients as a 400 with field-level details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// NewValidationError creates a validation error for a specific field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ValidationErrors aggregates multiple field-level validation failures
type ValidationErrors []*ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msg := e[0].Error()
	for _, v := range e[1:] {
		msg += "; " + v.Error()
	}
	return msg
}
