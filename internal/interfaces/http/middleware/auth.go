package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/interfaces/http/dto"
)

const customerKey = "customer"

// CustomerAuthenticator resolves a link token to its customer
type CustomerAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Customer, error)
}

// CustomerAuth authenticates requests with the signed link token,
// accepted either as a bearer header or as a token query parameter so
// emailed links work without a client
func CustomerAuth(authenticator CustomerAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}

		customer, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid or expired token"))
			return
		}

		c.Set(customerKey, customer)
		c.Next()
	}
}

// GetCustomer returns the authenticated customer, if any
func GetCustomer(c *gin.Context) (*identity.Customer, bool) {
	value, ok := c.Get(customerKey)
	if !ok {
		return nil, false
	}
	customer, ok := value.(*identity.Customer)
	return customer, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
