package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/webconf/checkout/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// CustomerClaims are the JWT claims embedded in a customer link token.
// The pair (email, identity document) is the customer's credential; the
// token is handed out at registration and sent in order links, there is
// no password flow.
type CustomerClaims struct {
	jwt.RegisteredClaims
	Email            string `json:"email"`
	IdentityDocument string `json:"identity_document"`
}

// CustomerTokenService issues and validates customer link tokens
type CustomerTokenService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewCustomerTokenService creates a new CustomerTokenService
func NewCustomerTokenService(cfg config.JWTConfig) *CustomerTokenService {
	return &CustomerTokenService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.TokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// GenerateToken creates a signed token for the customer credentials
func (s *CustomerTokenService) GenerateToken(email, identityDocument string) (string, error) {
	if email == "" || identityDocument == "" {
		return "", ErrInvalidClaims
	}

	now := time.Now()
	claims := &CustomerClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   email,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email:            email,
		IdentityDocument: identityDocument,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a token and returns its claims
func (s *CustomerTokenService) ValidateToken(tokenString string) (*CustomerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.Email == "" || claims.IdentityDocument == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
