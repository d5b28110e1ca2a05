package catalog

import (
	"context"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/shared"
)

// DiscountCodeService handles discount code lookups
type DiscountCodeService struct {
	codeRepo catalog.DiscountCodeRepository
}

// NewDiscountCodeService creates a new DiscountCodeService
func NewDiscountCodeService(codeRepo catalog.DiscountCodeRepository) *DiscountCodeService {
	return &DiscountCodeService{codeRepo: codeRepo}
}

// FindByCode returns the codes matching a code string. Codes are not
// globally unique, so the result is a list; an empty code filter is
// rejected rather than dumping the whole table.
func (s *DiscountCodeService) FindByCode(ctx context.Context, code string) ([]DiscountCodeResponse, error) {
	if code == "" {
		return nil, shared.NewValidationError("code", "code filter is required")
	}

	codes, err := s.codeRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	responses := make([]DiscountCodeResponse, len(codes))
	for i := range codes {
		responses[i] = ToDiscountCodeResponse(&codes[i])
	}
	return responses, nil
}
