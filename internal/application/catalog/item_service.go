package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/shared"
)

// ItemService handles catalog item read operations
type ItemService struct {
	itemRepo catalog.ItemRepository
}

// NewItemService creates a new ItemService
func NewItemService(itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

// GetByID retrieves a catalog item by ID
func (s *ItemService) GetByID(ctx context.Context, itemID uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	response := ToItemResponse(item)
	return &response, nil
}

// List retrieves the catalog with pagination
func (s *ItemService) List(ctx context.Context, filter shared.Filter) ([]ItemResponse, int64, error) {
	items, err := s.itemRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.itemRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ItemResponse, len(items))
	for i := range items {
		responses[i] = ToItemResponse(&items[i])
	}
	return responses, total, nil
}
