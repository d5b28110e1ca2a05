package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	catalogapp "github.com/webconf/checkout/internal/application/catalog"
	"github.com/webconf/checkout/internal/domain/shared"
)

// ItemReader is the slice of the catalog application service the
// handler needs
type ItemReader interface {
	GetByID(ctx context.Context, itemID uuid.UUID) (*catalogapp.ItemResponse, error)
	List(ctx context.Context, filter shared.Filter) ([]catalogapp.ItemResponse, int64, error)
}

// DiscountCodeFinder looks up discount codes by their code string
type DiscountCodeFinder interface {
	FindByCode(ctx context.Context, code string) ([]catalogapp.DiscountCodeResponse, error)
}

// CatalogHandler serves the public catalog: items with their options and
// discount code lookups
type CatalogHandler struct {
	BaseHandler
	items ItemReader
	codes DiscountCodeFinder
}

// NewCatalogHandler creates a catalog handler
func NewCatalogHandler(items ItemReader, codes DiscountCodeFinder, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		BaseHandler: NewBaseHandler(logger),
		items:       items,
		codes:       codes,
	}
}

// ListItems handles GET /items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	filter, err := bindFilter(c)
	if err != nil {
		h.BindError(c, err, "Invalid pagination parameters")
		return
	}

	items, total, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetItem handles GET /items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item id")
		return
	}

	item, err := h.items.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// FindDiscountCode handles GET /discount-codes?code=...
func (h *CatalogHandler) FindDiscountCode(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		h.BadRequest(c, "code parameter is required")
		return
	}

	codes, err := h.codes.FindByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, codes)
}
