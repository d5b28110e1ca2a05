package catalog

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

// DiscountScope determines whether a code discounts the whole order or
// only the order items whose catalog item is in the code's item set.
type DiscountScope string

const (
	DiscountScopeOrder DiscountScope = "ORDER"
	DiscountScopeItem  DiscountScope = "ITEM"
)

// IsValid checks if the scope is a valid DiscountScope
func (s DiscountScope) IsValid() bool {
	switch s {
	case DiscountScopeOrder, DiscountScopeItem:
		return true
	}
	return false
}

// DiscountRuleKind tags the two representable discount rules
type DiscountRuleKind string

const (
	DiscountRuleFixed      DiscountRuleKind = "FIXED"
	DiscountRulePercentage DiscountRuleKind = "PERCENTAGE"
)

// DiscountRule is the validated "fixed amount XOR percentage" variant.
// Construct it through NewFixedDiscount or NewPercentageDiscount so an
// invalid combination cannot exist.
type DiscountRule struct {
	kind       DiscountRuleKind
	fixedValue valueobject.Money
	percentage decimal.Decimal
}

// NewFixedDiscount creates a fixed-amount discount rule
func NewFixedDiscount(value valueobject.Money) (DiscountRule, error) {
	if value.IsNegative() {
		return DiscountRule{}, shared.NewDomainError("INVALID_DISCOUNT", "Fixed discount cannot be negative")
	}
	return DiscountRule{kind: DiscountRuleFixed, fixedValue: value}, nil
}

// NewPercentageDiscount creates a percentage discount rule (0-100 inclusive)
func NewPercentageDiscount(percentage decimal.Decimal) (DiscountRule, error) {
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return DiscountRule{}, shared.NewDomainError("INVALID_DISCOUNT", "Percentage must be between 0 and 100")
	}
	return DiscountRule{kind: DiscountRulePercentage, percentage: percentage}, nil
}

// Kind returns the rule variant tag
func (r DiscountRule) Kind() DiscountRuleKind {
	return r.kind
}

// FixedValue returns the fixed amount for FIXED rules
func (r DiscountRule) FixedValue() valueobject.Money {
	return r.fixedValue
}

// Percentage returns the percentage for PERCENTAGE rules
func (r DiscountRule) Percentage() decimal.Decimal {
	return r.percentage
}

// Amount computes the discount amount for a given base total.
// A fixed rule yields its value regardless of the base; a percentage rule
// yields base*pct/100. The zero rule yields zero.
func (r DiscountRule) Amount(base valueobject.Money) (valueobject.Money, error) {
	switch r.kind {
	case DiscountRuleFixed:
		if r.fixedValue.Currency() != base.Currency() {
			return valueobject.Money{}, shared.ErrInvalidCurrency
		}
		return r.fixedValue, nil
	case DiscountRulePercentage:
		return base.CalculatePercentage(r.percentage), nil
	default:
		return valueobject.Zero(base.Currency()), nil
	}
}

// RestrictionKind is the kind of redemption restriction on a discount code
type RestrictionKind string

const (
	RestrictionKindDate   RestrictionKind = "DATE"   // redeemable until a date (RFC 3339)
	RestrictionKindStock  RestrictionKind = "STOCK"  // limited number of redemptions
	RestrictionKindEmail  RestrictionKind = "EMAIL"  // restricted to one customer email
	RestrictionKindDomain RestrictionKind = "DOMAIN" // restricted to an email domain
)

// DiscountCodeRestriction limits who may redeem a code and until when.
// The value column stores a single JSON scalar whose meaning depends on Kind.
type DiscountCodeRestriction struct {
	shared.BaseEntity
	DiscountCodeID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind           RestrictionKind `gorm:"type:varchar(10);not null"`
	Value          string          `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (DiscountCodeRestriction) TableName() string {
	return "discount_code_restrictions"
}

// RestrictionContext carries the facts a restriction is checked against
type RestrictionContext struct {
	CustomerEmail    string
	Now              time.Time
	RedemptionsSoFar int64
}

// Check evaluates the restriction against the redemption context
func (r *DiscountCodeRestriction) Check(ctx RestrictionContext) error {
	var value any
	if err := json.Unmarshal([]byte(r.Value), &value); err != nil {
		return shared.NewDomainError("INVALID_RESTRICTION", "Restriction value is not a JSON scalar")
	}

	switch r.Kind {
	case RestrictionKindDate:
		raw, ok := value.(string)
		if !ok {
			return shared.NewDomainError("INVALID_RESTRICTION", "Date restriction value must be a string")
		}
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return shared.NewDomainError("INVALID_RESTRICTION", "Date restriction value must be RFC 3339")
		}
		if ctx.Now.After(deadline) {
			return shared.NewValidationError("discount-code", "discount code has expired")
		}
	case RestrictionKindStock:
		limit, ok := value.(float64)
		if !ok {
			return shared.NewDomainError("INVALID_RESTRICTION", "Stock restriction value must be a number")
		}
		if ctx.RedemptionsSoFar >= int64(limit) {
			return shared.NewValidationError("discount-code", "discount code has no redemptions left")
		}
	case RestrictionKindEmail:
		allowed, ok := value.(string)
		if !ok {
			return shared.NewDomainError("INVALID_RESTRICTION", "Email restriction value must be a string")
		}
		if !strings.EqualFold(allowed, ctx.CustomerEmail) {
			return shared.NewValidationError("discount-code", "discount code is not valid for this customer")
		}
	case RestrictionKindDomain:
		domain, ok := value.(string)
		if !ok {
			return shared.NewDomainError("INVALID_RESTRICTION", "Domain restriction value must be a string")
		}
		at := strings.LastIndex(ctx.CustomerEmail, "@")
		if at < 0 || !strings.EqualFold(ctx.CustomerEmail[at+1:], domain) {
			return shared.NewValidationError("discount-code", "discount code is not valid for this email domain")
		}
	}

	return nil
}

// DiscountCode is a redeemable code carrying a discount rule and scope.
// Codes are filterable by their code string; the code is not globally unique.
type DiscountCode struct {
	shared.BaseAggregateRoot
	Code          string                    `gorm:"type:varchar(50);not null;index"`
	Description   string                    `gorm:"type:text"`
	Scope         DiscountScope             `gorm:"type:varchar(10);not null"`
	RuleKind      DiscountRuleKind          `gorm:"type:varchar(10);not null"`
	FixedAmount   decimal.Decimal           `gorm:"type:decimal(18,4)"`
	FixedCurrency string                    `gorm:"type:varchar(3)"`
	Percentage    decimal.Decimal           `gorm:"type:decimal(5,2)"`
	ItemIDs       []DiscountCodeItem        `gorm:"foreignKey:DiscountCodeID;constraint:OnDelete:CASCADE"`
	Restrictions  []DiscountCodeRestriction `gorm:"foreignKey:DiscountCodeID;constraint:OnDelete:CASCADE"`
}

// DiscountCodeItem links an ITEM-scope code to an applicable catalog item
type DiscountCodeItem struct {
	DiscountCodeID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ItemID         uuid.UUID `gorm:"type:uuid;primaryKey"`
}

// TableName returns the table name for GORM
func (DiscountCode) TableName() string {
	return "discount_codes"
}

// TableName returns the table name for GORM
func (DiscountCodeItem) TableName() string {
	return "discount_code_items"
}

// NewDiscountCode creates a new discount code.
// ITEM-scope codes require at least one applicable item.
func NewDiscountCode(code, description string, scope DiscountScope, rule DiscountRule, itemIDs []uuid.UUID) (*DiscountCode, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Discount code cannot be empty")
	}
	if !scope.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCOPE", "Discount scope must be ORDER or ITEM")
	}
	if rule.Kind() == "" {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount rule is required")
	}
	if scope == DiscountScopeItem && len(itemIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_SCOPE", "ITEM-scope codes require at least one applicable item")
	}

	dc := &DiscountCode{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Description:       description,
		Scope:             scope,
		RuleKind:          rule.Kind(),
	}

	switch rule.Kind() {
	case DiscountRuleFixed:
		dc.FixedAmount = rule.FixedValue().Amount()
		dc.FixedCurrency = string(rule.FixedValue().Currency())
	case DiscountRulePercentage:
		dc.Percentage = rule.Percentage()
	}

	for _, itemID := range itemIDs {
		dc.ItemIDs = append(dc.ItemIDs, DiscountCodeItem{DiscountCodeID: dc.ID, ItemID: itemID})
	}

	return dc, nil
}

// Rule reconstructs the tagged discount rule from the stored columns
func (d *DiscountCode) Rule() DiscountRule {
	switch d.RuleKind {
	case DiscountRuleFixed:
		m, _ := valueobject.NewMoney(d.FixedAmount, valueobject.Currency(d.FixedCurrency))
		return DiscountRule{kind: DiscountRuleFixed, fixedValue: m}
	case DiscountRulePercentage:
		return DiscountRule{kind: DiscountRulePercentage, percentage: d.Percentage}
	default:
		return DiscountRule{}
	}
}

// AppliesToItem reports whether an ITEM-scope code covers the given item.
// ORDER-scope codes never apply per-item.
func (d *DiscountCode) AppliesToItem(itemID uuid.UUID) bool {
	if d.Scope != DiscountScopeItem {
		return false
	}
	for _, link := range d.ItemIDs {
		if link.ItemID == itemID {
			return true
		}
	}
	return false
}

// CheckRestrictions evaluates every restriction attached to the code
func (d *DiscountCode) CheckRestrictions(ctx RestrictionContext) error {
	for idx := range d.Restrictions {
		if err := d.Restrictions[idx].Check(ctx); err != nil {
			return err
		}
	}
	return nil
}
