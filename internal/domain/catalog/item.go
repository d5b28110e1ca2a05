package catalog

import (
	"encoding/json"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

// ItemKind distinguishes event passes from addons (merchandise, dinners, etc.)
type ItemKind string

const (
	ItemKindPass  ItemKind = "PASS"
	ItemKindAddon ItemKind = "ADDON"
)

// IsValid checks if the kind is a valid ItemKind
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindPass, ItemKindAddon:
		return true
	}
	return false
}

// String returns the string representation of ItemKind
func (k ItemKind) String() string {
	return string(k)
}

// OptionKind is the value kind customers must supply for an item option
type OptionKind string

const (
	OptionKindText  OptionKind = "TEXT"
	OptionKindEmail OptionKind = "EMAIL"
	OptionKindColor OptionKind = "COLOR"
)

// IsValid checks if the kind is a valid OptionKind
func (k OptionKind) IsValid() bool {
	switch k {
	case OptionKindText, OptionKindEmail, OptionKindColor:
		return true
	}
	return false
}

// Item is a purchasable catalog entry (a pass or an addon).
// Its price is snapshotted into order items at order creation, so price
// changes never affect already-created orders.
type Item struct {
	shared.BaseAggregateRoot
	Name          string          `gorm:"type:varchar(200);not null"`
	Kind          ItemKind        `gorm:"type:varchar(10);not null"`
	PriceAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PriceCurrency string          `gorm:"type:varchar(3);not null;default:'ARS'"`
	Stock         uint            `gorm:"not null;default:0"`
	Cancellable   bool            `gorm:"not null;default:true"`
	Options       []ItemOption    `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "items"
}

// NewItem creates a new catalog item
func NewItem(name string, kind ItemKind, price valueobject.Money, stock uint, cancellable bool) (*Item, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Item name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Item kind must be PASS or ADDON")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
	}

	return &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Kind:              kind,
		PriceAmount:       price.Amount(),
		PriceCurrency:     string(price.Currency()),
		Stock:             stock,
		Cancellable:       cancellable,
	}, nil
}

// Price returns the unit price as a Money value object
func (i *Item) Price() valueobject.Money {
	m, _ := valueobject.NewMoney(i.PriceAmount, valueobject.Currency(i.PriceCurrency))
	return m
}

// IsPass returns true for PASS items
func (i *Item) IsPass() bool {
	return i.Kind == ItemKindPass
}

// AddOption attaches a required option to the item
func (i *Item) AddOption(name string, kind OptionKind, allowedValues []string) (*ItemOption, error) {
	option, err := NewItemOption(i.ID, name, kind, allowedValues)
	if err != nil {
		return nil, err
	}
	i.Options = append(i.Options, *option)
	i.UpdatedAt = time.Now()
	return option, nil
}

// OptionByID returns the option with the given ID, or nil
func (i *Item) OptionByID(optionID uuid.UUID) *ItemOption {
	for idx := range i.Options {
		if i.Options[idx].ID == optionID {
			return &i.Options[idx]
		}
	}
	return nil
}

// ItemOption defines a required field customers must supply per matching
// order item, e.g. the attendee email for each pass.
type ItemOption struct {
	shared.BaseEntity
	ItemID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Name          string     `gorm:"type:varchar(50);not null"`
	Kind          OptionKind `gorm:"type:varchar(10);not null"`
	AllowedValues string     `gorm:"type:jsonb"` // JSON list of permitted values, empty = any
}

// TableName returns the table name for GORM
func (ItemOption) TableName() string {
	return "item_options"
}

// NewItemOption creates a new item option
func NewItemOption(itemID uuid.UUID, name string, kind OptionKind, allowedValues []string) (*ItemOption, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Option name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Option kind must be TEXT, EMAIL or COLOR")
	}

	encoded := ""
	if len(allowedValues) > 0 {
		data, err := json.Marshal(allowedValues)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_ALLOWED_VALUES", "Allowed values must be a list of strings")
		}
		encoded = string(data)
	}

	return &ItemOption{
		BaseEntity:    shared.NewBaseEntity(),
		ItemID:        itemID,
		Name:          name,
		Kind:          kind,
		AllowedValues: encoded,
	}, nil
}

// AllowList returns the decoded allow-list, or nil when any value is permitted
func (o *ItemOption) AllowList() []string {
	if o.AllowedValues == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(o.AllowedValues), &values); err != nil {
		return nil
	}
	return values
}

// ValidateValue checks a supplied value against the option's kind and allow-list
func (o *ItemOption) ValidateValue(value string) error {
	if value == "" {
		return shared.NewValidationError(o.Name, "value is required")
	}

	if o.Kind == OptionKindEmail {
		if _, err := mail.ParseAddress(value); err != nil {
			return shared.NewValidationError(o.Name, "value must be a valid email address")
		}
	}

	if allowed := o.AllowList(); len(allowed) > 0 {
		for _, candidate := range allowed {
			if candidate == value {
				return nil
			}
		}
		return shared.NewValidationError(o.Name, "value is not among the permitted values")
	}

	return nil
}
