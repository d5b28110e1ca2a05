package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

func createTestItem(t *testing.T, kind ItemKind, price float64) *Item {
	t.Helper()
	item, err := NewItem("Conference Pass", kind, valueobject.NewMoneyARSFromFloat(price), 100, true)
	require.NoError(t, err)
	return item
}

func TestItemKind_IsValid(t *testing.T) {
	tests := []struct {
		kind    ItemKind
		isValid bool
	}{
		{ItemKindPass, true},
		{ItemKindAddon, true},
		{ItemKind("TSHIRT"), false},
		{ItemKind(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.kind.IsValid())
		})
	}
}

func TestNewItem(t *testing.T) {
	item := createTestItem(t, ItemKindPass, 1500)

	assert.Equal(t, "Conference Pass", item.Name)
	assert.True(t, item.IsPass())
	assert.Equal(t, "1500.00 ARS", item.Price().String())
	assert.True(t, item.Cancellable)
}

func TestNewItem_Invalid(t *testing.T) {
	_, err := NewItem("", ItemKindPass, valueobject.ZeroARS(), 0, true)
	assert.Error(t, err)

	_, err = NewItem("Pass", ItemKind("BAD"), valueobject.ZeroARS(), 0, true)
	assert.Error(t, err)

	_, err = NewItem("Pass", ItemKindPass, valueobject.NewMoneyARSFromFloat(-10), 0, true)
	assert.Error(t, err)
}

func TestItem_AddOption(t *testing.T) {
	item := createTestItem(t, ItemKindPass, 1500)

	option, err := item.AddOption("Attendee email", OptionKindEmail, nil)
	require.NoError(t, err)
	assert.Len(t, item.Options, 1)
	assert.Equal(t, option.ID, item.OptionByID(option.ID).ID)
	assert.Nil(t, item.OptionByID(uuid.New()))
}

func TestItemOption_ValidateValue_Email(t *testing.T) {
	item := createTestItem(t, ItemKindPass, 1500)
	option, err := item.AddOption("Attendee email", OptionKindEmail, nil)
	require.NoError(t, err)

	assert.NoError(t, option.ValidateValue("a@b.com"))
	assert.Error(t, option.ValidateValue("not-an-email"))
	assert.Error(t, option.ValidateValue(""))
}

func TestItemOption_ValidateValue_AllowList(t *testing.T) {
	item := createTestItem(t, ItemKindAddon, 500)
	option, err := item.AddOption("Shirt color", OptionKindColor, []string{"black", "white"})
	require.NoError(t, err)

	assert.NoError(t, option.ValidateValue("black"))
	assert.Error(t, option.ValidateValue("red"))
	assert.Equal(t, []string{"black", "white"}, option.AllowList())
}

func TestItemOption_ValidateValue_Text(t *testing.T) {
	item := createTestItem(t, ItemKindAddon, 500)
	option, err := item.AddOption("Badge name", OptionKindText, nil)
	require.NoError(t, err)

	assert.NoError(t, option.ValidateValue("Ada Lovelace"))
}
