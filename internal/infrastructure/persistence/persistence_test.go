package persistence

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/identity"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every session on the same in-memory
	// database and serializes concurrent writers
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(db))
	return db
}

func newTestItem(t *testing.T, name string, amount int64) *catalog.Item {
	t.Helper()
	item, err := catalog.NewItem(name, catalog.ItemKindPass, valueobject.NewMoneyARS(decimal.NewFromInt(amount)), 100, true)
	require.NoError(t, err)
	return item
}

func newTestCustomer(t *testing.T, email string) *identity.Customer {
	t.Helper()
	customer, err := identity.NewCustomer(email, "Ada", "Lovelace", identity.IdentityDocumentDNI, "12345678", "")
	require.NoError(t, err)
	return customer
}

// newTestOrder creates an order with one line for the given item and
// clears the creation event so repositories start from a clean slate
func newTestOrder(t *testing.T, customer *identity.Customer, item *catalog.Item) *ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(customer.ID, nil, "")
	require.NoError(t, err)
	_, err = order.AddItem(item, 1, nil)
	require.NoError(t, err)
	order.ClearDomainEvents()
	return order
}
