package ordering

import (
	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/shared/valueobject"
)

// Pricing is the pure order pricing engine. Given an order's snapshotted
// lines and an optional discount code, it computes the payable total.
// It reads nothing but its arguments and mutates nothing.

// BaseTotal returns the sum of price x quantity over all lines.
// Mixing currencies across lines is an error.
func (o *Order) BaseTotal() (valueobject.Money, error) {
	if len(o.Items) == 0 {
		return valueobject.Zero(valueobject.Currency(o.TotalCurrency)), nil
	}

	total := valueobject.Zero(o.Items[0].Price().Currency())
	for idx := range o.Items {
		sum, err := total.Add(o.Items[idx].BaseTotal())
		if err != nil {
			return valueobject.Money{}, err
		}
		total = sum
	}
	return total, nil
}

// DiscountTotal computes the discount granted by the code:
//   - nil code: zero
//   - ORDER scope: the rule applied once to the whole base total
//   - ITEM scope: the rule applied to each line whose catalog item is in
//     the code's item set; other lines are unaffected
func (o *Order) DiscountTotal(code *catalog.DiscountCode) (valueobject.Money, error) {
	base, err := o.BaseTotal()
	if err != nil {
		return valueobject.Money{}, err
	}
	if code == nil {
		return valueobject.Zero(base.Currency()), nil
	}

	switch code.Scope {
	case catalog.DiscountScopeOrder:
		return code.Rule().Amount(base)
	case catalog.DiscountScopeItem:
		discount := valueobject.Zero(base.Currency())
		for idx := range o.Items {
			if !code.AppliesToItem(o.Items[idx].ItemID) {
				continue
			}
			lineDiscount, err := code.Rule().Amount(o.Items[idx].BaseTotal())
			if err != nil {
				return valueobject.Money{}, err
			}
			discount, err = discount.Add(lineDiscount)
			if err != nil {
				return valueobject.Money{}, err
			}
		}
		return discount, nil
	default:
		return valueobject.Zero(base.Currency()), nil
	}
}

// ComputeTotal prices the order under the given discount code, clamped at
// zero. Full decimal precision is kept internally; callers round to two
// decimals at output boundaries only.
func (o *Order) ComputeTotal(code *catalog.DiscountCode) (valueobject.Money, error) {
	base, err := o.BaseTotal()
	if err != nil {
		return valueobject.Money{}, err
	}
	discount, err := o.DiscountTotal(code)
	if err != nil {
		return valueobject.Money{}, err
	}
	total, err := base.Subtract(discount)
	if err != nil {
		return valueobject.Money{}, err
	}
	return total.ClampZero(), nil
}

// Price computes and stores the order total. Called once by the creation
// flow; the stored total is what clients see afterwards, so re-fetching an
// order never re-prices it against since-changed catalog state.
func (o *Order) Price(code *catalog.DiscountCode) error {
	total, err := o.ComputeTotal(code)
	if err != nil {
		return err
	}
	o.TotalAmount = total.Amount()
	o.TotalCurrency = string(total.Currency())
	return nil
}
