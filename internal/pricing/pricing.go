// Package pricing computes a configured item's unit price. Item templates are
// externally authored and may be incomplete, so missing numeric fields count
// as 0 and the function is total: it never fails, and identical inputs always
// produce identical results.
package pricing

import "foodorder/internal/domain"

// UnitPriceCents returns the unit price for one item configured with the
// given selections.
//
// The base component is the chosen size's price when a size was chosen, else
// the template's base price, else the first listed size's price. The last
// fallback covers templates that carry sizes but no base price: an
// unconfigured line still prices as the smallest offering instead of 0.
// On top of the base, the chosen base option and every selected topping and
// add-on contribute their own price.
func UnitPriceCents(item domain.MenuItem, sel domain.Selections) int64 {
	var price int64
	switch {
	case sel.Size != nil:
		price = sel.Size.PriceCents
	case item.BasePriceCents != 0:
		price = item.BasePriceCents
	case len(item.Sizes) > 0:
		price = item.Sizes[0].PriceCents
	}

	if sel.Base != nil {
		price += sel.Base.PriceCents
	}
	for _, t := range sel.Toppings {
		price += t.PriceCents
	}
	for _, a := range sel.AddOns {
		price += a.PriceCents
	}
	return price
}
