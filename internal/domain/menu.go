package domain

import "time"

// Option is a priced choice on a menu item (a size, a base, a topping or an
// add-on). Prices are cent amounts in the shop currency.
type Option struct {
	Label      string `json:"label"`
	PriceCents int64  `json:"priceCents"`
}

// ExtrasKind tags which multi-select path a menu item offers. An item offers
// toppings or add-ons, never both; the kind is fixed on the template and never
// inferred from a request.
type ExtrasKind string

const (
	ExtrasNone     ExtrasKind = "none"
	ExtrasToppings ExtrasKind = "toppings"
	ExtrasAddOns   ExtrasKind = "addOns"
)

// MenuItem is an externally authored item template. Numeric fields may be
// missing or zero; pricing treats those as 0 rather than a fault.
type MenuItem struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Image          string     `json:"image,omitempty"`
	BasePriceCents int64      `json:"basePriceCents"`
	Sizes          []Option   `json:"sizes,omitempty"`
	Bases          []Option   `json:"bases,omitempty"`
	ExtrasKind     ExtrasKind `json:"extrasKind"`
	Extras         []Option   `json:"extras,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Branch is a fulfillment location. Carts and orders are partitioned by branch.
type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// BranchCatalogEntry maps an item template onto one branch's menu. The core
// reads it as an input filter and never mutates it.
type BranchCatalogEntry struct {
	BranchID  string `json:"branchId"`
	ItemID    string `json:"itemId"`
	Offered   bool   `json:"offered"`
	StockHint int    `json:"stockHint"`
}
