package domain

import "time"

// Selections is everything a customer picked while configuring an item. At
// most one size and one base; toppings and add-ons follow the template's
// ExtrasKind and are never both populated.
type Selections struct {
	Size     *Option  `json:"size,omitempty"`
	Base     *Option  `json:"base,omitempty"`
	Toppings []Option `json:"toppings,omitempty"`
	AddOns   []Option `json:"addOns,omitempty"`
	Note     string   `json:"note,omitempty"`
}

// CartLine is one configured item inside a (customer, branch) cart partition.
// Signature is derived from the item identity plus all selections; within one
// partition no two lines share a signature.
type CartLine struct {
	ID             string    `json:"id"`
	CustomerID     string    `json:"-"`
	BranchID       string    `json:"branchId"`
	ItemID         string    `json:"itemId"`
	DisplayName    string    `json:"displayName"`
	Image          string    `json:"image,omitempty"`
	Note           string    `json:"note,omitempty"`
	Size           *Option   `json:"size,omitempty"`
	Base           *Option   `json:"base,omitempty"`
	Toppings       []Option  `json:"toppings,omitempty"`
	AddOns         []Option  `json:"addOns,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Signature      string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// LineTotalCents is the frozen unit price times the current quantity.
func (l CartLine) LineTotalCents() int64 {
	return l.UnitPriceCents * int64(l.Quantity)
}
