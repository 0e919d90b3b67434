package domain

import "time"

// OrderStatus is one node of the order lifecycle lattice. The lattice is
// strictly forward with Cancelled as the single absorbing failure state.
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "placed"
	StatusAccepted       OrderStatus = "accepted"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCompleted      OrderStatus = "completed"
	StatusCancelled      OrderStatus = "cancelled"
)

// ParseOrderStatus validates a wire value against the known statuses.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusPlaced, StatusAccepted, StatusOutForDelivery, StatusDelivered, StatusCompleted, StatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// IsTerminal reports whether no transition leaves the status.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type ShippingMethod string

const (
	ShippingGround ShippingMethod = "ground"
	ShippingAerial ShippingMethod = "aerial"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentBankTransfer   PaymentMethod = "bank_transfer"
)

// Receiver is the delivery contact frozen onto the order at checkout.
type Receiver struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderLine is a frozen copy of a CartLine taken at checkout. It never
// re-reads live pricing; TotalCents is quantity times the frozen unit price.
type OrderLine struct {
	ID             string   `json:"id"`
	OrderID        string   `json:"orderId"`
	ItemID         string   `json:"itemId"`
	DisplayName    string   `json:"displayName"`
	Image          string   `json:"image,omitempty"`
	Note           string   `json:"note,omitempty"`
	Size           *Option  `json:"size,omitempty"`
	Base           *Option  `json:"base,omitempty"`
	Toppings       []Option `json:"toppings,omitempty"`
	AddOns         []Option `json:"addOns,omitempty"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int64    `json:"unitPriceCents"`
	TotalCents     int64    `json:"totalCents"`
}

// Order is created once by checkout and immutable afterwards except for its
// status. TotalCents == SubtotalCents + ShippingFeeCents for its whole life.
type Order struct {
	ID               string         `json:"id"`
	CustomerID       string         `json:"customerId"`
	BranchID         string         `json:"branchId"`
	Receiver         Receiver       `json:"receiver"`
	ShippingMethod   ShippingMethod `json:"shippingMethod"`
	PaymentMethod    PaymentMethod  `json:"paymentMethod"`
	Lines            []OrderLine    `json:"items"`
	SubtotalCents    int64          `json:"subtotalCents"`
	ShippingFeeCents int64          `json:"shippingFeeCents"`
	TotalCents       int64          `json:"totalCents"`
	Status           OrderStatus    `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type statusEdge struct {
	from OrderStatus
	to   OrderStatus
}

// edgeRoles lists, per legal edge, the roles that own it. Customer
// cancellation stays legal through Accepted while branch cancellation is
// Placed-only; admin carries write parity with the branch role.
var edgeRoles = map[statusEdge][]Role{
	{StatusPlaced, StatusAccepted}:          {RoleBranch, RoleAdmin},
	{StatusAccepted, StatusOutForDelivery}:  {RoleBranch, RoleAdmin},
	{StatusOutForDelivery, StatusDelivered}: {RoleBranch, RoleAdmin},
	{StatusDelivered, StatusCompleted}:      {RoleCustomer},
	{StatusPlaced, StatusCancelled}:         {RoleCustomer, RoleBranch, RoleAdmin},
	{StatusAccepted, StatusCancelled}:       {RoleCustomer},
}

// CanTransition reports whether the edge from->to exists and the role owns it.
// Terminal statuses have no outgoing edges.
func CanTransition(from, to OrderStatus, role Role) bool {
	roles, ok := edgeRoles[statusEdge{from, to}]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
