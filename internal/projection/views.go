package projection

import (
	"context"
	"errors"
	"log"

	"foodorder/internal/domain"
	"foodorder/internal/pricing"
	orderrepo "foodorder/internal/repository/order"
)

type orderLister interface {
	ListByCustomer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error)
	ListByBranch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
}

type itemReader interface {
	GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
}

// Views serves the per-audience order listings. All listings come back
// newest first; the optional status narrows to one tab.
type Views struct {
	orders orderLister
	menu   itemReader
	logger *log.Logger
}

func NewViews(orders orderLister, menu itemReader, logger *log.Logger) *Views {
	return &Views{orders: orders, menu: menu, logger: logger}
}

// Customer lists the customer's own orders across all branches.
func (v *Views) Customer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error) {
	return v.orders.ListByCustomer(ctx, customerID, status)
}

// Branch lists the branch's incoming orders. Lines written before unit
// prices were frozen onto orders carry a zero price; those are filled back
// in from the current catalog so the branch screen still totals up.
func (v *Views) Branch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error) {
	orders, err := v.orders.ListByBranch(ctx, branchID, status)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		v.fillLegacyPrices(ctx, &orders[i])
	}
	return orders, nil
}

// Platform lists orders across all branches with optional branch and status
// filters, paginated.
func (v *Views) Platform(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error) {
	return v.orders.List(ctx, f)
}

func (v *Views) fillLegacyPrices(ctx context.Context, o *domain.Order) {
	for i := range o.Lines {
		line := &o.Lines[i]
		if line.UnitPriceCents != 0 {
			continue
		}
		item, err := v.menu.GetItem(ctx, line.ItemID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				v.logger.Printf("legacy price for line %s item %s: %v", line.ID, line.ItemID, err)
			}
			continue
		}
		line.UnitPriceCents = pricing.UnitPriceCents(*item, domain.Selections{
			Size:     line.Size,
			Base:     line.Base,
			Toppings: line.Toppings,
			AddOns:   line.AddOns,
		})
		line.TotalCents = line.UnitPriceCents * int64(line.Quantity)
	}
}
