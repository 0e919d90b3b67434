package httpserver

import (
	"context"

	"foodorder/internal/domain"
	"foodorder/internal/messaging"
	"foodorder/internal/metrics"
	"foodorder/internal/projection"
	orderrepo "foodorder/internal/repository/order"
	cartsvc "foodorder/internal/service/cart"
	checkoutsvc "foodorder/internal/service/checkout"
)

// The handler layer depends on narrow interfaces so tests can stand in for
// the real services without a database or broker behind them.

type cartService interface {
	Add(ctx context.Context, sess domain.Session, in cartsvc.AddInput) (*domain.CartLine, bool, error)
	SetQuantity(ctx context.Context, sess domain.Session, lineID string, quantity int) error
	Remove(ctx context.Context, sess domain.Session, lineID string) error
	Clear(ctx context.Context, sess domain.Session) error
	List(ctx context.Context, sess domain.Session) ([]domain.CartLine, error)
	TotalQuantity(ctx context.Context, sess domain.Session) (int, error)
}

type checkoutService interface {
	PlaceOrder(ctx context.Context, sess domain.Session, in checkoutsvc.PlaceOrderInput) (*checkoutsvc.Result, error)
	ConfirmDraft(ctx context.Context, sess domain.Session, draftID string) (*checkoutsvc.Result, error)
}

type orderService interface {
	Transition(ctx context.Context, sess domain.Session, orderID string, to domain.OrderStatus) (*domain.Order, error)
	Get(ctx context.Context, sess domain.Session, orderID string) (*domain.Order, error)
}

type orderViews interface {
	Customer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error)
	Branch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error)
	Platform(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
}

type branchCatalog interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	ListOffered(ctx context.Context, branchID string) ([]domain.MenuItem, error)
}

type userDirectory interface {
	Resolve(ctx context.Context, userID string) (*domain.User, error)
}

type liveHub interface {
	Subscribe(filter projection.Filter, buffer int) *projection.Subscription
}

type positionSource interface {
	Latest(orderID string) (messaging.DeliveryPosition, bool)
}

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cart      cartService
	Checkout  checkoutService
	Orders    orderService
	Views     orderViews
	Catalog   branchCatalog
	Users     userDirectory
	Hub       liveHub
	Positions positionSource
	Metrics   *metrics.Metrics
}
