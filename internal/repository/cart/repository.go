package cart

import (
	"context"

	"foodorder/internal/domain"
)

// UpsertLineInput carries one fully priced, signed line into the store. The
// signature and unit price are computed by the caller; the repository only
// decides merge-vs-insert under the partition's unique index.
type UpsertLineInput struct {
	CustomerID     string
	BranchID       string
	ItemID         string
	DisplayName    string
	Image          string
	Note           string
	Size           *domain.Option
	Base           *domain.Option
	Toppings       []domain.Option
	AddOns         []domain.Option
	Quantity       int
	UnitPriceCents int64
	Signature      string
}

// Repository owns the cart lines of (customer, branch) partitions. All writes
// are serialized per partition by the store itself: the merge decision rides
// on a conditional insert keyed by the line signature, so two concurrent adds
// with the same signature cannot both insert.
type Repository interface {
	Upsert(ctx context.Context, in UpsertLineInput) (line *domain.CartLine, merged bool, err error)
	SetQuantity(ctx context.Context, customerID, branchID, lineID string, quantity int) error
	Remove(ctx context.Context, customerID, branchID, lineID string) error
	Clear(ctx context.Context, customerID, branchID string) error
	List(ctx context.Context, customerID, branchID string) ([]domain.CartLine, error)
	TotalQuantity(ctx context.Context, customerID, branchID string) (int, error)
}
