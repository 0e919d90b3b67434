package order

import (
	"context"

	"foodorder/internal/domain"
)

// CreateInput names the cart lines to freeze into an order plus everything
// checkout decided. Subtotal and line prices come from the stored cart lines,
// read inside the same transaction that deletes them.
type CreateInput struct {
	CustomerID       string                `json:"customerId"`
	BranchID         string                `json:"branchId"`
	LineIDs          []string              `json:"lineIds"`
	Receiver         domain.Receiver       `json:"receiver"`
	ShippingMethod   domain.ShippingMethod `json:"shippingMethod"`
	PaymentMethod    domain.PaymentMethod  `json:"paymentMethod"`
	ShippingFeeCents int64                 `json:"shippingFeeCents"`
}

// ListFilter narrows the platform-wide order listing.
type ListFilter struct {
	BranchID string
	Status   *domain.OrderStatus
	Limit    int
	Offset   int
}

// Repository owns order persistence. Status writes are check-then-write
// atomic per order: UpdateStatus only commits when the stored status still
// equals the expected one.
type Repository interface {
	// CreateFromCartLines freezes the selected cart lines into a new placed
	// order and deletes exactly those lines, in one transaction. If any
	// selected line is missing from the partition nothing is committed.
	CreateFromCartLines(ctx context.Context, in CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	// UpdateStatus performs the compare-and-swap from expected to next.
	// ErrConflictRetry reports a lost race (the order moved under us);
	// ErrNotFound reports an unknown order.
	UpdateStatus(ctx context.Context, orderID string, expected, next domain.OrderStatus) error
	ListByCustomer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error)
	ListByBranch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, error)

	// Drafts hold a bank-transfer checkout until the payment collaborator
	// confirms. FinalizeDraft runs the same atomic freeze-and-clear as
	// CreateFromCartLines and removes the draft.
	CreateDraft(ctx context.Context, draftID string, in CreateInput) error
	FinalizeDraft(ctx context.Context, draftID string) (*domain.Order, error)
	GetDraft(ctx context.Context, draftID string) (*CreateInput, error)
}
