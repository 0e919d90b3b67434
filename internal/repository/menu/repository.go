package menu

import (
	"context"

	"foodorder/internal/domain"
)

// Repository is the read-only catalog surface. The cart core trusts that the
// caller already filtered against branch availability; IsOffered exists for
// the UI layer, not as an enforcement point.
type Repository interface {
	GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
	ListOffered(ctx context.Context, branchID string) ([]domain.MenuItem, error)
	IsOffered(ctx context.Context, branchID, itemID string) (bool, error)
	ListBranches(ctx context.Context) ([]domain.Branch, error)

	// UpsertItem inserts or updates an item template, keyed by id when one
	// is given and by name otherwise. Used by the bulk importer.
	UpsertItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error)
	Offer(ctx context.Context, branchID, itemID string) error
}
