package user

import (
	"context"

	"foodorder/internal/domain"
)

// Directory resolves a user id to its role and branch affiliation. Order role
// checks are gated on it; credential storage lives elsewhere.
type Directory interface {
	Resolve(ctx context.Context, userID string) (*domain.User, error)
}
