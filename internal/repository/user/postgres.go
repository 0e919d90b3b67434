package user

import (
	"context"
	"errors"

	"foodorder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresDirectory struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Directory {
	return &postgresDirectory{pool: pool}
}

func (d *postgresDirectory) Resolve(ctx context.Context, userID string) (*domain.User, error) {
	const q = `
SELECT id::text, name, role, COALESCE(branch_id::text, ''), created_at
FROM users
WHERE id = $1
`
	var u domain.User
	var role string
	if err := d.pool.QueryRow(ctx, q, userID).Scan(&u.ID, &u.Name, &role, &u.BranchID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}
