package menu

import (
	"context"
	"encoding/json"
	"errors"

	"foodorder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const itemColumns = `id::text, name, image, base_price_cents, sizes, bases, extras_kind, extras, created_at`

func (r *postgresRepo) GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error) {
	const q = `
SELECT ` + itemColumns + `
FROM menu_items
WHERE id = $1
`
	row := r.pool.QueryRow(ctx, q, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *postgresRepo) ListOffered(ctx context.Context, branchID string) ([]domain.MenuItem, error) {
	const q = `
SELECT m.id::text, m.name, m.image, m.base_price_cents, m.sizes, m.bases, m.extras_kind, m.extras, m.created_at
FROM menu_items m
JOIN branch_menu bm ON bm.item_id = m.id
WHERE bm.branch_id = $1 AND bm.offered
ORDER BY m.name ASC
`
	rows, err := r.pool.Query(ctx, q, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *postgresRepo) IsOffered(ctx context.Context, branchID, itemID string) (bool, error) {
	const q = `
SELECT offered
FROM branch_menu
WHERE branch_id = $1 AND item_id = $2
`
	var offered bool
	if err := r.pool.QueryRow(ctx, q, branchID, itemID).Scan(&offered); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return offered, nil
}

func (r *postgresRepo) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	const q = `
SELECT id::text, name, address, created_at
FROM branches
ORDER BY name ASC
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

func (r *postgresRepo) UpsertItem(ctx context.Context, item domain.MenuItem) (*domain.MenuItem, error) {
	sizes, err := json.Marshal(orEmpty(item.Sizes))
	if err != nil {
		return nil, err
	}
	bases, err := json.Marshal(orEmpty(item.Bases))
	if err != nil {
		return nil, err
	}
	extras, err := json.Marshal(orEmpty(item.Extras))
	if err != nil {
		return nil, err
	}
	kind := item.ExtrasKind
	if kind == "" {
		kind = domain.ExtrasNone
	}

	const byID = `
INSERT INTO menu_items (id, name, image, base_price_cents, sizes, bases, extras_kind, extras)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    image = EXCLUDED.image,
    base_price_cents = EXCLUDED.base_price_cents,
    sizes = EXCLUDED.sizes,
    bases = EXCLUDED.bases,
    extras_kind = EXCLUDED.extras_kind,
    extras = EXCLUDED.extras
RETURNING ` + itemColumns + `
`
	const byName = `
INSERT INTO menu_items (name, image, base_price_cents, sizes, bases, extras_kind, extras)
SELECT $1, $2, $3, $4, $5, $6, $7
WHERE NOT EXISTS (SELECT 1 FROM menu_items WHERE name = $1)
RETURNING ` + itemColumns + `
`
	const updateByName = `
UPDATE menu_items
SET image = $2,
    base_price_cents = $3,
    sizes = $4,
    bases = $5,
    extras_kind = $6,
    extras = $7
WHERE name = $1
RETURNING ` + itemColumns + `
`

	if item.ID != "" {
		row := r.pool.QueryRow(ctx, byID, item.ID, item.Name, item.Image, item.BasePriceCents, sizes, bases, string(kind), extras)
		return scanItem(row)
	}

	row := r.pool.QueryRow(ctx, byName, item.Name, item.Image, item.BasePriceCents, sizes, bases, string(kind), extras)
	saved, err := scanItem(row)
	if err == nil {
		return saved, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	row = r.pool.QueryRow(ctx, updateByName, item.Name, item.Image, item.BasePriceCents, sizes, bases, string(kind), extras)
	return scanItem(row)
}

func (r *postgresRepo) Offer(ctx context.Context, branchID, itemID string) error {
	const q = `
INSERT INTO branch_menu (branch_id, item_id, offered)
VALUES ($1, $2, true)
ON CONFLICT (branch_id, item_id) DO UPDATE SET offered = true
`
	_, err := r.pool.Exec(ctx, q, branchID, itemID)
	return err
}

func orEmpty(opts []domain.Option) []domain.Option {
	if opts == nil {
		return []domain.Option{}
	}
	return opts
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.MenuItem, error) {
	var item domain.MenuItem
	var sizes, bases, extras []byte
	var kind string
	if err := row.Scan(
		&item.ID,
		&item.Name,
		&item.Image,
		&item.BasePriceCents,
		&sizes,
		&bases,
		&kind,
		&extras,
		&item.CreatedAt,
	); err != nil {
		return nil, err
	}
	item.ExtrasKind = domain.ExtrasKind(kind)
	if err := json.Unmarshal(sizes, &item.Sizes); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bases, &item.Bases); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(extras, &item.Extras); err != nil {
		return nil, err
	}
	return &item, nil
}
