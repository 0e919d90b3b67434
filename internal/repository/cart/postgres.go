package cart

import (
	"context"
	"encoding/json"
	"errors"

	"foodorder/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const lineColumns = `id::text, customer_id::text, branch_id::text, item_id::text, display_name, image, note,
	size_opt, base_opt, toppings, add_ons, quantity, unit_price_cents, signature, created_at`

// Upsert inserts a new line or, when the partition already holds a line with
// the same signature, adds the quantity onto it. The unique index on
// (customer_id, branch_id, signature) makes the merge decision atomic: of two
// concurrent adds with one signature, exactly one inserts and the other lands
// on the DO UPDATE arm.
func (r *postgresRepo) Upsert(ctx context.Context, in UpsertLineInput) (*domain.CartLine, bool, error) {
	sizeJSON, baseJSON, toppingsJSON, addOnsJSON, err := encodeSelections(in.Size, in.Base, in.Toppings, in.AddOns)
	if err != nil {
		return nil, false, err
	}

	const q = `
INSERT INTO cart_lines
	(customer_id, branch_id, item_id, display_name, image, note, size_opt, base_opt, toppings, add_ons, quantity, unit_price_cents, signature)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (customer_id, branch_id, signature)
DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
RETURNING ` + lineColumns + `
`
	row := r.pool.QueryRow(ctx, q,
		in.CustomerID, in.BranchID, in.ItemID, in.DisplayName, in.Image, in.Note,
		sizeJSON, baseJSON, toppingsJSON, addOnsJSON, in.Quantity, in.UnitPriceCents, in.Signature,
	)
	line, err := scanLine(row)
	if err != nil {
		return nil, false, mapWriteErr(err)
	}
	// Quantity above the requested amount means an existing line absorbed it.
	merged := line.Quantity > in.Quantity
	return line, merged, nil
}

// SetQuantity writes the quantity directly; anything below 1 deletes the line
// since no zero- or negative-quantity line is representable.
func (r *postgresRepo) SetQuantity(ctx context.Context, customerID, branchID, lineID string, quantity int) error {
	if quantity < 1 {
		return r.Remove(ctx, customerID, branchID, lineID)
	}
	const q = `
UPDATE cart_lines
SET quantity = $1
WHERE id = $2 AND customer_id = $3 AND branch_id = $4
`
	cmd, err := r.pool.Exec(ctx, q, quantity, lineID, customerID, branchID)
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Remove(ctx context.Context, customerID, branchID, lineID string) error {
	const q = `
DELETE FROM cart_lines
WHERE id = $1 AND customer_id = $2 AND branch_id = $3
`
	cmd, err := r.pool.Exec(ctx, q, lineID, customerID, branchID)
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context, customerID, branchID string) error {
	const q = `
DELETE FROM cart_lines
WHERE customer_id = $1 AND branch_id = $2
`
	_, err := r.pool.Exec(ctx, q, customerID, branchID)
	return mapWriteErr(err)
}

func (r *postgresRepo) List(ctx context.Context, customerID, branchID string) ([]domain.CartLine, error) {
	const q = `
SELECT ` + lineColumns + `
FROM cart_lines
WHERE customer_id = $1 AND branch_id = $2
ORDER BY created_at ASC
`
	rows, err := r.pool.Query(ctx, q, customerID, branchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

func (r *postgresRepo) TotalQuantity(ctx context.Context, customerID, branchID string) (int, error) {
	const q = `
SELECT COALESCE(SUM(quantity), 0)
FROM cart_lines
WHERE customer_id = $1 AND branch_id = $2
`
	var total int
	if err := r.pool.QueryRow(ctx, q, customerID, branchID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(row rowScanner) (*domain.CartLine, error) {
	var line domain.CartLine
	var sizeJSON, baseJSON, toppingsJSON, addOnsJSON []byte
	if err := row.Scan(
		&line.ID,
		&line.CustomerID,
		&line.BranchID,
		&line.ItemID,
		&line.DisplayName,
		&line.Image,
		&line.Note,
		&sizeJSON,
		&baseJSON,
		&toppingsJSON,
		&addOnsJSON,
		&line.Quantity,
		&line.UnitPriceCents,
		&line.Signature,
		&line.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := decodeSelections(sizeJSON, baseJSON, toppingsJSON, addOnsJSON, &line.Size, &line.Base, &line.Toppings, &line.AddOns); err != nil {
		return nil, err
	}
	return &line, nil
}

func encodeSelections(size, base *domain.Option, toppings, addOns []domain.Option) (sizeJSON, baseJSON, toppingsJSON, addOnsJSON []byte, err error) {
	if size != nil {
		if sizeJSON, err = json.Marshal(size); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if base != nil {
		if baseJSON, err = json.Marshal(base); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if toppingsJSON, err = json.Marshal(orEmpty(toppings)); err != nil {
		return nil, nil, nil, nil, err
	}
	if addOnsJSON, err = json.Marshal(orEmpty(addOns)); err != nil {
		return nil, nil, nil, nil, err
	}
	return sizeJSON, baseJSON, toppingsJSON, addOnsJSON, nil
}

func decodeSelections(sizeJSON, baseJSON, toppingsJSON, addOnsJSON []byte, size, base **domain.Option, toppings, addOns *[]domain.Option) error {
	if len(sizeJSON) > 0 {
		if err := json.Unmarshal(sizeJSON, size); err != nil {
			return err
		}
	}
	if len(baseJSON) > 0 {
		if err := json.Unmarshal(baseJSON, base); err != nil {
			return err
		}
	}
	if len(toppingsJSON) > 0 {
		if err := json.Unmarshal(toppingsJSON, toppings); err != nil {
			return err
		}
	}
	if len(addOnsJSON) > 0 {
		if err := json.Unmarshal(addOnsJSON, addOns); err != nil {
			return err
		}
	}
	return nil
}

func orEmpty(opts []domain.Option) []domain.Option {
	if opts == nil {
		return []domain.Option{}
	}
	return opts
}

// mapWriteErr translates pg serialization failures and deadlocks into the
// retryable conflict sentinel; nothing partial was committed in either case.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return domain.ErrConflictRetry
		}
	}
	return err
}
