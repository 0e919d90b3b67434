package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

const orderColumns = `id::text, customer_id::text, branch_id::text, receiver_name, receiver_phone, receiver_address,
	shipping_method, payment_method, subtotal_cents, shipping_fee_cents, total_cents, status, created_at`

func (r *postgresRepo) CreateFromCartLines(ctx context.Context, in CreateInput) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ord, err := createInTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteErr(err)
	}
	return ord, nil
}

// createInTx freezes the selected cart lines into a placed order and deletes
// them, all on the caller's transaction. A missing line aborts the whole
// operation with ErrPreconditionFailed.
func createInTx(ctx context.Context, tx pgx.Tx, in CreateInput) (*domain.Order, error) {
	if len(in.LineIDs) == 0 {
		return nil, domain.ErrPreconditionFailed
	}

	const selectLines = `
SELECT id::text, item_id::text, display_name, image, note, size_opt, base_opt, toppings, add_ons, quantity, unit_price_cents
FROM cart_lines
WHERE customer_id = $1 AND branch_id = $2 AND id = ANY($3)
ORDER BY created_at ASC
FOR UPDATE
`
	rows, err := tx.Query(ctx, selectLines, in.CustomerID, in.BranchID, in.LineIDs)
	if err != nil {
		return nil, mapWriteErr(err)
	}

	type frozen struct {
		line domain.OrderLine
	}
	var lines []frozen
	var subtotal int64
	for rows.Next() {
		var f frozen
		var sizeJSON, baseJSON, toppingsJSON, addOnsJSON []byte
		if err := rows.Scan(
			&f.line.ID, // cart line id, replaced on insert
			&f.line.ItemID,
			&f.line.DisplayName,
			&f.line.Image,
			&f.line.Note,
			&sizeJSON,
			&baseJSON,
			&toppingsJSON,
			&addOnsJSON,
			&f.line.Quantity,
			&f.line.UnitPriceCents,
		); err != nil {
			rows.Close()
			return nil, err
		}
		if err := decodeOptions(sizeJSON, &f.line.Size); err != nil {
			rows.Close()
			return nil, err
		}
		if err := decodeOptions(baseJSON, &f.line.Base); err != nil {
			rows.Close()
			return nil, err
		}
		if err := decodeOptionSlice(toppingsJSON, &f.line.Toppings); err != nil {
			rows.Close()
			return nil, err
		}
		if err := decodeOptionSlice(addOnsJSON, &f.line.AddOns); err != nil {
			rows.Close()
			return nil, err
		}
		f.line.TotalCents = f.line.UnitPriceCents * int64(f.line.Quantity)
		subtotal += f.line.TotalCents
		lines = append(lines, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapWriteErr(err)
	}
	if len(lines) != len(in.LineIDs) {
		// One or more selected lines vanished; the order must not be created.
		return nil, domain.ErrPreconditionFailed
	}

	const insertOrder = `
INSERT INTO orders
	(customer_id, branch_id, receiver_name, receiver_phone, receiver_address, shipping_method, payment_method, subtotal_cents, shipping_fee_cents, total_cents, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'placed')
RETURNING ` + orderColumns + `
`
	ord, err := scanOrder(tx.QueryRow(ctx, insertOrder,
		in.CustomerID, in.BranchID,
		in.Receiver.Name, in.Receiver.Phone, in.Receiver.Address,
		string(in.ShippingMethod), string(in.PaymentMethod),
		subtotal, in.ShippingFeeCents, subtotal+in.ShippingFeeCents,
	))
	if err != nil {
		return nil, mapWriteErr(err)
	}

	const insertLine = `
INSERT INTO order_lines
	(order_id, item_id, display_name, image, note, size_opt, base_opt, toppings, add_ons, quantity, unit_price_cents, total_cents, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id::text
`
	cartLineIDs := make([]string, 0, len(lines))
	for i, f := range lines {
		cartLineIDs = append(cartLineIDs, f.line.ID)
		sizeJSON, err := encodeOption(f.line.Size)
		if err != nil {
			return nil, err
		}
		baseJSON, err := encodeOption(f.line.Base)
		if err != nil {
			return nil, err
		}
		toppingsJSON, err := json.Marshal(orEmpty(f.line.Toppings))
		if err != nil {
			return nil, err
		}
		addOnsJSON, err := json.Marshal(orEmpty(f.line.AddOns))
		if err != nil {
			return nil, err
		}
		var lineID string
		if err := tx.QueryRow(ctx, insertLine,
			ord.ID, f.line.ItemID, f.line.DisplayName, f.line.Image, f.line.Note,
			sizeJSON, baseJSON, toppingsJSON, addOnsJSON,
			f.line.Quantity, f.line.UnitPriceCents, f.line.TotalCents, i,
		).Scan(&lineID); err != nil {
			return nil, mapWriteErr(err)
		}
		f.line.ID = lineID
		f.line.OrderID = ord.ID
		ord.Lines = append(ord.Lines, f.line)
	}

	const deleteLines = `
DELETE FROM cart_lines
WHERE customer_id = $1 AND branch_id = $2 AND id = ANY($3)
`
	cmd, err := tx.Exec(ctx, deleteLines, in.CustomerID, in.BranchID, cartLineIDs)
	if err != nil {
		return nil, mapWriteErr(err)
	}
	if int(cmd.RowsAffected()) != len(cartLineIDs) {
		return nil, fmt.Errorf("expected to clear %d cart lines, cleared %d", len(cartLineIDs), cmd.RowsAffected())
	}

	return ord, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	const q = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`
	ord, err := scanOrder(r.pool.QueryRow(ctx, q, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.attachLines(ctx, []*domain.Order{ord}); err != nil {
		return nil, err
	}
	return ord, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, expected, next domain.OrderStatus) error {
	const q = `
UPDATE orders
SET status = $1
WHERE id = $2 AND status = $3
`
	cmd, err := r.pool.Exec(ctx, q, string(next), orderID, string(expected))
	if err != nil {
		return mapWriteErr(err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}

	// The CAS missed: either the order is gone or another writer moved it
	// between our read and this write.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrConflictRetry
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
`
	args := []any{customerID}
	if status != nil {
		q += ` AND status = $2`
		args = append(args, string(*status))
	}
	q += ` ORDER BY created_at DESC`
	return r.listOrders(ctx, q, args...)
}

func (r *postgresRepo) ListByBranch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE branch_id = $1
`
	args := []any{branchID}
	if status != nil {
		q += ` AND status = $2`
		args = append(args, string(*status))
	}
	q += ` ORDER BY created_at DESC`
	return r.listOrders(ctx, q, args...)
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE 1 = 1
`
	var args []any
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		q += fmt.Sprintf(" AND branch_id = $%d", len(args))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		q += fmt.Sprintf(" AND status = $%d", len(args))
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		q += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.listOrders(ctx, q, args...)
}

func (r *postgresRepo) CreateDraft(ctx context.Context, draftID string, in CreateInput) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO order_drafts (id, customer_id, branch_id, payload)
VALUES ($1, $2, $3, $4)
`
	_, err = r.pool.Exec(ctx, q, draftID, in.CustomerID, in.BranchID, payload)
	return mapWriteErr(err)
}

func (r *postgresRepo) GetDraft(ctx context.Context, draftID string) (*CreateInput, error) {
	const q = `
SELECT payload
FROM order_drafts
WHERE id = $1
`
	var payload []byte
	if err := r.pool.QueryRow(ctx, q, draftID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var in CreateInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *postgresRepo) FinalizeDraft(ctx context.Context, draftID string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Deleting first claims the draft; a concurrent finalize of the same
	// draft sees zero rows and backs off.
	const claim = `
DELETE FROM order_drafts
WHERE id = $1
RETURNING payload
`
	var payload []byte
	if err := tx.QueryRow(ctx, claim, draftID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, mapWriteErr(err)
	}
	var in CreateInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return nil, err
	}

	ord, err := createInTx(ctx, tx, in)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapWriteErr(err)
	}
	return ord, nil
}

func (r *postgresRepo) listOrders(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	var refs []*domain.Order
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *ord)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		refs = append(refs, &orders[i])
	}
	if err := r.attachLines(ctx, refs); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *postgresRepo) attachLines(ctx context.Context, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	const q = `
SELECT id::text, order_id::text, item_id::text, display_name, image, note, size_opt, base_opt, toppings, add_ons, quantity, unit_price_cents, total_cents
FROM order_lines
WHERE order_id = ANY($1)
ORDER BY order_id, position ASC
`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		var sizeJSON, baseJSON, toppingsJSON, addOnsJSON []byte
		if err := rows.Scan(
			&line.ID,
			&line.OrderID,
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
			&line.TotalCents,
		); err != nil {
			return err
		}
		if err := decodeOptions(sizeJSON, &line.Size); err != nil {
			return err
		}
		if err := decodeOptions(baseJSON, &line.Base); err != nil {
			return err
		}
		if err := decodeOptionSlice(toppingsJSON, &line.Toppings); err != nil {
			return err
		}
		if err := decodeOptionSlice(addOnsJSON, &line.AddOns); err != nil {
			return err
		}
		if ord, ok := byID[line.OrderID]; ok {
			ord.Lines = append(ord.Lines, line)
		}
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var ord domain.Order
	var shipping, payment, status string
	if err := row.Scan(
		&ord.ID,
		&ord.CustomerID,
		&ord.BranchID,
		&ord.Receiver.Name,
		&ord.Receiver.Phone,
		&ord.Receiver.Address,
		&shipping,
		&payment,
		&ord.SubtotalCents,
		&ord.ShippingFeeCents,
		&ord.TotalCents,
		&status,
		&ord.CreatedAt,
	); err != nil {
		return nil, err
	}
	ord.ShippingMethod = domain.ShippingMethod(shipping)
	ord.PaymentMethod = domain.PaymentMethod(payment)
	ord.Status = domain.OrderStatus(status)
	return &ord, nil
}

func encodeOption(o *domain.Option) ([]byte, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

func decodeOptions(data []byte, dst **domain.Option) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func decodeOptionSlice(data []byte, dst *[]domain.Option) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}

func orEmpty(opts []domain.Option) []domain.Option {
	if opts == nil {
		return []domain.Option{}
	}
	return opts
}

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
