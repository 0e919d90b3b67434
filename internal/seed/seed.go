// Package seed inserts fixture data for manual testing. Every row carries a
// fixed id so repeated runs update in place instead of duplicating.
package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"foodorder/internal/domain"
)

const (
	BranchCenter = "11111111-1111-1111-1111-111111111111"
	BranchRiver  = "22222222-2222-2222-2222-222222222222"

	UserCustomer    = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	UserStaffCenter = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	UserStaffRiver  = "cccccccc-cccc-cccc-cccc-cccccccccccc"
	UserAdmin       = "dddddddd-dddd-dddd-dddd-dddddddddddd"

	ItemPhoBo  = "10000000-0000-0000-0000-000000000001"
	ItemComTam = "10000000-0000-0000-0000-000000000002"
	ItemTraDa  = "10000000-0000-0000-0000-000000000003"
	ItemBunCha = "10000000-0000-0000-0000-000000000004"
)

type itemSeed struct {
	ID             string
	Name           string
	BasePriceCents int64
	Sizes          []domain.Option
	Bases          []domain.Option
	ExtrasKind     domain.ExtrasKind
	Extras         []domain.Option
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	branches := []struct{ id, name, address string }{
		{BranchCenter, "Chi nhánh Trung tâm", "12 Lê Lợi, Quận 1"},
		{BranchRiver, "Chi nhánh Bờ sông", "45 Tôn Đức Thắng, Quận 1"},
	}
	for _, b := range branches {
		if err := upsertBranch(ctx, pool, b.id, b.name, b.address); err != nil {
			return fmt.Errorf("upsert branch %s: %w", b.name, err)
		}
	}

	users := []struct {
		id, name, branchID string
		role               domain.Role
	}{
		{UserCustomer, "An Nguyễn", "", domain.RoleCustomer},
		{UserStaffCenter, "Bình Trần", BranchCenter, domain.RoleBranch},
		{UserStaffRiver, "Chi Lê", BranchRiver, domain.RoleBranch},
		{UserAdmin, "Dũng Phạm", "", domain.RoleAdmin},
	}
	for _, u := range users {
		if err := upsertUser(ctx, pool, u.id, u.name, u.role, u.branchID); err != nil {
			return fmt.Errorf("upsert user %s: %w", u.name, err)
		}
	}

	items := []itemSeed{
		{
			ID:   ItemPhoBo,
			Name: "Phở bò",
			Sizes: []domain.Option{
				{Label: "Nhỏ", PriceCents: 45000},
				{Label: "Lớn", PriceCents: 50000},
			},
			ExtrasKind: domain.ExtrasToppings,
			Extras: []domain.Option{
				{Label: "Trứng", PriceCents: 5000},
				{Label: "Bò viên", PriceCents: 10000},
			},
		},
		{
			ID:             ItemComTam,
			Name:           "Cơm tấm sườn",
			BasePriceCents: 55000,
			Bases: []domain.Option{
				{Label: "Sườn bì chả", PriceCents: 10000},
				{Label: "Sườn trứng", PriceCents: 8000},
			},
			ExtrasKind: domain.ExtrasAddOns,
			Extras: []domain.Option{
				{Label: "Canh chua", PriceCents: 12000},
				{Label: "Chén cơm thêm", PriceCents: 7000},
			},
		},
		{
			ID:             ItemTraDa,
			Name:           "Trà đá",
			BasePriceCents: 5000,
		},
		{
			ID:   ItemBunCha,
			Name: "Bún chả",
			Sizes: []domain.Option{
				{Label: "Thường", PriceCents: 40000},
				{Label: "Đặc biệt", PriceCents: 55000},
			},
			ExtrasKind: domain.ExtrasAddOns,
			Extras: []domain.Option{
				{Label: "Nem rán", PriceCents: 15000},
			},
		},
	}
	for _, it := range items {
		if err := upsertItem(ctx, pool, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.Name, err)
		}
	}

	// Both branches carry the full card except Bún chả, which only the
	// center branch offers.
	for _, it := range items {
		if err := offerItem(ctx, pool, BranchCenter, it.ID); err != nil {
			return fmt.Errorf("offer %s at center: %w", it.Name, err)
		}
		if it.ID == ItemBunCha {
			continue
		}
		if err := offerItem(ctx, pool, BranchRiver, it.ID); err != nil {
			return fmt.Errorf("offer %s at river: %w", it.Name, err)
		}
	}

	return nil
}

func upsertBranch(ctx context.Context, pool *pgxpool.Pool, id, name, address string) error {
	const q = `
INSERT INTO branches (id, name, address)
VALUES ($1, $2, $3)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address
`
	_, err := pool.Exec(ctx, q, id, name, address)
	return err
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, id, name string, role domain.Role, branchID string) error {
	const q = `
INSERT INTO users (id, name, role, branch_id)
VALUES ($1, $2, $3, NULLIF($4, '')::uuid)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, branch_id = EXCLUDED.branch_id
`
	_, err := pool.Exec(ctx, q, id, name, string(role), branchID)
	return err
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, it itemSeed) error {
	sizes, err := optionsJSON(it.Sizes)
	if err != nil {
		return err
	}
	bases, err := optionsJSON(it.Bases)
	if err != nil {
		return err
	}
	extras, err := optionsJSON(it.Extras)
	if err != nil {
		return err
	}
	kind := it.ExtrasKind
	if kind == "" {
		kind = domain.ExtrasNone
	}

	const q = `
INSERT INTO menu_items (id, name, base_price_cents, sizes, bases, extras_kind, extras)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    base_price_cents = EXCLUDED.base_price_cents,
    sizes = EXCLUDED.sizes,
    bases = EXCLUDED.bases,
    extras_kind = EXCLUDED.extras_kind,
    extras = EXCLUDED.extras
`
	_, err = pool.Exec(ctx, q, it.ID, it.Name, it.BasePriceCents, sizes, bases, string(kind), extras)
	return err
}

func offerItem(ctx context.Context, pool *pgxpool.Pool, branchID, itemID string) error {
	const q = `
INSERT INTO branch_menu (branch_id, item_id, offered)
VALUES ($1, $2, true)
ON CONFLICT (branch_id, item_id) DO UPDATE SET offered = true
`
	_, err := pool.Exec(ctx, q, branchID, itemID)
	return err
}

func optionsJSON(opts []domain.Option) ([]byte, error) {
	if len(opts) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(opts)
}
