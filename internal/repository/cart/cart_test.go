package cart

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"foodorder/internal/domain"
	"foodorder/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
)

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_drafts, order_lines, orders, cart_lines, branch_menu, menu_items, users, branches RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

type fixture struct {
	customerID string
	branchID   string
	itemID     string
}

func seedFixture(ctx context.Context, t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	var f fixture
	if err := pool.QueryRow(ctx, `INSERT INTO branches (name) VALUES ('Quận 1') RETURNING id::text`).Scan(&f.branchID); err != nil {
		t.Fatalf("insert branch: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO users (name, role) VALUES ('Khách', 'customer') RETURNING id::text`).Scan(&f.customerID); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if err := pool.QueryRow(ctx, `
		INSERT INTO menu_items (name, base_price_cents, extras_kind)
		VALUES ('Phở bò', 45000, 'toppings')
		RETURNING id::text
	`).Scan(&f.itemID); err != nil {
		t.Fatalf("insert menu item: %v", err)
	}
	return f
}

func TestPostgres_UpsertMergesOnSignature(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	f := seedFixture(ctx, t, pool)

	repo := NewPostgres(pool)
	in := UpsertLineInput{
		CustomerID:     f.customerID,
		BranchID:       f.branchID,
		ItemID:         f.itemID,
		DisplayName:    "Phở bò",
		Quantity:       1,
		UnitPriceCents: 55000,
		Signature:      "sig-pho-lon-trung",
	}

	first, merged, err := repo.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if merged {
		t.Fatal("first upsert must insert, not merge")
	}
	if first.Quantity != 1 {
		t.Fatalf("expected quantity 1, got %d", first.Quantity)
	}

	second, merged, err := repo.Upsert(ctx, in)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if !merged {
		t.Fatal("second upsert with same signature must merge")
	}
	if second.ID != first.ID || second.Quantity != 2 {
		t.Fatalf("expected same line with quantity 2, got %+v", second)
	}

	lines, err := repo.List(ctx, f.customerID, f.branchID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestPostgres_UpsertConcurrentSameSignature(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	f := seedFixture(ctx, t, pool)

	repo := NewPostgres(pool)
	in := UpsertLineInput{
		CustomerID:     f.customerID,
		BranchID:       f.branchID,
		ItemID:         f.itemID,
		DisplayName:    "Phở bò",
		Quantity:       1,
		UnitPriceCents: 45000,
		Signature:      "sig-race",
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.Upsert(ctx, in); err != nil && !errors.Is(err, domain.ErrConflictRetry) {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent upsert: %v", err)
	}

	lines, err := repo.List(ctx, f.customerID, f.branchID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected exactly one line after concurrent adds, got %d", len(lines))
	}
	if lines[0].Quantity != writers {
		t.Fatalf("expected quantity %d, got %d", writers, lines[0].Quantity)
	}
}

func TestPostgres_SetQuantityBelowOneDeletes(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	f := seedFixture(ctx, t, pool)

	repo := NewPostgres(pool)
	line, _, err := repo.Upsert(ctx, UpsertLineInput{
		CustomerID: f.customerID, BranchID: f.branchID, ItemID: f.itemID,
		DisplayName: "Phở bò", Quantity: 3, UnitPriceCents: 45000, Signature: "sig-a",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := repo.SetQuantity(ctx, f.customerID, f.branchID, line.ID, 5); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	total, err := repo.TotalQuantity(ctx, f.customerID, f.branchID)
	if err != nil {
		t.Fatalf("TotalQuantity: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}

	if err := repo.SetQuantity(ctx, f.customerID, f.branchID, line.ID, 0); err != nil {
		t.Fatalf("SetQuantity to 0: %v", err)
	}
	lines, err := repo.List(ctx, f.customerID, f.branchID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(lines))
	}
}

func TestPostgres_PartitionIsolation(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	f := seedFixture(ctx, t, pool)

	var otherBranch string
	if err := pool.QueryRow(ctx, `INSERT INTO branches (name) VALUES ('Quận 7') RETURNING id::text`).Scan(&otherBranch); err != nil {
		t.Fatalf("insert branch: %v", err)
	}

	repo := NewPostgres(pool)
	base := UpsertLineInput{
		CustomerID: f.customerID, ItemID: f.itemID, DisplayName: "Phở bò",
		Quantity: 1, UnitPriceCents: 45000, Signature: "sig-shared",
	}
	base.BranchID = f.branchID
	if _, _, err := repo.Upsert(ctx, base); err != nil {
		t.Fatalf("upsert branch 1: %v", err)
	}
	base.BranchID = otherBranch
	if _, _, err := repo.Upsert(ctx, base); err != nil {
		t.Fatalf("upsert branch 2: %v", err)
	}

	if err := repo.Clear(ctx, f.customerID, f.branchID); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	lines, err := repo.List(ctx, f.customerID, otherBranch)
	if err != nil {
		t.Fatalf("List other branch: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("clearing one branch cart must not touch another, got %d lines", len(lines))
	}
}
