package cart

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"foodorder/internal/domain"
	cartrepo "foodorder/internal/repository/cart"
)

type stubRepo struct {
	lines      map[string]*domain.CartLine // keyed by signature
	upserts    []cartrepo.UpsertLineInput
	upsertErr  error
	lastSetQty int
	removed    []string
	cleared    int
	total      int
}

func newStubRepo() *stubRepo {
	return &stubRepo{lines: make(map[string]*domain.CartLine)}
}

func (s *stubRepo) Upsert(_ context.Context, in cartrepo.UpsertLineInput) (*domain.CartLine, bool, error) {
	if s.upsertErr != nil {
		return nil, false, s.upsertErr
	}
	s.upserts = append(s.upserts, in)
	if line, ok := s.lines[in.Signature]; ok {
		line.Quantity += in.Quantity
		cp := *line
		return &cp, true, nil
	}
	line := &domain.CartLine{
		ID:             "line-" + in.Signature,
		CustomerID:     in.CustomerID,
		BranchID:       in.BranchID,
		ItemID:         in.ItemID,
		DisplayName:    in.DisplayName,
		Note:           in.Note,
		Size:           in.Size,
		Base:           in.Base,
		Toppings:       in.Toppings,
		AddOns:         in.AddOns,
		Quantity:       in.Quantity,
		UnitPriceCents: in.UnitPriceCents,
		Signature:      in.Signature,
	}
	s.lines[in.Signature] = line
	cp := *line
	return &cp, false, nil
}

func (s *stubRepo) SetQuantity(_ context.Context, _, _, _ string, quantity int) error {
	s.lastSetQty = quantity
	return nil
}

func (s *stubRepo) Remove(_ context.Context, _, _, lineID string) error {
	s.removed = append(s.removed, lineID)
	return nil
}

func (s *stubRepo) Clear(_ context.Context, _, _ string) error {
	s.cleared++
	return nil
}

func (s *stubRepo) List(_ context.Context, _, _ string) ([]domain.CartLine, error) {
	var out []domain.CartLine
	for _, l := range s.lines {
		out = append(out, *l)
	}
	return out, nil
}

func (s *stubRepo) TotalQuantity(_ context.Context, _, _ string) (int, error) {
	return s.total, nil
}

type stubMenu struct {
	item *domain.MenuItem
	err  error
}

func (s *stubMenu) GetItem(_ context.Context, _ string) (*domain.MenuItem, error) {
	return s.item, s.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", 0)
}

func phoTemplate() *domain.MenuItem {
	return &domain.MenuItem{
		ID:         "pho-bo",
		Name:       "Phở bò",
		ExtrasKind: domain.ExtrasToppings,
		Sizes: []domain.Option{
			{Label: "Nhỏ", PriceCents: 40000},
			{Label: "Lớn", PriceCents: 50000},
		},
		Extras: []domain.Option{
			{Label: "Trứng", PriceCents: 5000},
			{Label: "Bò viên", PriceCents: 8000},
		},
	}
}

func session() domain.Session {
	return domain.Session{UserID: "cust-1", Role: domain.RoleCustomer, BranchID: "branch-1"}
}

func TestAdd_RequiresSession(t *testing.T) {
	svc := New(newStubRepo(), &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	_, _, err := svc.Add(context.Background(), domain.Session{BranchID: "b"}, AddInput{ItemID: "pho-bo"})
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("missing customer must fail precondition, got %v", err)
	}
	_, _, err = svc.Add(context.Background(), domain.Session{UserID: "c"}, AddInput{ItemID: "pho-bo"})
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("missing branch must fail precondition, got %v", err)
	}
}

func TestAdd_PricesAndSigns(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	line, merged, err := svc.Add(context.Background(), session(), AddInput{
		ItemID:        "pho-bo",
		SizeLabel:     "Lớn",
		ToppingLabels: []string{"Trứng"},
		Quantity:      2,
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if merged {
		t.Fatal("first add must insert")
	}
	if line.UnitPriceCents != 55000 {
		t.Fatalf("expected 55000, got %d", line.UnitPriceCents)
	}
	if line.LineTotalCents() != 110000 {
		t.Fatalf("expected line total 110000, got %d", line.LineTotalCents())
	}
	if len(repo.upserts) != 1 || repo.upserts[0].Signature == "" {
		t.Fatalf("expected signed upsert, got %+v", repo.upserts)
	}
}

func TestAdd_SameConfigurationMerges(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	in := AddInput{ItemID: "pho-bo", SizeLabel: "Lớn", ToppingLabels: []string{"Trứng", "Bò viên"}, Quantity: 1}
	if _, _, err := svc.Add(context.Background(), session(), in); err != nil {
		t.Fatalf("first add: %v", err)
	}

	// Same selections in a different order must land on the same line.
	in.ToppingLabels = []string{"Bò viên", "Trứng"}
	line, merged, err := svc.Add(context.Background(), session(), in)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if !merged {
		t.Fatal("identical configuration must merge")
	}
	if line.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", line.Quantity)
	}
	if len(repo.lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(repo.lines))
	}
}

func TestAdd_DifferentNotesStayApart(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	if _, _, err := svc.Add(context.Background(), session(), AddInput{ItemID: "pho-bo", Note: "ít cay"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, merged, err := svc.Add(context.Background(), session(), AddInput{ItemID: "pho-bo", Note: "nhiều cay"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if merged {
		t.Fatal("different notes must not merge")
	}
	if len(repo.lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(repo.lines))
	}
}

func TestAdd_RejectsWrongExtrasPath(t *testing.T) {
	svc := New(newStubRepo(), &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	_, _, err := svc.Add(context.Background(), session(), AddInput{ItemID: "pho-bo", AddOnLabels: []string{"Khăn lạnh"}})
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("toppings item must reject add-ons, got %v", err)
	}
}

func TestAdd_RejectsUnknownOption(t *testing.T) {
	svc := New(newStubRepo(), &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	_, _, err := svc.Add(context.Background(), session(), AddInput{ItemID: "pho-bo", SizeLabel: "Khổng lồ"})
	if !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("unknown size must fail precondition, got %v", err)
	}
}

func TestSetQuantity_PassesThrough(t *testing.T) {
	repo := newStubRepo()
	svc := New(repo, &stubMenu{item: phoTemplate()}, nil, nil, testLogger())

	if err := svc.SetQuantity(context.Background(), session(), "line-1", 4); err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if repo.lastSetQty != 4 {
		t.Fatalf("expected 4, got %d", repo.lastSetQty)
	}
	if err := svc.SetQuantity(context.Background(), domain.Session{}, "line-1", 4); !errors.Is(err, domain.ErrPreconditionFailed) {
		t.Fatalf("empty session must fail precondition, got %v", err)
	}
}

func TestTotalQuantity_UsesCache(t *testing.T) {
	repo := newStubRepo()
	repo.total = 7
	c := &stubCounters{values: map[string]int{}}
	svc := New(repo, &stubMenu{item: phoTemplate()}, c, nil, testLogger())

	n, err := svc.TotalQuantity(context.Background(), session())
	if err != nil || n != 7 {
		t.Fatalf("expected 7 from store, got %d %v", n, err)
	}
	repo.total = 99 // cache must now answer
	n, err = svc.TotalQuantity(context.Background(), session())
	if err != nil || n != 7 {
		t.Fatalf("expected cached 7, got %d %v", n, err)
	}

	if err := svc.Clear(context.Background(), session()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	n, err = svc.TotalQuantity(context.Background(), session())
	if err != nil || n != 99 {
		t.Fatalf("expected fresh 99 after invalidation, got %d %v", n, err)
	}
}

type stubCounters struct {
	values map[string]int
}

func (s *stubCounters) Get(_ context.Context, key string) (int, bool) {
	n, ok := s.values[key]
	return n, ok
}

func (s *stubCounters) Set(_ context.Context, key string, value int) {
	s.values[key] = value
}

func (s *stubCounters) Invalidate(_ context.Context, key string) {
	delete(s.values, key)
}
