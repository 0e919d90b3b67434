package checkout

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"foodorder/internal/domain"
	orderrepo "foodorder/internal/repository/order"
)

type stubOrders struct {
	created    []orderrepo.CreateInput
	createErr  error
	drafts     map[string]orderrepo.CreateInput
	finalized  []string
	nextID     string
	failDraft  error
	finalizeErr error
}

func newStubOrders() *stubOrders {
	return &stubOrders{drafts: make(map[string]orderrepo.CreateInput), nextID: "ord-1"}
}

func (s *stubOrders) CreateFromCartLines(_ context.Context, in orderrepo.CreateInput) (*domain.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, in)
	subtotal := int64(110000)
	return &domain.Order{
		ID:               s.nextID,
		CustomerID:       in.CustomerID,
		BranchID:         in.BranchID,
		Receiver:         in.Receiver,
		ShippingMethod:   in.ShippingMethod,
		PaymentMethod:    in.PaymentMethod,
		SubtotalCents:    subtotal,
		ShippingFeeCents: in.ShippingFeeCents,
		TotalCents:       subtotal + in.ShippingFeeCents,
		Status:           domain.StatusPlaced,
	}, nil
}

func (s *stubOrders) CreateDraft(_ context.Context, draftID string, in orderrepo.CreateInput) error {
	if s.failDraft != nil {
		return s.failDraft
	}
	s.drafts[draftID] = in
	return nil
}

func (s *stubOrders) GetDraft(_ context.Context, draftID string) (*orderrepo.CreateInput, error) {
	in, ok := s.drafts[draftID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &in, nil
}

func (s *stubOrders) FinalizeDraft(ctx context.Context, draftID string) (*domain.Order, error) {
	if s.finalizeErr != nil {
		return nil, s.finalizeErr
	}
	in, ok := s.drafts[draftID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	delete(s.drafts, draftID)
	s.finalized = append(s.finalized, draftID)
	return s.CreateFromCartLines(ctx, in)
}

type stubGateway struct {
	paid bool
	err  error
}

func (s *stubGateway) Confirm(_ context.Context, _ string) (bool, error) {
	return s.paid, s.err
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", 0)
}

func sess() domain.Session {
	return domain.Session{UserID: "cust-1", Role: domain.RoleCustomer, BranchID: "branch-1"}
}

func validInput(method domain.PaymentMethod) PlaceOrderInput {
	return PlaceOrderInput{
		LineIDs:        []string{"line-a", "line-b"},
		Receiver:       domain.Receiver{Name: "Anh Tuấn", Phone: "0901234567", Address: "12 Lê Lợi, Quận 1"},
		ShippingMethod: domain.ShippingGround,
		PaymentMethod:  method,
	}
}

func TestPlaceOrder_CashCreatesImmediately(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentCashOnDelivery))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.Pending || res.Order == nil {
		t.Fatalf("cash checkout must place immediately, got %+v", res)
	}
	if res.Order.TotalCents != res.Order.SubtotalCents+res.Order.ShippingFeeCents {
		t.Fatalf("total law violated: %+v", res.Order)
	}
	if res.Order.ShippingFeeCents != 10000 {
		t.Fatalf("expected ground fee 10000, got %d", res.Order.ShippingFeeCents)
	}
	if len(orders.created) != 1 {
		t.Fatalf("expected one create, got %d", len(orders.created))
	}
}

func TestPlaceOrder_AerialFee(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{}, nil, nil, nil, testLogger(), 10000, 25000)

	in := validInput(domain.PaymentCashOnDelivery)
	in.ShippingMethod = domain.ShippingAerial
	res, err := svc.PlaceOrder(context.Background(), sess(), in)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if res.Order.ShippingFeeCents != 25000 {
		t.Fatalf("expected aerial fee 25000, got %d", res.Order.ShippingFeeCents)
	}
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	svc := New(newStubOrders(), &stubGateway{}, nil, nil, nil, testLogger(), 10000, 25000)

	cases := []struct {
		name string
		sess domain.Session
		in   PlaceOrderInput
	}{
		{"no session", domain.Session{}, validInput(domain.PaymentCashOnDelivery)},
		{"no branch", domain.Session{UserID: "c"}, validInput(domain.PaymentCashOnDelivery)},
		{"no lines", sess(), PlaceOrderInput{Receiver: domain.Receiver{Name: "a", Phone: "1", Address: "x"}, ShippingMethod: domain.ShippingGround, PaymentMethod: domain.PaymentCashOnDelivery}},
		{"no receiver", sess(), PlaceOrderInput{LineIDs: []string{"l"}, ShippingMethod: domain.ShippingGround, PaymentMethod: domain.PaymentCashOnDelivery}},
		{"bad shipping", sess(), PlaceOrderInput{LineIDs: []string{"l"}, Receiver: domain.Receiver{Name: "a", Phone: "1", Address: "x"}, ShippingMethod: "submarine", PaymentMethod: domain.PaymentCashOnDelivery}},
	}
	for _, tc := range cases {
		if _, err := svc.PlaceOrder(context.Background(), tc.sess, tc.in); !errors.Is(err, domain.ErrPreconditionFailed) {
			t.Errorf("%s: expected precondition failure, got %v", tc.name, err)
		}
	}
}

func TestPlaceOrder_BankTransferDefers(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentBankTransfer))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if !res.Pending || res.DraftID == "" || res.Order != nil {
		t.Fatalf("bank transfer must return a pending draft, got %+v", res)
	}
	if len(orders.created) != 0 {
		t.Fatal("no order may exist before payment confirmation")
	}
}

func TestConfirmDraft_PaidFinalizes(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{paid: true}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentBankTransfer))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	confirmed, err := svc.ConfirmDraft(context.Background(), sess(), res.DraftID)
	if err != nil {
		t.Fatalf("ConfirmDraft: %v", err)
	}
	if confirmed.Pending || confirmed.Order == nil {
		t.Fatalf("paid draft must finalize, got %+v", confirmed)
	}
	if len(orders.finalized) != 1 {
		t.Fatalf("expected one finalize, got %d", len(orders.finalized))
	}
}

func TestConfirmDraft_UnpaidStaysPending(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{paid: false}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentBankTransfer))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	confirmed, err := svc.ConfirmDraft(context.Background(), sess(), res.DraftID)
	if err != nil {
		t.Fatalf("ConfirmDraft: %v", err)
	}
	if !confirmed.Pending || confirmed.Order != nil {
		t.Fatalf("unpaid draft must stay pending, got %+v", confirmed)
	}
	if len(orders.finalized) != 0 {
		t.Fatal("unpaid draft must not finalize")
	}
	if _, ok := orders.drafts[res.DraftID]; !ok {
		t.Fatal("draft must survive an unpaid confirmation")
	}
}

func TestConfirmDraft_GatewayDownIsRetryable(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{err: domain.ErrUpstreamUnavailable}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentBankTransfer))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	_, err = svc.ConfirmDraft(context.Background(), sess(), res.DraftID)
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream unavailable, got %v", err)
	}
	if _, ok := orders.drafts[res.DraftID]; !ok {
		t.Fatal("draft must survive a gateway outage")
	}
}

func TestConfirmDraft_ForeignCustomerCannotConfirm(t *testing.T) {
	orders := newStubOrders()
	svc := New(orders, &stubGateway{paid: true}, nil, nil, nil, testLogger(), 10000, 25000)

	res, err := svc.PlaceOrder(context.Background(), sess(), validInput(domain.PaymentBankTransfer))
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	other := domain.Session{UserID: "cust-2", Role: domain.RoleCustomer, BranchID: "branch-1"}
	if _, err := svc.ConfirmDraft(context.Background(), other, res.DraftID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("foreign customer must not confirm, got %v", err)
	}
}
