package checkout

import (
	"context"
	"log"
	"strings"
	"time"

	"foodorder/internal/cache"
	"foodorder/internal/domain"
	"foodorder/internal/messaging"
	"foodorder/internal/metrics"
	"foodorder/internal/payment"
	orderrepo "foodorder/internal/repository/order"
	"github.com/google/uuid"
)

// Service turns selected cart lines into orders. The freeze-and-clear is one
// store transaction; either the order exists and the lines are gone, or
// neither, so a reported failure is always safe to retry.
type Service struct {
	orders  checkoutRepo
	gateway payment.Gateway
	badges  cache.Counters
	events  messaging.Publisher
	metrics *metrics.Metrics
	logger  *log.Logger

	groundFeeCents int64
	aerialFeeCents int64
}

type checkoutRepo interface {
	CreateFromCartLines(ctx context.Context, in orderrepo.CreateInput) (*domain.Order, error)
	CreateDraft(ctx context.Context, draftID string, in orderrepo.CreateInput) error
	GetDraft(ctx context.Context, draftID string) (*orderrepo.CreateInput, error)
	FinalizeDraft(ctx context.Context, draftID string) (*domain.Order, error)
}

func New(orders checkoutRepo, gateway payment.Gateway, badges cache.Counters, events messaging.Publisher, m *metrics.Metrics, logger *log.Logger, groundFeeCents, aerialFeeCents int64) *Service {
	if badges == nil {
		badges = cache.Noop()
	}
	return &Service{
		orders:         orders,
		gateway:        gateway,
		badges:         badges,
		events:         events,
		metrics:        m,
		logger:         logger,
		groundFeeCents: groundFeeCents,
		aerialFeeCents: aerialFeeCents,
	}
}

type PlaceOrderInput struct {
	LineIDs        []string              `json:"lineIds"`
	Receiver       domain.Receiver       `json:"receiver"`
	ShippingMethod domain.ShippingMethod `json:"shippingMethod"`
	PaymentMethod  domain.PaymentMethod  `json:"paymentMethod"`
}

// Result is either a placed order (cash path, or confirmed bank transfer) or
// a pending draft awaiting payment confirmation.
type Result struct {
	Order   *domain.Order `json:"order,omitempty"`
	DraftID string        `json:"draftId,omitempty"`
	Pending bool          `json:"pending"`
}

// PlaceOrder validates the input and either creates the order immediately
// (cash on delivery) or parks it as a draft until the payment collaborator
// confirms (bank transfer). The cart is only ever touched by the atomic
// freeze-and-clear, never by the draft.
func (s *Service) PlaceOrder(ctx context.Context, sess domain.Session, in PlaceOrderInput) (*Result, error) {
	if err := s.validate(sess, in); err != nil {
		return nil, err
	}

	create := orderrepo.CreateInput{
		CustomerID:       sess.UserID,
		BranchID:         sess.BranchID,
		LineIDs:          in.LineIDs,
		Receiver:         in.Receiver,
		ShippingMethod:   in.ShippingMethod,
		PaymentMethod:    in.PaymentMethod,
		ShippingFeeCents: s.shippingFee(in.ShippingMethod),
	}

	if in.PaymentMethod == domain.PaymentBankTransfer {
		draftID := uuid.NewString()
		if err := s.orders.CreateDraft(ctx, draftID, create); err != nil {
			return nil, err
		}
		return &Result{DraftID: draftID, Pending: true}, nil
	}

	ord, err := s.orders.CreateFromCartLines(ctx, create)
	if err != nil {
		return nil, err
	}
	s.afterPlacement(ctx, sess, ord)
	return &Result{Order: ord}, nil
}

// ConfirmDraft completes a bank-transfer checkout. Only a positive answer
// from the gateway finalizes; unpaid or unreachable leaves the draft and the
// cart exactly as they were.
func (s *Service) ConfirmDraft(ctx context.Context, sess domain.Session, draftID string) (*Result, error) {
	draft, err := s.orders.GetDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if draft.CustomerID != sess.UserID && sess.Role != domain.RoleAdmin {
		return nil, domain.ErrNotFound
	}

	paid, err := s.gateway.Confirm(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return &Result{DraftID: draftID, Pending: true}, nil
	}

	ord, err := s.orders.FinalizeDraft(ctx, draftID)
	if err != nil {
		return nil, err
	}
	s.afterPlacement(ctx, domain.Session{UserID: ord.CustomerID, BranchID: ord.BranchID}, ord)
	return &Result{Order: ord}, nil
}

func (s *Service) validate(sess domain.Session, in PlaceOrderInput) error {
	if !sess.CartReady() {
		return domain.ErrPreconditionFailed
	}
	if len(in.LineIDs) == 0 {
		return domain.ErrPreconditionFailed
	}
	if strings.TrimSpace(in.Receiver.Name) == "" ||
		strings.TrimSpace(in.Receiver.Phone) == "" ||
		strings.TrimSpace(in.Receiver.Address) == "" {
		return domain.ErrPreconditionFailed
	}
	switch in.ShippingMethod {
	case domain.ShippingGround, domain.ShippingAerial:
	default:
		return domain.ErrPreconditionFailed
	}
	switch in.PaymentMethod {
	case domain.PaymentCashOnDelivery, domain.PaymentBankTransfer:
	default:
		return domain.ErrPreconditionFailed
	}
	return nil
}

func (s *Service) shippingFee(m domain.ShippingMethod) int64 {
	if m == domain.ShippingAerial {
		return s.aerialFeeCents
	}
	return s.groundFeeCents
}

func (s *Service) afterPlacement(ctx context.Context, sess domain.Session, ord *domain.Order) {
	s.badges.Invalidate(ctx, cache.BadgeKey(sess.UserID, sess.BranchID))
	if s.metrics != nil {
		s.metrics.OrdersPlaced.Inc()
	}
	if s.events == nil {
		return
	}
	evt := messaging.OrderEvent{
		EventID: uuid.NewString(),
		Type:    messaging.OrderPlaced,
		Order:   *ord,
		At:      time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, messaging.TopicOrderEvents, ord.ID, evt); err != nil {
		s.logger.Printf("publish order placed: %v", err)
	}
	cartEvt := messaging.CartEvent{
		EventID:    uuid.NewString(),
		CustomerID: sess.UserID,
		BranchID:   sess.BranchID,
		At:         time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, messaging.TopicCartEvents, sess.UserID+":"+sess.BranchID, cartEvt); err != nil {
		s.logger.Printf("publish cart cleared: %v", err)
	}
}
