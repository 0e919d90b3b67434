package order

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodorder/internal/domain"
	"foodorder/internal/messaging"
	"foodorder/internal/metrics"
	orderrepo "foodorder/internal/repository/order"
	"github.com/google/uuid"
)

// Service drives one order's lifecycle. A transition is check-then-write
// atomic: the current status is read, the edge and role validated, and the
// write only commits if no other actor moved the order in between.
type Service struct {
	repo    statusRepo
	events  messaging.Publisher
	metrics *metrics.Metrics
	logger  *log.Logger
}

type statusRepo interface {
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, orderID string, expected, next domain.OrderStatus) error
	ListByCustomer(ctx context.Context, customerID string, status *domain.OrderStatus) ([]domain.Order, error)
	ListByBranch(ctx context.Context, branchID string, status *domain.OrderStatus) ([]domain.Order, error)
	List(ctx context.Context, f orderrepo.ListFilter) ([]domain.Order, error)
}

func New(repo statusRepo, events messaging.Publisher, m *metrics.Metrics, logger *log.Logger) *Service {
	return &Service{repo: repo, events: events, metrics: m, logger: logger}
}

// Transition requests the order's move to the given status on behalf of the
// session. Ownership, edge legality and role gating are all enforced; a lost
// race against another writer reports ErrConflictRetry with nothing changed.
func (s *Service) Transition(ctx context.Context, sess domain.Session, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	if sess.UserID == "" {
		return nil, domain.ErrPreconditionFailed
	}

	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, ord); err != nil {
		return nil, err
	}
	if !domain.CanTransition(ord.Status, to, sess.Role) {
		return nil, fmt.Errorf("%s -> %s as %s: %w", ord.Status, to, sess.Role, domain.ErrIllegalTransition)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, ord.Status, to); err != nil {
		return nil, err
	}
	ord.Status = to

	if s.metrics != nil {
		s.metrics.Transitions.WithLabelValues(string(to)).Inc()
	}
	s.publish(ctx, messaging.OrderStatusChanged, *ord)
	return ord, nil
}

// Get returns one order, visible only to its customer, its branch, or admin.
func (s *Service) Get(ctx context.Context, sess domain.Session, orderID string) (*domain.Order, error) {
	ord, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(sess, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// authorize checks that the session may see and act on the order at all.
// Role gating per edge happens separately in CanTransition.
func (s *Service) authorize(sess domain.Session, ord *domain.Order) error {
	switch sess.Role {
	case domain.RoleAdmin:
		return nil
	case domain.RoleBranch:
		if sess.BranchID == ord.BranchID {
			return nil
		}
	case domain.RoleCustomer:
		if sess.UserID == ord.CustomerID {
			return nil
		}
	}
	return domain.ErrNotFound
}

func (s *Service) publish(ctx context.Context, eventType string, ord domain.Order) {
	if s.events == nil {
		return
	}
	evt := messaging.OrderEvent{
		EventID: uuid.NewString(),
		Type:    eventType,
		Order:   ord,
		At:      time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, messaging.TopicOrderEvents, ord.ID, evt); err != nil {
		s.logger.Printf("publish order event: %v", err)
	}
}
