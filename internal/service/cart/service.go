package cart

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"foodorder/internal/cache"
	"foodorder/internal/domain"
	"foodorder/internal/messaging"
	"foodorder/internal/pricing"
	cartrepo "foodorder/internal/repository/cart"
	"foodorder/internal/signature"
	"github.com/google/uuid"
)

// Service exposes one (customer, branch) cart partition's operations. Every
// call takes the explicit session; a session without a resolved customer or
// branch fails the precondition instead of touching the store.
type Service struct {
	repo   lineRepo
	menu   menuRepo
	badges cache.Counters
	events messaging.Publisher
	logger *log.Logger
}

type lineRepo interface {
	Upsert(ctx context.Context, in cartrepo.UpsertLineInput) (*domain.CartLine, bool, error)
	SetQuantity(ctx context.Context, customerID, branchID, lineID string, quantity int) error
	Remove(ctx context.Context, customerID, branchID, lineID string) error
	Clear(ctx context.Context, customerID, branchID string) error
	List(ctx context.Context, customerID, branchID string) ([]domain.CartLine, error)
	TotalQuantity(ctx context.Context, customerID, branchID string) (int, error)
}

type menuRepo interface {
	GetItem(ctx context.Context, itemID string) (*domain.MenuItem, error)
}

func New(repo lineRepo, menu menuRepo, badges cache.Counters, events messaging.Publisher, logger *log.Logger) *Service {
	if badges == nil {
		badges = cache.Noop()
	}
	return &Service{repo: repo, menu: menu, badges: badges, events: events, logger: logger}
}

// AddInput selects options by label against the item template. Prices are
// never taken from the client; they are resolved from the template here.
type AddInput struct {
	ItemID        string   `json:"itemId"`
	SizeLabel     string   `json:"sizeLabel,omitempty"`
	BaseLabel     string   `json:"baseLabel,omitempty"`
	ToppingLabels []string `json:"toppingLabels,omitempty"`
	AddOnLabels   []string `json:"addOnLabels,omitempty"`
	Note          string   `json:"note,omitempty"`
	Quantity      int      `json:"quantity"`
}

// Add resolves the template, prices the configuration, and merges or inserts
// the line. The returned flag reports whether an existing line absorbed the
// quantity; it exists for UI feedback only.
func (s *Service) Add(ctx context.Context, sess domain.Session, in AddInput) (*domain.CartLine, bool, error) {
	if !sess.CartReady() {
		return nil, false, domain.ErrPreconditionFailed
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	item, err := s.menu.GetItem(ctx, in.ItemID)
	if err != nil {
		return nil, false, err
	}
	sel, err := resolveSelections(*item, in)
	if err != nil {
		return nil, false, err
	}

	line, merged, err := s.repo.Upsert(ctx, cartrepo.UpsertLineInput{
		CustomerID:     sess.UserID,
		BranchID:       sess.BranchID,
		ItemID:         item.ID,
		DisplayName:    item.Name,
		Image:          item.Image,
		Note:           strings.TrimSpace(in.Note),
		Size:           sel.Size,
		Base:           sel.Base,
		Toppings:       sel.Toppings,
		AddOns:         sel.AddOns,
		Quantity:       in.Quantity,
		UnitPriceCents: pricing.UnitPriceCents(*item, sel),
		Signature:      signature.Compute(item.ID, sel),
	})
	if err != nil {
		return nil, false, err
	}

	s.afterMutation(ctx, sess)
	return line, merged, nil
}

// SetQuantity writes the quantity directly; anything below 1 removes the line.
func (s *Service) SetQuantity(ctx context.Context, sess domain.Session, lineID string, quantity int) error {
	if !sess.CartReady() {
		return domain.ErrPreconditionFailed
	}
	if err := s.repo.SetQuantity(ctx, sess.UserID, sess.BranchID, lineID, quantity); err != nil {
		return err
	}
	s.afterMutation(ctx, sess)
	return nil
}

func (s *Service) Remove(ctx context.Context, sess domain.Session, lineID string) error {
	if !sess.CartReady() {
		return domain.ErrPreconditionFailed
	}
	if err := s.repo.Remove(ctx, sess.UserID, sess.BranchID, lineID); err != nil {
		return err
	}
	s.afterMutation(ctx, sess)
	return nil
}

func (s *Service) Clear(ctx context.Context, sess domain.Session) error {
	if !sess.CartReady() {
		return domain.ErrPreconditionFailed
	}
	if err := s.repo.Clear(ctx, sess.UserID, sess.BranchID); err != nil {
		return err
	}
	s.afterMutation(ctx, sess)
	return nil
}

func (s *Service) List(ctx context.Context, sess domain.Session) ([]domain.CartLine, error) {
	if !sess.CartReady() {
		return nil, domain.ErrPreconditionFailed
	}
	return s.repo.List(ctx, sess.UserID, sess.BranchID)
}

// TotalQuantity serves badge counts, preferring the cache.
func (s *Service) TotalQuantity(ctx context.Context, sess domain.Session) (int, error) {
	if !sess.CartReady() {
		return 0, domain.ErrPreconditionFailed
	}
	key := cache.BadgeKey(sess.UserID, sess.BranchID)
	if n, ok := s.badges.Get(ctx, key); ok {
		return n, nil
	}
	n, err := s.repo.TotalQuantity(ctx, sess.UserID, sess.BranchID)
	if err != nil {
		return 0, err
	}
	s.badges.Set(ctx, key, n)
	return n, nil
}

func (s *Service) afterMutation(ctx context.Context, sess domain.Session) {
	s.badges.Invalidate(ctx, cache.BadgeKey(sess.UserID, sess.BranchID))
	if s.events == nil {
		return
	}
	evt := messaging.CartEvent{
		EventID:    uuid.NewString(),
		CustomerID: sess.UserID,
		BranchID:   sess.BranchID,
		At:         time.Now().UTC(),
	}
	key := sess.UserID + ":" + sess.BranchID
	if err := s.events.Publish(ctx, messaging.TopicCartEvents, key, evt); err != nil {
		s.logger.Printf("publish cart event: %v", err)
	}
}

// resolveSelections maps the requested labels onto the template's options.
// The template's ExtrasKind decides which multi-select path is honored; a
// request down the other path fails the precondition rather than being
// silently coerced.
func resolveSelections(item domain.MenuItem, in AddInput) (domain.Selections, error) {
	var sel domain.Selections
	sel.Note = strings.TrimSpace(in.Note)

	if in.SizeLabel != "" {
		opt, ok := findOption(item.Sizes, in.SizeLabel)
		if !ok {
			return sel, fmt.Errorf("size %q: %w", in.SizeLabel, domain.ErrPreconditionFailed)
		}
		sel.Size = &opt
	}
	if in.BaseLabel != "" {
		opt, ok := findOption(item.Bases, in.BaseLabel)
		if !ok {
			return sel, fmt.Errorf("base %q: %w", in.BaseLabel, domain.ErrPreconditionFailed)
		}
		sel.Base = &opt
	}

	switch item.ExtrasKind {
	case domain.ExtrasToppings:
		if len(in.AddOnLabels) > 0 {
			return sel, fmt.Errorf("item offers toppings, not add-ons: %w", domain.ErrPreconditionFailed)
		}
		opts, err := findOptions(item.Extras, in.ToppingLabels)
		if err != nil {
			return sel, err
		}
		sel.Toppings = opts
	case domain.ExtrasAddOns:
		if len(in.ToppingLabels) > 0 {
			return sel, fmt.Errorf("item offers add-ons, not toppings: %w", domain.ErrPreconditionFailed)
		}
		opts, err := findOptions(item.Extras, in.AddOnLabels)
		if err != nil {
			return sel, err
		}
		sel.AddOns = opts
	default:
		if len(in.ToppingLabels) > 0 || len(in.AddOnLabels) > 0 {
			return sel, fmt.Errorf("item offers no extras: %w", domain.ErrPreconditionFailed)
		}
	}
	return sel, nil
}

func findOption(opts []domain.Option, label string) (domain.Option, bool) {
	for _, o := range opts {
		if o.Label == label {
			return o, true
		}
	}
	return domain.Option{}, false
}

func findOptions(opts []domain.Option, labels []string) ([]domain.Option, error) {
	if len(labels) == 0 {
		return nil, nil
	}
	out := make([]domain.Option, 0, len(labels))
	for _, label := range labels {
		o, ok := findOption(opts, label)
		if !ok {
			return nil, fmt.Errorf("extra %q: %w", label, domain.ErrPreconditionFailed)
		}
		out = append(out, o)
	}
	return out, nil
}
