package cart

import (
	"context"
	"fmt"

	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
	"github.com/harborlane/storefront-backend/pkg/metrics"
)

// Storage persists the line list (and only the line list) keyed by session.
// A missing session yields (nil, nil): the cart starts empty.
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]Line, error)
	Save(ctx context.Context, sessionID string, lines []Line) error
	Delete(ctx context.Context, sessionID string) error
}

// Service wraps the pure cart aggregate with load/mutate/persist per session.
// Totals are recomputed from the line list on every load and after every
// mutation; persisted totals are never trusted.
type Service struct {
	storage Storage
	policy  PricingPolicy
	logg    *logger.Logger
	metrics *metrics.CartMetrics
}

// NewService builds the cart service backed by the provided storage.
func NewService(storage Storage, policy PricingPolicy, logg *logger.Logger, cartMetrics *metrics.CartMetrics) (*Service, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	if policy.TaxRate.IsNegative() || policy.FlatShippingFee.IsNegative() {
		return nil, fmt.Errorf("pricing policy must be non-negative")
	}
	return &Service{
		storage: storage,
		policy:  policy,
		logg:    logg,
		metrics: cartMetrics,
	}, nil
}

// Policy exposes the active pricing constants.
func (s *Service) Policy() PricingPolicy {
	return s.policy
}

// Fetch rehydrates the session's cart and recomputes its totals.
func (s *Service) Fetch(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	lines, err := s.storage.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	cart := NewCart()
	cart.Lines = lines
	cart.Totals = ComputeTotals(cart.Lines, s.policy)
	return cart, nil
}

// AddItem merges or appends a line and persists the result.
func (s *Service) AddItem(ctx context.Context, sessionID string, product Product, quantity int, variantID string) (*Cart, Outcome, error) {
	if product.ID == "" {
		return nil, OutcomeNotFound, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	cart, err := s.Fetch(ctx, sessionID)
	if err != nil {
		return nil, OutcomeNotFound, err
	}
	_, outcome := cart.AddItem(product, quantity, variantID)
	if err := s.finish(ctx, sessionID, cart, "add_item"); err != nil {
		return nil, outcome, err
	}
	return cart, outcome, nil
}

// UpdateQuantity sets an absolute quantity; zero or below removes the line.
// An unknown line id is reported, not errored, and nothing is re-persisted.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Cart, Outcome, error) {
	cart, err := s.Fetch(ctx, sessionID)
	if err != nil {
		return nil, OutcomeNotFound, err
	}
	outcome := cart.UpdateQuantity(lineID, quantity)
	if outcome == OutcomeNotFound {
		return cart, outcome, nil
	}
	if err := s.finish(ctx, sessionID, cart, "update_quantity"); err != nil {
		return nil, outcome, err
	}
	return cart, outcome, nil
}

// RemoveItem deletes a line by id; unknown ids are reported, not errored.
func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*Cart, Outcome, error) {
	cart, err := s.Fetch(ctx, sessionID)
	if err != nil {
		return nil, OutcomeNotFound, err
	}
	outcome := cart.RemoveItem(lineID)
	if outcome == OutcomeNotFound {
		return cart, outcome, nil
	}
	if err := s.finish(ctx, sessionID, cart, "remove_item"); err != nil {
		return nil, outcome, err
	}
	return cart, outcome, nil
}

// Clear drops the session's cart entirely. Used by the shopper and after a
// successful checkout hand-off so purchased items cannot be re-submitted.
func (s *Service) Clear(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := s.storage.Delete(ctx, sessionID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.metrics.IncMutation("clear")
	return NewCart(), nil
}

func (s *Service) finish(ctx context.Context, sessionID string, cart *Cart, op string) error {
	cart.Totals = ComputeTotals(cart.Lines, s.policy)
	if err := s.storage.Save(ctx, sessionID, cart.Lines); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	s.metrics.IncMutation(op)
	return nil
}
