package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/harborlane/storefront-backend/internal/cart"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
	"github.com/harborlane/storefront-backend/pkg/metrics"
	redisclient "github.com/harborlane/storefront-backend/pkg/redis"
	"github.com/harborlane/storefront-backend/pkg/shopify"
)

// ShopifyClient is the provider surface the reconciler drives.
type ShopifyClient interface {
	CartCreate(ctx context.Context, lines []shopify.LineInput) (*shopify.Cart, error)
	CartFetch(ctx context.Context, cartID string) (*shopify.Cart, error)
	CartLinesAdd(ctx context.Context, cartID string, lines []shopify.LineInput) (*shopify.Cart, error)
	CartLinesUpdate(ctx context.Context, cartID string, lines []shopify.LineUpdateInput) (*shopify.Cart, error)
	CartLinesRemove(ctx context.Context, cartID string, lineIDs []string) (*shopify.Cart, error)
}

type cartIDCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RemoteCartKey(sessionID string) string
}

// Service projects local cart state onto the provider's cart resource at
// checkout time. The remote cart id is cached per session so a second
// checkout attempt resumes the same remote cart instead of creating a
// duplicate. Local and remote carts are never continuously synced.
type Service struct {
	provider ShopifyClient
	cache    cartIDCache
	ttl      time.Duration
	logg     *logger.Logger
	metrics  *metrics.CartMetrics
}

// NewService wires the reconciler to the provider client and the id cache.
func NewService(provider ShopifyClient, cache *redisclient.Client, ttl time.Duration, logg *logger.Logger, cartMetrics *metrics.CartMetrics) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("shopify client is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("remote cart id cache is required")
	}
	return &Service{
		provider: provider,
		cache:    cache,
		ttl:      ttl,
		logg:     logg,
		metrics:  cartMetrics,
	}, nil
}

// GetOrCreateCart resumes the cached remote cart when possible, otherwise
// creates a fresh empty one. A stale cached id falls through to creation.
func (s *Service) GetOrCreateCart(ctx context.Context, sessionID string) (*shopify.Cart, error) {
	cartID, err := s.cachedCartID(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read remote cart id")
	}
	if cartID != "" {
		remote, fetchErr := s.provider.CartFetch(ctx, cartID)
		if fetchErr == nil {
			return remote, nil
		}
		if s.logg != nil {
			warnCtx := s.logg.WithFields(ctx, map[string]any{"remote_cart_id": cartID, "error": fetchErr.Error()})
			s.logg.Warn(warnCtx, "stale remote cart, creating a new one")
		}
	}
	return s.CreateCart(ctx, sessionID, nil)
}

// CreateCart asks the provider for a new cart, optionally pre-seeded, and on
// success records its id for subsequent calls in the session.
func (s *Service) CreateCart(ctx context.Context, sessionID string, lines []shopify.LineInput) (*shopify.Cart, error) {
	remote, err := s.provider.CartCreate(ctx, lines)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, s.cache.RemoteCartKey(sessionID), remote.ID, s.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache remote cart id")
	}
	return remote, nil
}

// AddLine ensures a remote cart exists, then appends or increments a line.
func (s *Service) AddLine(ctx context.Context, sessionID, merchandiseID string, quantity int) (*shopify.Cart, error) {
	remote, err := s.GetOrCreateCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.provider.CartLinesAdd(ctx, remote.ID, []shopify.LineInput{{
		MerchandiseID: merchandiseID,
		Quantity:      quantity,
	}})
}

// UpdateLineQuantity mutates an existing remote line; it requires a remote
// cart to already be known for the session.
func (s *Service) UpdateLineQuantity(ctx context.Context, sessionID, remoteLineID string, quantity int) (*shopify.Cart, error) {
	cartID, err := s.requireCartID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.provider.CartLinesUpdate(ctx, cartID, []shopify.LineUpdateInput{{
		LineID:   remoteLineID,
		Quantity: quantity,
	}})
}

// RemoveLine deletes a remote line; it requires a known remote cart.
func (s *Service) RemoveLine(ctx context.Context, sessionID, remoteLineID string) (*shopify.Cart, error) {
	cartID, err := s.requireCartID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.provider.CartLinesRemove(ctx, cartID, []string{remoteLineID})
}

// ProjectCart walks the local lines in order and mirrors each onto the remote
// cart, awaiting every call before issuing the next: each call depends on the
// remote cart id established by the one before it. Lines without a resolvable
// variant are skipped with a warning; any remote failure aborts the rest of
// the sequence. A checkout URL is returned only when at least one line landed.
func (s *Service) ProjectCart(ctx context.Context, sessionID string, lines []cart.Line) (*shopify.Cart, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveReconcile(time.Since(start))
	}()

	var remote *shopify.Cart
	attempted := 0
	for _, line := range lines {
		merchandiseID := cart.ResolveVariantID(line.Product, line.VariantID)
		if merchandiseID == "" {
			if s.logg != nil {
				warnCtx := s.logg.WithFields(ctx, map[string]any{
					"line_id":    line.ID,
					"product_id": line.Product.ID,
				})
				s.logg.Warn(warnCtx, "skipping cart line without resolvable variant")
			}
			continue
		}

		attempted++
		updated, err := s.AddLine(ctx, sessionID, merchandiseID, line.Quantity)
		if err != nil {
			return nil, err
		}
		remote = updated
	}

	if attempted == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no cart lines could be resolved for checkout")
	}
	if remote == nil || remote.CheckoutURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no checkout url obtained")
	}
	return remote, nil
}

func (s *Service) cachedCartID(ctx context.Context, sessionID string) (string, error) {
	cartID, err := s.cache.Get(ctx, s.cache.RemoteCartKey(sessionID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", nil
		}
		return "", err
	}
	return cartID, nil
}

func (s *Service) requireCartID(ctx context.Context, sessionID string) (string, error) {
	cartID, err := s.cachedCartID(ctx, sessionID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read remote cart id")
	}
	if cartID == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no remote cart for session")
	}
	return cartID, nil
}
