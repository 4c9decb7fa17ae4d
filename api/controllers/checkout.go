package controllers

import (
	"context"
	"net/http"

	"github.com/harborlane/storefront-backend/api/middleware"
	"github.com/harborlane/storefront-backend/api/responses"
	cartsvc "github.com/harborlane/storefront-backend/internal/cart"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
	"github.com/harborlane/storefront-backend/pkg/metrics"
	"github.com/harborlane/storefront-backend/pkg/shopify"
)

// CheckoutCartService is the slice of the cart service checkout needs.
type CheckoutCartService interface {
	Fetch(ctx context.Context, sessionID string) (*cartsvc.Cart, error)
	Clear(ctx context.Context, sessionID string) (*cartsvc.Cart, error)
}

// CheckoutReconciler projects local lines onto the provider cart.
type CheckoutReconciler interface {
	ProjectCart(ctx context.Context, sessionID string, lines []cartsvc.Line) (*shopify.Cart, error)
}

type CheckoutController struct {
	carts      CheckoutCartService
	reconciler CheckoutReconciler
	logg       *logger.Logger
	metrics    *metrics.CartMetrics
}

func NewCheckoutController(carts CheckoutCartService, reconciler CheckoutReconciler, logg *logger.Logger, cartMetrics *metrics.CartMetrics) *CheckoutController {
	return &CheckoutController{
		carts:      carts,
		reconciler: reconciler,
		logg:       logg,
		metrics:    cartMetrics,
	}
}

type checkoutResponse struct {
	CheckoutURL  string `json:"checkout_url"`
	RemoteCartID string `json:"remote_cart_id"`
}

// Checkout projects the session's local cart onto the provider and, when the
// hand-off succeeds, clears the local cart so purchased items cannot be
// re-submitted. On any projection failure the local cart is left untouched
// for retry.
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)

	cart, err := c.carts.Fetch(ctx, sessionID)
	if err != nil {
		c.metrics.IncCheckout("failure")
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	if len(cart.Lines) == 0 {
		c.metrics.IncCheckout("rejected")
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty"))
		return
	}

	remote, err := c.reconciler.ProjectCart(ctx, sessionID, cart.Lines)
	if err != nil {
		c.metrics.IncCheckout("failure")
		responses.WriteError(ctx, c.logg, w, pkgerrors.Wrap(pkgerrors.CodeCheckout, err, "checkout hand-off failed"))
		return
	}

	if _, err := c.carts.Clear(ctx, sessionID); err != nil {
		// The remote cart survives; a retry resumes it via the cached id.
		c.metrics.IncCheckout("failure")
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	c.metrics.IncCheckout("success")
	responses.WriteSuccess(w, checkoutResponse{
		CheckoutURL:  remote.CheckoutURL,
		RemoteCartID: remote.ID,
	})
}
