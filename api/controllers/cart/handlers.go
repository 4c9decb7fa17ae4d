package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborlane/storefront-backend/api/middleware"
	"github.com/harborlane/storefront-backend/api/responses"
	"github.com/harborlane/storefront-backend/api/validators"
	cartsvc "github.com/harborlane/storefront-backend/internal/cart"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
)

// Service is the slice of the cart service the HTTP layer needs.
type Service interface {
	Fetch(ctx context.Context, sessionID string) (*cartsvc.Cart, error)
	AddItem(ctx context.Context, sessionID string, product cartsvc.Product, quantity int, variantID string) (*cartsvc.Cart, cartsvc.Outcome, error)
	UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*cartsvc.Cart, cartsvc.Outcome, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (*cartsvc.Cart, cartsvc.Outcome, error)
	Clear(ctx context.Context, sessionID string) (*cartsvc.Cart, error)
}

type Controller struct {
	service Service
	logg    *logger.Logger
}

func NewController(service Service, logg *logger.Logger) *Controller {
	return &Controller{service: service, logg: logg}
}

// Fetch returns the session's cart, rehydrated and re-totalled.
func (c *Controller) Fetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)

	cart, err := c.service.Fetch(ctx, sessionID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, newCartResponse(cart))
}

// AddItem merges the posted product into the cart.
func (c *Controller) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)

	var req AddItemRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	product, err := req.Product.toProduct()
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	cart, outcome, err := c.service.AddItem(ctx, sessionID, product, req.Quantity, req.VariantID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, newMutationResponse(cart, outcome))
}

// UpdateItem sets an absolute quantity on an existing line. Zero or below
// removes the line; an unknown line id comes back as outcome "not_found"
// with the cart unchanged.
func (c *Controller) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)
	lineID := chi.URLParam(r, "lineID")

	var req UpdateQuantityRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	cart, outcome, err := c.service.UpdateQuantity(ctx, sessionID, lineID, *req.Quantity)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, newMutationResponse(cart, outcome))
}

// RemoveItem deletes a line by id.
func (c *Controller) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)
	lineID := chi.URLParam(r, "lineID")

	cart, outcome, err := c.service.RemoveItem(ctx, sessionID, lineID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, newMutationResponse(cart, outcome))
}

// Clear empties the cart for this session.
func (c *Controller) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)

	cart, err := c.service.Clear(ctx, sessionID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}
	responses.WriteSuccess(w, newCartResponse(cart))
}

// Visibility flips the drawer flag on the in-memory view. The flag is
// transient and never persisted, so this returns the adjusted cart without
// touching storage.
func (c *Controller) Visibility(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.SessionIDFromContext(ctx)

	var req VisibilityRequest
	if err := validators.DecodeJSONBody(r, &req); err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	cart, err := c.service.Fetch(ctx, sessionID)
	if err != nil {
		responses.WriteError(ctx, c.logg, w, err)
		return
	}

	switch req.Action {
	case "open":
		cart.Open()
	case "close":
		cart.Close()
	case "toggle":
		cart.Toggle()
	default:
		responses.WriteError(ctx, c.logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown visibility action"))
		return
	}
	responses.WriteSuccess(w, newCartResponse(cart))
}
