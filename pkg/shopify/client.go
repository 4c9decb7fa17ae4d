package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/harborlane/storefront-backend/pkg/config"
	pkgerrors "github.com/harborlane/storefront-backend/pkg/errors"
	"github.com/harborlane/storefront-backend/pkg/logger"
)

const (
	accessTokenHeader = "X-Shopify-Storefront-Access-Token"
	defaultTimeout    = 15 * time.Second
)

var (
	errStoreDomainRequired = errors.New("shopify store domain is required")
	errTokenRequired       = errors.New("shopify storefront token is required")
	errLoggerRequired      = errors.New("shopify logger is required")
)

const cartFieldsFragment = `
fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalTaxAmount { amount currencyCode }
    totalAmount { amount currencyCode }
  }
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            product { title }
          }
        }
      }
    }
  }
}`

// Client talks to the Shopify Storefront GraphQL API with centralized auth,
// logging, and error mapping. Application-level userErrors inside a 200
// response are surfaced as failures exactly like transport errors.
type Client struct {
	httpClient *http.Client
	endpoint   string
	token      string
	logger     *logger.Logger
}

// NewClient validates the Storefront credentials and builds the wrapper.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	domain := strings.TrimSpace(cfg.StoreDomain)
	if domain == "" {
		return nil, errStoreDomainRequired
	}
	token := strings.TrimSpace(cfg.StorefrontToken)
	if token == "" {
		return nil, errTokenRequired
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = "2025-07"
	}

	endpoint := domain
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = fmt.Sprintf("%s/api/%s/graphql.json", strings.TrimRight(endpoint, "/"), version)

	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		endpoint:   endpoint,
		token:      token,
		logger:     logg,
	}

	logg.Info(ctx, "shopify storefront client initialized")
	return c, nil
}

// Endpoint returns the resolved GraphQL endpoint.
func (c *Client) Endpoint() string {
	if c == nil {
		return ""
	}
	return c.endpoint
}

// CartCreate creates a provider cart, optionally pre-seeded with lines.
func (c *Client) CartCreate(ctx context.Context, lines []LineInput) (*Cart, error) {
	query := `mutation cartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { field message }
  }
}` + cartFieldsFragment

	input := map[string]any{}
	if len(lines) > 0 {
		input["lines"] = lineInputsToVars(lines)
	}
	var payload struct {
		CartCreate mutationPayload `json:"cartCreate"`
	}
	if err := c.do(ctx, "cart_create", query, map[string]any{"input": input}, &payload); err != nil {
		return nil, err
	}
	return c.finish(ctx, "cart_create", payload.CartCreate)
}

// CartFetch resumes an existing provider cart by id.
func (c *Client) CartFetch(ctx context.Context, cartID string) (*Cart, error) {
	query := `query cart($id: ID!) {
  cart(id: $id) { ...CartFields }
}` + cartFieldsFragment

	var payload struct {
		Cart *cartPayload `json:"cart"`
	}
	if err := c.do(ctx, "cart_fetch", query, map[string]any{"id": cartID}, &payload); err != nil {
		return nil, err
	}
	if payload.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "remote cart not found")
	}
	c.log(ctx, "response", "cart_fetch", map[string]any{"cart_id": payload.Cart.ID})
	return payload.Cart.toCart(), nil
}

// CartLinesAdd appends or increments lines on the provider cart.
func (c *Client) CartLinesAdd(ctx context.Context, cartID string, lines []LineInput) (*Cart, error) {
	query := `mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}` + cartFieldsFragment

	var payload struct {
		CartLinesAdd mutationPayload `json:"cartLinesAdd"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lineInputsToVars(lines)}
	if err := c.do(ctx, "cart_lines_add", query, vars, &payload); err != nil {
		return nil, err
	}
	return c.finish(ctx, "cart_lines_add", payload.CartLinesAdd)
}

// CartLinesUpdate mutates quantities on existing remote lines.
func (c *Client) CartLinesUpdate(ctx context.Context, cartID string, lines []LineUpdateInput) (*Cart, error) {
	query := `mutation cartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}` + cartFieldsFragment

	var payload struct {
		CartLinesUpdate mutationPayload `json:"cartLinesUpdate"`
	}
	vars := map[string]any{"cartId": cartID, "lines": lineUpdatesToVars(lines)}
	if err := c.do(ctx, "cart_lines_update", query, vars, &payload); err != nil {
		return nil, err
	}
	return c.finish(ctx, "cart_lines_update", payload.CartLinesUpdate)
}

// CartLinesRemove deletes remote lines by their provider ids.
func (c *Client) CartLinesRemove(ctx context.Context, cartID string, lineIDs []string) (*Cart, error) {
	query := `mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    userErrors { field message }
  }
}` + cartFieldsFragment

	var payload struct {
		CartLinesRemove mutationPayload `json:"cartLinesRemove"`
	}
	vars := map[string]any{"cartId": cartID, "lineIds": lineIDs}
	if err := c.do(ctx, "cart_lines_remove", query, vars, &payload); err != nil {
		return nil, err
	}
	return c.finish(ctx, "cart_lines_remove", payload.CartLinesRemove)
}

func (c *Client) finish(ctx context.Context, op string, payload mutationPayload) (*Cart, error) {
	if len(payload.UserErrors) > 0 {
		messages := make([]string, 0, len(payload.UserErrors))
		for _, ue := range payload.UserErrors {
			messages = append(messages, ue.Message)
		}
		c.log(ctx, "error", op, map[string]any{"error": strings.Join(messages, "; ")})
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s rejected", op)).
			WithDetails(map[string]any{"user_errors": payload.UserErrors})
	}
	if payload.Cart == nil {
		c.log(ctx, "error", op, map[string]any{"error": "empty cart payload"})
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s returned no cart", op))
	}
	c.log(ctx, "response", op, map[string]any{
		"cart_id":        payload.Cart.ID,
		"total_quantity": payload.Cart.TotalQuantity,
	})
	return payload.Cart.toCart(), nil
}

func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding graphql request")
	}

	c.log(ctx, "request", op, map[string]any{"variables": vars})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building graphql request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(accessTokenHeader, c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("shopify %s failed", op))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log(ctx, "error", op, map[string]any{"error": resp.Status})
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s failed: %s", op, resp.Status))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.log(ctx, "error", op, map[string]any{"error": err.Error()})
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding shopify %s response", op))
	}
	if len(envelope.Errors) > 0 {
		messages := make([]string, 0, len(envelope.Errors))
		for _, gqlErr := range envelope.Errors {
			messages = append(messages, gqlErr.Message)
		}
		c.log(ctx, "error", op, map[string]any{"error": strings.Join(messages, "; ")})
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s failed", op)).
			WithDetails(map[string]any{"graphql_errors": messages})
	}
	if len(envelope.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("shopify %s returned no data", op))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("decoding shopify %s payload", op))
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shopify %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shopify %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"token", "secret", "email", "phone"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}
