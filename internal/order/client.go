// Package order submits individual orders to the remote order service.
// Each submission covers a single unit; multi-line carts are converted
// into a sequence of submissions by the checkout orchestrator.
package order

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/remote"
)

const serviceName = "order"

// Client submits orders.
type Client struct {
	remote  *remote.Client
	baseURL string
}

// NewClient creates an order client.
func NewClient(rc *remote.Client, baseURL string) *Client {
	return &Client{remote: rc, baseURL: baseURL}
}

// Submit places one order and returns the server-assigned receipt.
// A non-2xx response surfaces the service's text error body in the
// returned error; the caller decides whether to continue with further
// submissions.
func (c *Client) Submit(ctx context.Context, o model.Order) (model.OrderReceipt, error) {
	if o.UserID == "" {
		return model.OrderReceipt{}, model.NewValidationError("userId", "required to place an order")
	}
	if o.ProductID == "" {
		return model.OrderReceipt{}, model.NewValidationError("productId", "required to place an order")
	}
	if o.Address == "" {
		return model.OrderReceipt{}, model.NewValidationError("address", "required to place an order")
	}

	var receipt model.OrderReceipt
	if err := c.remote.PostJSON(ctx, serviceName, c.baseURL, o, &receipt); err != nil {
		return model.OrderReceipt{}, err
	}
	return receipt, nil
}
