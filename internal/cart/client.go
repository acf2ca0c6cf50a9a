// Package cart talks to the remote cart service and caches the user's
// server-held cart lines. The server is authoritative for quantities
// and pricing; the client never increments locally, it refetches.
package cart

import (
	"context"
	"net/url"

	"storefront/internal/model"
	"storefront/internal/remote"
)

const serviceName = "cart"

// Client performs cart service calls scoped to a user.
type Client struct {
	remote  *remote.Client
	baseURL string
}

// NewClient creates a cart client.
func NewClient(rc *remote.Client, baseURL string) *Client {
	return &Client{remote: rc, baseURL: baseURL}
}

// wireLine is a cart line as the service returns it. Quantity may be
// absent on lines created before the service tracked it; treat as 1.
type wireLine struct {
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     model.Money `json:"price"`
	Quantity  *int        `json:"quantity"`
}

// addRequest is the body for an add/increment call. The service keys
// lines by (userId, productId) and increments quantity on repeat adds.
type addRequest struct {
	UserID    string      `json:"userId"`
	ProductID string      `json:"productId"`
	Name      string      `json:"name"`
	Price     model.Money `json:"price"`
}

// Fetch retrieves all cart lines for the user.
func (c *Client) Fetch(ctx context.Context, userID string) ([]model.CartLine, error) {
	if userID == "" {
		return nil, model.NewValidationError("userId", "required to load a cart")
	}

	var wire []wireLine
	if err := c.remote.GetJSON(ctx, serviceName, c.baseURL+"?userId="+url.QueryEscape(userID), &wire); err != nil {
		return nil, err
	}

	lines := make([]model.CartLine, 0, len(wire))
	for _, w := range wire {
		qty := 1
		if w.Quantity != nil && *w.Quantity > 0 {
			qty = *w.Quantity
		}
		lines = append(lines, model.CartLine{
			ProductID: w.ProductID,
			Name:      w.Name,
			Price:     int64(w.Price),
			Quantity:  qty,
		})
	}
	return lines, nil
}

// Add creates or increments the user's line for the product.
func (c *Client) Add(ctx context.Context, userID string, product model.Product) error {
	if userID == "" {
		return model.NewValidationError("userId", "required to add to a cart")
	}
	body := addRequest{
		UserID:    userID,
		ProductID: product.ProductID,
		Name:      product.Name,
		Price:     model.Money(product.Price),
	}
	return c.remote.PostJSON(ctx, serviceName, c.baseURL, body, nil)
}

// Remove deletes the user's line for the product. Both userID and
// productID are required; failing closed here protects against a
// delete call that the service would scope wider than one line.
func (c *Client) Remove(ctx context.Context, userID, productID string) error {
	if userID == "" {
		return model.NewValidationError("userId", "required to remove a cart line")
	}
	if productID == "" {
		return model.NewValidationError("productId", "required to remove a cart line")
	}

	q := url.Values{}
	q.Set("userId", userID)
	q.Set("productId", productID)
	return c.remote.Delete(ctx, serviceName, c.baseURL+"?"+q.Encode())
}
