// Package catalog fetches and caches product records from the remote
// catalog service. The in-memory snapshot is the source of truth for
// per-product stock for the current page of work; it is replaced
// wholesale on every refetch, never patched in place.
package catalog

import (
	"context"
	"encoding/json"

	"storefront/internal/model"
	"storefront/internal/remote"
)

const serviceName = "catalog"

// Client fetches the product catalog.
type Client struct {
	remote       *remote.Client
	baseURL      string
	defaultStock int
}

// NewClient creates a catalog client. defaultStock is the stock value
// assumed for records that omit the field; the catalog backend has
// partially-migrated data where stock is sometimes absent. A value of 0
// treats absent stock as out of stock.
func NewClient(rc *remote.Client, baseURL string, defaultStock int) *Client {
	return &Client{
		remote:       rc,
		baseURL:      baseURL,
		defaultStock: defaultStock,
	}
}

// wireProduct is a catalog record as the service returns it. Price may
// be a number or a decimal string; stock may be absent.
type wireProduct struct {
	ProductID   string      `json:"productId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       model.Money `json:"price"`
	Stock       *int        `json:"stock"`
	ImageURL    string      `json:"imageUrl"`
}

// Fetch retrieves the full catalog. Accepts both response shapes the
// service has used across deployments: a bare JSON array and a
// {"products": [...]} wrapper.
func (c *Client) Fetch(ctx context.Context) ([]model.Product, error) {
	var raw json.RawMessage
	if err := c.remote.GetJSON(ctx, serviceName, c.baseURL, &raw); err != nil {
		return nil, err
	}

	var wire []wireProduct
	if err := json.Unmarshal(raw, &wire); err != nil {
		var wrapper struct {
			Products []wireProduct `json:"products"`
		}
		if err2 := json.Unmarshal(raw, &wrapper); err2 != nil {
			return nil, model.NewDecodeError(serviceName, err)
		}
		wire = wrapper.Products
	}

	products := make([]model.Product, 0, len(wire))
	for _, w := range wire {
		stock := c.defaultStock
		if w.Stock != nil {
			stock = *w.Stock
		}
		if stock < 0 {
			stock = 0
		}
		products = append(products, model.Product{
			ProductID:   w.ProductID,
			Name:        w.Name,
			Description: w.Description,
			Price:       int64(w.Price),
			Stock:       stock,
			ImageURL:    w.ImageURL,
		})
	}
	return products, nil
}
