// MCP transport handler for the storefront using the official MCP Go
// SDK. Exposes the signed-in buyer's catalog, cart, and checkout
// operations as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"storefront/internal/model"
	"storefront/internal/storefront"
)

// === MCP Tool Input/Output Types ===

// ListProductsInput is the input schema for the list_products tool.
type ListProductsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"force a fresh catalog and cart fetch before listing"`
}

// ListProductsOutput wraps the catalog views for MCP clients.
type ListProductsOutput struct {
	Products []storefront.ProductView `json:"products" jsonschema:"catalog products with availability"`
}

// GetCartInput is the input schema for the get_cart tool.
type GetCartInput struct{}

// CartItemInput identifies a product for cart mutations.
type CartItemInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID,required"`
}

// CheckoutInput is the input schema for the checkout tool.
type CheckoutInput struct {
	Address string `json:"address" jsonschema:"shipping address for the whole order batch,required"`
}

// BuyNowInput is the input schema for the buy_now tool.
type BuyNowInput struct {
	ProductID string `json:"product_id" jsonschema:"product ID,required"`
	Address   string `json:"address" jsonschema:"shipping address,required"`
}

// NewMCPServer creates an MCP server with storefront tools registered.
// The server exposes the same operations as the REST API but via MCP
// protocol.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront shopping operations for the signed-in buyer. " +
				"Use these tools to browse products, manage the cart, and place orders.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List catalog products with per-product availability, accounting for units already in the cart.",
	}, h.mcpListProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_cart",
		Description: "Get the current cart lines with unit count and total.",
	}, h.mcpGetCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_to_cart",
		Description: "Add one unit of a product to the cart. Rejected locally when no stock remains.",
	}, h.mcpAddToCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remove_from_cart",
		Description: "Remove a product's line from the cart entirely.",
	}, h.mcpRemoveFromCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "checkout",
		Description: "Convert the cart into orders, one per unit of quantity, shipped to one address.",
	}, h.mcpCheckout)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "buy_now",
		Description: "Place a single-unit order for a product immediately, bypassing the cart.",
	}, h.mcpBuyNow)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpListProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, *ListProductsOutput, error) {
	if input.Refresh {
		if err := h.store.Refresh(ctx); err != nil {
			return nil, nil, h.mcpError(err)
		}
	}

	views, err := h.store.Products(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &ListProductsOutput{Products: views}, nil
}

func (h *Handler) mcpGetCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetCartInput,
) (*mcp.CallToolResult, *storefront.CartSummary, error) {
	summary, err := h.store.Cart(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &summary, nil
}

func (h *Handler) mcpAddToCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartItemInput,
) (*mcp.CallToolResult, *storefront.CartSummary, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}

	if err := h.store.AddToCart(ctx, input.ProductID); err != nil {
		return nil, nil, h.mcpError(err)
	}

	summary, err := h.store.Cart(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &summary, nil
}

func (h *Handler) mcpRemoveFromCart(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartItemInput,
) (*mcp.CallToolResult, *storefront.CartSummary, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}

	if err := h.store.RemoveFromCart(ctx, input.ProductID); err != nil {
		return nil, nil, h.mcpError(err)
	}

	summary, err := h.store.Cart(ctx)
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, &summary, nil
}

func (h *Handler) mcpCheckout(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CheckoutInput,
) (*mcp.CallToolResult, *storefront.CheckoutResult, error) {
	result, err := h.store.Checkout(ctx, storefront.StaticPrompter{
		ShippingAddress: input.Address,
		Approved:        true,
	})
	if errors.Is(err, storefront.ErrCartEmpty) {
		return nil, nil, fmt.Errorf("cart is empty")
	}
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, result, nil
}

func (h *Handler) mcpBuyNow(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input BuyNowInput,
) (*mcp.CallToolResult, *storefront.BuyResult, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}

	result, err := h.store.BuyNow(ctx, input.ProductID, storefront.StaticPrompter{
		ShippingAddress: input.Address,
		Approved:        true,
	})
	if err != nil {
		return nil, nil, h.mcpError(err)
	}
	return nil, result, nil
}

// mcpError converts storefront errors to MCP-friendly errors.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	// Don't leak internal error details
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
