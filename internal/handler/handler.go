// Package handler provides HTTP handlers for the storefront daemon
// API. It exposes the signed-in buyer's storefront over REST and MCP.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/model"
	"storefront/internal/storefront"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	store  storefront.Operations
	logger *slog.Logger
}

// New creates a Handler over the given storefront operations.
func New(store storefront.Operations, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("POST /products/{id}/buy", h.handleBuyNow)

	mux.HandleFunc("GET /cart", h.handleGetCart)
	mux.HandleFunc("POST /cart/items", h.handleAddToCart)
	mux.HandleFunc("DELETE /cart/items/{id}", h.handleRemoveFromCart)

	mux.HandleFunc("POST /checkout", h.handleCheckout)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	views, err := h.store.Products(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"products": views})
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.Cart(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// addItemRequest is the body for POST /cart/items.
type addItemRequest struct {
	ProductID string `json:"productId"`
}

func (h *Handler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.ProductID == "" {
		h.writeError(w, model.NewValidationError("productId", "productId is required"))
		return
	}

	if err := h.store.AddToCart(r.Context(), req.ProductID); err != nil {
		h.writeError(w, err)
		return
	}

	summary, err := h.store.Cart(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, summary)
}

func (h *Handler) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")
	if productID == "" {
		h.writeError(w, model.NewValidationError("productId", "productId is required"))
		return
	}

	if err := h.store.RemoveFromCart(r.Context(), productID); err != nil {
		h.writeError(w, err)
		return
	}

	summary, err := h.store.Cart(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// checkoutRequest is the body for POST /checkout.
type checkoutRequest struct {
	Address string `json:"address"`
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.store.Checkout(r.Context(), storefront.StaticPrompter{
		ShippingAddress: req.Address,
		Approved:        true,
	})
	if errors.Is(err, storefront.ErrCartEmpty) {
		h.writeError(w, model.NewValidationError("cart", "cart is empty"))
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// buyNowRequest is the body for POST /products/{id}/buy.
type buyNowRequest struct {
	Address string `json:"address"`
}

func (h *Handler) handleBuyNow(w http.ResponseWriter, r *http.Request) {
	productID := r.PathValue("id")

	var req buyNowRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.store.BuyNow(r.Context(), productID, storefront.StaticPrompter{
		ShippingAddress: req.Address,
		Approved:        true,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from
// APIError if present. Uses errors.As() to unwrap wrapped chains.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	status := apiErr.StatusCode
	if status == 0 {
		// Network failures have no upstream status; the remote side
		// was unreachable.
		status = http.StatusBadGateway
	}

	h.writeJSON(w, status, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from the request body into v.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to the client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
