// Package storefront orchestrates the storefront operations: loading
// catalog and cart snapshots, optimistic cart mutations with
// rollback-by-refetch, and sequential checkout. It is the only writer
// of store state, and it always writes by refetching from the remote
// services, never by merging locally.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/model"
	"storefront/internal/order"
	"storefront/internal/stock"
)

// Operations is the storefront surface consumed by the CLI and the
// daemon handlers.
type Operations interface {
	// Refresh fetches catalog and cart concurrently and reconciles.
	Refresh(ctx context.Context) error

	// Products returns the catalog with derived availability views,
	// loading snapshots first if needed.
	Products(ctx context.Context) ([]ProductView, error)

	// Cart returns the current cart summary after a fresh load.
	Cart(ctx context.Context) (CartSummary, error)

	// AddToCart adds one unit of the product to the server-held cart.
	AddToCart(ctx context.Context, productID string) error

	// RemoveFromCart removes the product's line entirely.
	RemoveFromCart(ctx context.Context, productID string) error

	// Checkout converts the cart into sequential order submissions.
	Checkout(ctx context.Context, prompter Prompter) (*CheckoutResult, error)

	// BuyNow places a single-unit order for the product.
	BuyNow(ctx context.Context, productID string, prompter Prompter) (*BuyResult, error)
}

// ProductView pairs a catalog product with its derived availability.
type ProductView struct {
	Product model.Product `json:"product"`
	View    stock.View    `json:"availability"`
}

// CartSummary is the cart snapshot with its display aggregates.
type CartSummary struct {
	Lines []model.CartLine `json:"lines"`
	Count int              `json:"count"` // total units across lines
	Total int64            `json:"total"` // aggregate price in minor units
}

// Storefront implements Operations against the remote services.
type Storefront struct {
	catalogClient *catalog.Client
	catalogStore  *catalog.Store
	cartClient    *cart.Client
	cartStore     *cart.Store
	orderClient   *order.Client
	engine        *stock.Engine
	identity      model.Identity
	logger        *slog.Logger
}

// New creates a storefront for the given signed-in identity. Callers
// resolve the identity from the stored token first; there is no guest
// mode.
func New(catalogClient *catalog.Client, cartClient *cart.Client, orderClient *order.Client, identity model.Identity, logger *slog.Logger) *Storefront {
	return &Storefront{
		catalogClient: catalogClient,
		catalogStore:  catalog.NewStore(),
		cartClient:    cartClient,
		cartStore:     cart.NewStore(),
		orderClient:   orderClient,
		engine:        stock.NewEngine(),
		identity:      identity,
		logger:        logger,
	}
}

// Identity returns the signed-in buyer identity.
func (s *Storefront) Identity() model.Identity {
	return s.identity
}

// Engine exposes the published availability views.
func (s *Storefront) Engine() *stock.Engine {
	return s.engine
}

// reconcile republishes availability views. Deferred until both
// snapshots have loaded so the UI never flashes "in stock" before the
// cart is known.
func (s *Storefront) reconcile() {
	if !s.catalogStore.Loaded() || !s.cartStore.Loaded() {
		return
	}
	s.engine.Reconcile(s.catalogStore.Snapshot(), s.cartStore.Snapshot())
}

// Refresh loads catalog and cart concurrently. The two fetches are
// independent reads, so they fan out; each store is replaced wholesale
// on success, and reconciliation runs once both are in.
func (s *Storefront) Refresh(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		catalogErr error
		cartErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, err := s.catalogClient.Fetch(ctx)
		if err != nil {
			catalogErr = err
			return
		}
		s.catalogStore.Replace(products)
	}()
	go func() {
		defer wg.Done()
		lines, err := s.cartClient.Fetch(ctx, s.identity.UserID)
		if err != nil {
			cartErr = err
			return
		}
		s.cartStore.Replace(lines)
	}()
	wg.Wait()

	s.reconcile()
	return errors.Join(catalogErr, cartErr)
}

// resync discards any optimistic state by refetching both snapshots.
// Best effort: the triggering failure is what gets surfaced, not a
// secondary fetch error.
func (s *Storefront) resync(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("resynchronization failed",
			slog.String("error", err.Error()),
		)
	}
}

// loadCart fetches the cart fresh, replaces the snapshot wholesale,
// and reconciles.
func (s *Storefront) loadCart(ctx context.Context) error {
	lines, err := s.cartClient.Fetch(ctx, s.identity.UserID)
	if err != nil {
		return err
	}
	s.cartStore.Replace(lines)
	s.reconcile()
	return nil
}

// ensureLoaded refreshes once if either snapshot has never loaded.
func (s *Storefront) ensureLoaded(ctx context.Context) error {
	if s.catalogStore.Loaded() && s.cartStore.Loaded() {
		return nil
	}
	return s.Refresh(ctx)
}

// Products returns every catalog product with its availability view.
func (s *Storefront) Products(ctx context.Context) ([]ProductView, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	products := s.catalogStore.Snapshot()
	out := make([]ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, ProductView{Product: p, View: s.engine.View(p.ProductID)})
	}
	return out, nil
}

// Cart loads the cart fresh and returns its summary.
func (s *Storefront) Cart(ctx context.Context) (CartSummary, error) {
	if err := s.loadCart(ctx); err != nil {
		return CartSummary{}, err
	}
	return CartSummary{
		Lines: s.cartStore.Snapshot(),
		Count: s.cartStore.Count(),
		Total: s.cartStore.Total(),
	}, nil
}

// AddToCart adds one unit of the product with an optimistic projection.
//
// The local stock guard only avoids obviously-futile requests; the
// server still enforces its own limits. On success the cart is
// refetched rather than incremented locally, and on failure both
// snapshots are refetched so no optimistic state survives.
func (s *Storefront) AddToCart(ctx context.Context, productID string) error {
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}

	product, ok := s.catalogStore.Get(productID)
	if !ok {
		return model.NewValidationError("productId", "unknown product")
	}
	if s.cartStore.Quantity(productID) >= product.Stock {
		return model.NewValidationError("quantity", "no stock remaining for "+product.Name)
	}

	// Provisional view so the UI reflects the likely outcome before
	// the round trip completes.
	s.engine.MarkPending(productID)

	if err := s.cartClient.Add(ctx, s.identity.UserID, product); err != nil {
		s.logger.Warn("add to cart failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
		s.resync(ctx)
		return err
	}

	s.logger.Info("added to cart", slog.String("product_id", productID))
	return s.loadCart(ctx)
}

// RemoveFromCart deletes the product's line. Win or lose, the cart is
// refetched afterwards so the snapshot matches the server.
func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) error {
	removeErr := s.cartClient.Remove(ctx, s.identity.UserID, productID)
	if removeErr != nil {
		s.logger.Warn("remove from cart failed",
			slog.String("product_id", productID),
			slog.String("error", removeErr.Error()),
		)
	}
	if err := s.loadCart(ctx); err != nil && removeErr == nil {
		return err
	}
	return removeErr
}
