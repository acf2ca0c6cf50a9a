// Package stock derives per-product availability from the catalog and
// cart snapshots. It is a presentation-state projection: a pure
// function of the two snapshots, recomputed after every load and every
// successful mutation, and it never calls the remote services.
package stock

import (
	"fmt"
	"sync"

	"storefront/internal/model"
)

// Source describes where a view's quantities came from. Business logic
// must only ever trust Confirmed values, which are derived from a
// genuine server refetch; Pending views exist purely so the UI can
// show the likely outcome of an in-flight mutation.
type Source int

const (
	// SourceUnknown means no view has been computed for the product.
	SourceUnknown Source = iota
	// SourceConfirmed means the view was derived from real snapshots.
	SourceConfirmed
	// SourcePending means the view is an optimistic projection and is
	// discarded by the next reconcile.
	SourcePending
)

// View is the derived availability state for one product.
type View struct {
	ProductID string `json:"productId"`
	Available int    `json:"available"` // stock minus quantity committed to the cart
	InCart    int    `json:"inCart"`    // quantity already committed
	CanAdd    bool   `json:"canAdd"`    // Available > 0
	Label     string `json:"label"`     // display label for the stock state
	Source    Source `json:"-"`
}

// Available computes remaining stock given catalog stock and the
// quantity already committed to the cart. May be negative when the
// cart holds more than the catalog currently reports.
func Available(stock, inCart int) int {
	return stock - inCart
}

// label renders the display text for an availability state.
func label(available, inCart int) string {
	if available > 0 {
		return fmt.Sprintf("In Stock: %d", available)
	}
	if inCart > 0 {
		return "Limit Reached"
	}
	return "Out of Stock"
}

// Project computes confirmed views for every product in catalog order.
// Pure: reads only the given snapshots.
func Project(products []model.Product, lines []model.CartLine) []View {
	inCart := make(map[string]int, len(lines))
	for _, l := range lines {
		inCart[l.ProductID] += l.Quantity
	}

	views := make([]View, 0, len(products))
	for _, p := range products {
		avail := Available(p.Stock, inCart[p.ProductID])
		views = append(views, View{
			ProductID: p.ProductID,
			Available: avail,
			InCart:    inCart[p.ProductID],
			CanAdd:    avail > 0,
			Label:     label(avail, inCart[p.ProductID]),
			Source:    SourceConfirmed,
		})
	}
	return views
}

// Engine republishes the derived views for consumption by the
// presentation layer. It holds no business state of its own.
type Engine struct {
	mu    sync.RWMutex
	views map[string]View
	order []string
}

// NewEngine creates an engine with no published views.
func NewEngine() *Engine {
	return &Engine{views: make(map[string]View)}
}

// Reconcile recomputes and republishes views from the given snapshots,
// discarding any pending projections. Callers must pass genuine
// snapshots and must not invoke this before both stores have loaded;
// reconciling against a missing cart would flash incorrect "in stock"
// states.
func (e *Engine) Reconcile(products []model.Product, lines []model.CartLine) {
	projected := Project(products, lines)

	views := make(map[string]View, len(projected))
	order := make([]string, 0, len(projected))
	for _, v := range projected {
		views[v.ProductID] = v
		order = append(order, v.ProductID)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.views = views
	e.order = order
}

// MarkPending republishes a provisional view projecting one more unit
// in the cart, marked SourcePending. A rendering hint only: the next
// Reconcile replaces it, and nothing should make decisions from it.
func (e *Engine) MarkPending(productID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.views[productID]
	if !ok {
		return
	}
	v.InCart++
	v.Available = v.Available - 1
	v.CanAdd = v.Available > 0
	v.Label = label(v.Available, v.InCart)
	v.Source = SourcePending
	e.views[productID] = v
}

// View returns the published view for a product. The zero View with
// SourceUnknown is returned for products never reconciled.
func (e *Engine) View(productID string) View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.views[productID]
}

// Views returns all published views in catalog order.
func (e *Engine) Views() []View {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]View, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.views[id])
	}
	return out
}
