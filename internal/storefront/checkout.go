package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storefront/internal/model"
)

var (
	// ErrCartEmpty aborts checkout before any prompt or submission.
	ErrCartEmpty = errors.New("cart is empty")

	// ErrCanceled reports that the buyer declined the confirmation.
	ErrCanceled = errors.New("purchase canceled")
)

// Prompter collects checkout input from the buyer. The CLI backs it
// with terminal prompts; the daemon backs it with request fields.
type Prompter interface {
	// Address returns the shipping address for the whole order batch.
	Address(ctx context.Context) (string, error)

	// Confirm asks the buyer to approve the described purchase.
	Confirm(ctx context.Context, summary string) (bool, error)
}

// StaticPrompter answers prompts from fixed values. The daemon uses it
// to carry request fields through the interactive flow.
type StaticPrompter struct {
	ShippingAddress string
	Approved        bool
}

func (p StaticPrompter) Address(context.Context) (string, error) {
	return p.ShippingAddress, nil
}

func (p StaticPrompter) Confirm(context.Context, string) (bool, error) {
	return p.Approved, nil
}

// CheckoutResult reports the outcome of one checkout batch.
type CheckoutResult struct {
	// Reference identifies the batch in logs and receipts. It is
	// synthesized client-side; the order service numbers each order
	// independently.
	Reference string `json:"reference"`

	Attempted int `json:"attempted"` // order submissions attempted
	Succeeded int `json:"succeeded"` // order submissions accepted

	// OrderIDs lists the server-assigned IDs of accepted orders, in
	// submission order.
	OrderIDs []string `json:"orderIds,omitempty"`

	// Failures describes each rejected submission.
	Failures []string `json:"failures,omitempty"`

	// CartCleared is true when the original lines were deleted after
	// at least one success.
	CartCleared bool `json:"cartCleared"`

	Total int64 `json:"total"` // aggregate price of the batch, minor units
}

// BuyResult reports a direct single-unit purchase.
type BuyResult struct {
	Receipt model.OrderReceipt `json:"receipt"`
	Product model.Product      `json:"product"`
}

// Checkout converts the current cart into orders, one submission per
// unit of quantity, strictly sequential.
//
// A line with quantity N yields N submissions; each failure is recorded
// and the batch keeps going. If at least one submission succeeded the
// original lines are deleted, even when some failed, because the
// accepted orders already exist server-side and leaving their lines in
// the cart would double-charge on the next checkout. If nothing
// succeeded the cart is left untouched for retry.
func (s *Storefront) Checkout(ctx context.Context, prompter Prompter) (*CheckoutResult, error) {
	// Checkout always starts from a fresh snapshot, not whatever the
	// store happens to hold.
	lines, err := s.cartClient.Fetch(ctx, s.identity.UserID)
	if err != nil {
		return nil, err
	}
	s.cartStore.Replace(lines)
	s.reconcile()

	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	address, err := prompter.Address(ctx)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, model.NewValidationError("address", "shipping address is required")
	}

	result := &CheckoutResult{Reference: uuid.NewString()}
	for _, line := range lines {
		result.Total += line.Subtotal()
		for i := 0; i < line.Quantity; i++ {
			result.Attempted++
			receipt, err := s.orderClient.Submit(ctx, model.Order{
				ProductID: line.ProductID,
				Name:      line.Name,
				Price:     model.Money(line.Price),
				UserID:    s.identity.UserID,
				UserName:  s.identity.UserName,
				UserEmail: s.identity.Email,
				Address:   address,
			})
			if err != nil {
				result.Failures = append(result.Failures,
					fmt.Sprintf("%s: %v", line.Name, err))
				continue
			}
			result.Succeeded++
			result.OrderIDs = append(result.OrderIDs, receipt.OrderID)
		}
	}

	s.logger.Info("checkout batch finished",
		slog.String("reference", result.Reference),
		slog.Int("attempted", result.Attempted),
		slog.Int("succeeded", result.Succeeded),
	)

	if result.Succeeded > 0 {
		result.CartCleared = true
		for _, line := range lines {
			if err := s.cartClient.Remove(ctx, s.identity.UserID, line.ProductID); err != nil {
				// The order already exists; log and keep clearing.
				result.CartCleared = false
				s.logger.Warn("failed to clear cart line after checkout",
					slog.String("reference", result.Reference),
					slog.String("product_id", line.ProductID),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	s.resync(ctx)
	return result, nil
}

// BuyNow places a single-unit order for the product, bypassing the
// cart. The cart is not read or modified.
func (s *Storefront) BuyNow(ctx context.Context, productID string, prompter Prompter) (*BuyResult, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	product, ok := s.catalogStore.Get(productID)
	if !ok {
		return nil, model.NewValidationError("productId", "unknown product")
	}
	view := s.engine.View(productID)
	if !view.CanAdd {
		return nil, model.NewValidationError("quantity", "no stock remaining for "+product.Name)
	}

	address, err := prompter.Address(ctx)
	if err != nil {
		return nil, err
	}
	if address == "" {
		return nil, model.NewValidationError("address", "shipping address is required")
	}

	summary := fmt.Sprintf("Buy %s for %s?", product.Name, model.FormatCents(product.Price))
	ok, err = prompter.Confirm(ctx, summary)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCanceled
	}

	receipt, err := s.orderClient.Submit(ctx, model.Order{
		ProductID: product.ProductID,
		Name:      product.Name,
		Price:     model.Money(product.Price),
		UserID:    s.identity.UserID,
		UserName:  s.identity.UserName,
		UserEmail: s.identity.Email,
		Address:   address,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("direct purchase placed",
		slog.String("product_id", productID),
		slog.String("order_id", receipt.OrderID),
	)
	s.resync(ctx)
	return &BuyResult{Receipt: receipt, Product: product}, nil
}
