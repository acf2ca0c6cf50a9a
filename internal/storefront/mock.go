package storefront

import "context"

// Mock implements Operations with overridable function fields for
// handler tests. Unset fields return zero values.
type Mock struct {
	RefreshFunc        func(ctx context.Context) error
	ProductsFunc       func(ctx context.Context) ([]ProductView, error)
	CartFunc           func(ctx context.Context) (CartSummary, error)
	AddToCartFunc      func(ctx context.Context, productID string) error
	RemoveFromCartFunc func(ctx context.Context, productID string) error
	CheckoutFunc       func(ctx context.Context, prompter Prompter) (*CheckoutResult, error)
	BuyNowFunc         func(ctx context.Context, productID string, prompter Prompter) (*BuyResult, error)
}

var _ Operations = (*Mock)(nil)

func (m *Mock) Refresh(ctx context.Context) error {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx)
	}
	return nil
}

func (m *Mock) Products(ctx context.Context) ([]ProductView, error) {
	if m.ProductsFunc != nil {
		return m.ProductsFunc(ctx)
	}
	return nil, nil
}

func (m *Mock) Cart(ctx context.Context) (CartSummary, error) {
	if m.CartFunc != nil {
		return m.CartFunc(ctx)
	}
	return CartSummary{}, nil
}

func (m *Mock) AddToCart(ctx context.Context, productID string) error {
	if m.AddToCartFunc != nil {
		return m.AddToCartFunc(ctx, productID)
	}
	return nil
}

func (m *Mock) RemoveFromCart(ctx context.Context, productID string) error {
	if m.RemoveFromCartFunc != nil {
		return m.RemoveFromCartFunc(ctx, productID)
	}
	return nil
}

func (m *Mock) Checkout(ctx context.Context, prompter Prompter) (*CheckoutResult, error) {
	if m.CheckoutFunc != nil {
		return m.CheckoutFunc(ctx, prompter)
	}
	return &CheckoutResult{}, nil
}

func (m *Mock) BuyNow(ctx context.Context, productID string, prompter Prompter) (*BuyResult, error) {
	if m.BuyNowFunc != nil {
		return m.BuyNowFunc(ctx, productID, prompter)
	}
	return &BuyResult{}, nil
}
