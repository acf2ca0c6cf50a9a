// Package model defines the domain types shared by the storefront client:
// catalog products, cart lines, orders, and the buyer identity derived
// from the hosted identity provider's token.
package model

import (
	"encoding/json"
	"fmt"
)

// Product is a catalog record as held in the catalog snapshot.
// Immutable within a page of work; replaced wholesale on refetch.
type Product struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"` // minor units (cents)
	Stock       int    `json:"stock"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// CartLine is one line of the server-held cart. The cart service keys
// lines by productId per user, so at most one line exists per product;
// repeated adds increment Quantity server-side.
type CartLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"` // minor units (cents)
	Quantity  int    `json:"quantity"`
}

// Subtotal returns price times quantity in minor units.
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// Identity is the buyer identity extracted from the identity token's
// claims. It is recomputed from the token on demand, never persisted.
type Identity struct {
	UserID   string // "sub" claim, stable user identifier
	UserName string // "cognito:username" claim, display name
	Email    string // "email" claim
}

// Order is a single-unit order submission to the order service.
// The shipping address is shared across all submissions of a checkout.
type Order struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     Money  `json:"price"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	Address   string `json:"address"`
}

// OrderReceipt is the order service's response to a submission.
type OrderReceipt struct {
	OrderID string `json:"orderId"`
}

// Money is an amount in minor units that serializes as a bare decimal
// number ("12.50"), matching what the remote services exchange. The
// services predate minor-unit handling and speak major-unit decimals.
type Money int64

// MarshalJSON writes the amount as an unquoted decimal number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatDecimal(int64(m))), nil
}

// UnmarshalJSON accepts both decimal numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		// Quoted decimal string fallback ("12.50")
		var s string
		if err2 := json.Unmarshal(data, &s); err2 != nil {
			return fmt.Errorf("invalid money value %s", data)
		}
		n = json.Number(s)
	}
	*m = Money(ParseCents(n.String()))
	return nil
}
