// Package cart provides a read-only view of a user's shopping cart at
// order-creation time. Cart mutation belongs to the cart subsystem; the
// order core only consumes snapshots.
package cart

import (
	"context"

	"github.com/google/uuid"
)

// Item is one product/quantity pair in a cart snapshot.
type Item struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Cart is the snapshot consumed by order creation.
type Cart struct {
	UserID uuid.UUID `json:"userId"`
	Items  []Item    `json:"items"`
}

// Reader retrieves the current cart contents for a user.
type Reader interface {
	// GetCartByUser returns the user's cart, or a NotFound domain error if
	// the user has no cart.
	GetCartByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
}
