package service

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
)

// ProductService defines read operations on the product catalogue.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
}

// OrderService defines the order lifecycle operations. Every multi-step
// operation runs inside a single database transaction; partial effects are
// never observable outside it.
type OrderService interface {
	// CreateOrder converts the user's cart into a pending order, reserving
	// stock for every cart line.
	CreateOrder(ctx context.Context, userID, addressID uuid.UUID) (*model.OrderDetail, error)

	// GetByID retrieves an order as an assembled view.
	GetByID(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)

	// ListByUser retrieves all of a user's orders as assembled views.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.OrderDetail, error)

	// SetStatus advances the order through its status state machine.
	SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error)

	// Cancel cancels a pending or approved order, releasing the stock of
	// every remaining item.
	Cancel(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error)

	// RemoveItem removes one item from the order and releases its stock.
	RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*model.OrderDetail, error)

	// ChangeItemQuantity adjusts an item's quantity by delta. A positive
	// delta reserves additional stock; a negative delta releases it.
	ChangeItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, delta int) (*model.OrderDetail, error)
}
