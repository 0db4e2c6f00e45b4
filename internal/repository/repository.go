package repository

import (
	"context"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines product data access, including the stock ledger
// primitives. Reserve/release run inside a caller-owned transaction so lock
// hold time stays bounded by that transaction.
type ProductRepository interface {
	// GetAll retrieves products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// ReserveStock locks the product row, debits quantity from stock and
	// returns the updated product. Fails with OutOfStock (no mutation) if
	// stock would go negative, NotFound if the product does not exist.
	ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error)

	// ReleaseStock locks the product row and credits quantity back to stock.
	// No upper bound is enforced.
	ReleaseStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error)
}

// OrderRepository persists the order aggregate and its items as a unit.
// Updates use replace-on-update semantics for the item set.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// Save inserts a new order and its items within the transaction.
	Save(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// Update persists the current aggregate state within the transaction:
	// the order row is updated and the item set fully replaced.
	Update(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// GetByID retrieves an order with its items, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListByUser retrieves all orders placed by a user, oldest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
}

// UserRepository is the narrow lookup the order core needs from the user
// subsystem.
type UserRepository interface {
	// GetByID retrieves a user, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// AddressRepository is the narrow lookup the order core needs from the
// address subsystem.
type AddressRepository interface {
	// GetByID retrieves an address, or nil if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)
}
