package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements OrderRepository using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// Save inserts a new order and its items within the provided transaction.
func (r *orderRepository) Save(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, user_id, address_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.AddressID, order.Status, order.TotalAmount, order.CreatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to insert order")
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Int("item_count", len(order.Items)).
		Msg("order saved")

	return nil
}

// Update persists the aggregate's current state: the order row is updated and
// the item set fully replaced (delete all, reinsert) rather than diffed.
func (r *orderRepository) Update(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `UPDATE orders SET status = $2, total_amount = $3 WHERE id = $1`

	ct, err := tx.Exec(ctx, query, order.ID, order.Status, order.TotalAmount)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return model.NotFoundf("Order with id %s not found", order.ID)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to delete order items")
		return fmt.Errorf("failed to delete order items: %w", err)
	}

	if err := r.insertItems(ctx, tx, order); err != nil {
		return err
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("status", string(order.Status)).
		Int("item_count", len(order.Items)).
		Msg("order updated")

	return nil
}

func (r *orderRepository) insertItems(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	if len(order.Items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for position, item := range order.Items {
		batch.Queue(query, item.ID, order.ID, item.ProductID, item.Quantity, item.Price, position)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(order.Items); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", order.Items[i].ProductID.String()).
				Msg("failed to insert order item")
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// GetByID retrieves an order with its items, or nil if it does not exist.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT id, user_id, address_id, status, total_amount, created_at
		FROM orders
		WHERE id = $1
	`

	header, err := scanOrderHeader(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsByOrder, err := r.queryItems(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}

	return header.restore(itemsByOrder[id]), nil
}

// ListByUser retrieves all orders placed by a user, oldest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	query := `
		SELECT id, user_id, address_id, status, total_amount, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var headers []orderHeader
	for rows.Next() {
		header, err := scanOrderHeader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		headers = append(headers, *header)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(headers) == 0 {
		return []*model.Order{}, nil
	}

	orderIDs := make([]uuid.UUID, len(headers))
	for i, h := range headers {
		orderIDs[i] = h.id
	}

	itemsByOrder, err := r.queryItems(ctx, orderIDs)
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, len(headers))
	for i, h := range headers {
		orders[i] = h.restore(itemsByOrder[h.id])
	}
	return orders, nil
}

// queryItems loads items for the given orders, preserving insertion order.
func (r *orderRepository) queryItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	itemsByOrder := make(map[uuid.UUID][]model.OrderItem)
	for rows.Next() {
		var item model.OrderItem
		var orderID uuid.UUID
		if err := rows.Scan(&item.ID, &orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		itemsByOrder[orderID] = append(itemsByOrder[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return itemsByOrder, nil
}

// orderHeader is the orders row before the aggregate is restored with items.
type orderHeader struct {
	id          uuid.UUID
	userID      uuid.UUID
	addressID   uuid.UUID
	status      model.OrderStatus
	totalAmount decimal.Decimal
	createdAt   time.Time
}

func scanOrderHeader(row pgx.Row) (*orderHeader, error) {
	var h orderHeader
	err := row.Scan(&h.id, &h.userID, &h.addressID, &h.status, &h.totalAmount, &h.createdAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (h orderHeader) restore(items []model.OrderItem) *model.Order {
	return model.RestoreOrder(h.id, h.userID, h.addressID, items, h.status, h.createdAt)
}
