package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = "id, title, description, price, stock, category, created_at, updated_at"

// productRepository implements ProductRepository using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetAll retrieves products with pagination support.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY title
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// GetByID retrieves a single product, or nil if it does not exist.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY title`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

// ReserveStock acquires an exclusive row lock on the product for the duration
// of the enclosing transaction, then debits stock. The blocking FOR UPDATE
// read is what serialises concurrent debits on the same product; a
// read-then-conditional-write would lose updates.
func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error) {
	p, err := r.lockProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	remaining := p.Stock - quantity
	if remaining < 0 {
		r.logger.Debug().
			Str("product_id", productID.String()).
			Int("stock", p.Stock).
			Int("requested", quantity).
			Msg("reservation exceeds available stock")
		return nil, model.ErrOutOfStock
	}

	if err := r.writeStock(ctx, tx, productID, remaining); err != nil {
		return nil, err
	}
	p.Stock = remaining

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Int("remaining", remaining).
		Msg("stock reserved")

	return p, nil
}

// ReleaseStock credits quantity back to the product's stock under the same
// locking discipline as ReserveStock.
func (r *productRepository) ReleaseStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, quantity int) (*model.Product, error) {
	p, err := r.lockProduct(ctx, tx, productID)
	if err != nil {
		return nil, err
	}

	restored := p.Stock + quantity
	if err := r.writeStock(ctx, tx, productID, restored); err != nil {
		return nil, err
	}
	p.Stock = restored

	r.logger.Debug().
		Str("product_id", productID.String()).
		Int("quantity", quantity).
		Int("stock", restored).
		Msg("stock released")

	return p, nil
}

func (r *productRepository) lockProduct(ctx context.Context, tx pgx.Tx, productID uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(tx.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFoundf("Product with id %s not found", productID)
		}
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to lock product row")
		return nil, fmt.Errorf("failed to lock product row: %w", err)
	}
	return p, nil
}

func (r *productRepository) writeStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, stock int) error {
	_, err := tx.Exec(ctx, `UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`, productID, stock)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to update stock")
		return fmt.Errorf("failed to update stock: %w", err)
	}
	return nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock, &p.Category, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
