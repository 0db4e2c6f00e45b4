package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price DECIMAL(10, 2) NOT NULL,
			stock INTEGER NOT NULL CHECK (stock >= 0),
			category VARCHAR(100) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS addresses (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			street VARCHAR(255) NOT NULL,
			street_number VARCHAR(50) NOT NULL,
			city VARCHAR(100) NOT NULL,
			state_code VARCHAR(10) NOT NULL,
			postal_code VARCHAR(20) NOT NULL,
			country VARCHAR(100) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			address_id UUID NOT NULL REFERENCES addresses(id),
			status VARCHAR(20) NOT NULL,
			total_amount DECIMAL(12, 2) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id UUID NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity >= 0),
			price DECIMAL(10, 2) NOT NULL,
			position INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_orders_user_id ON orders(user_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedProduct inserts a product with the given stock and returns its ID.
func SeedProduct(t *testing.T, pool *pgxpool.Pool, title string, price int64, stock int) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO products (id, title, description, price, stock, category)
		 VALUES ($1, $2, '', $3, $4, 'general')`,
		id, title, decimal.NewFromInt(price), stock,
	)
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", title, err)
	}
	return id
}

// SeedUser inserts a user with an address and returns both IDs.
func SeedUser(t *testing.T, pool *pgxpool.Pool, name string) (uuid.UUID, uuid.UUID) {
	t.Helper()

	ctx := context.Background()
	userID := uuid.New()
	addressID := uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO users (id, name, email) VALUES ($1, $2, $3)`,
		userID, name, fmt.Sprintf("%s@example.com", userID),
	)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO addresses (id, user_id, street, street_number, city, state_code, postal_code, country)
		 VALUES ($1, $2, 'Main Street', '42', 'Springfield', 'SP', '12345', 'US')`,
		addressID, userID,
	)
	if err != nil {
		t.Fatalf("failed to seed address for %s: %v", name, err)
	}

	return userID, addressID
}

// ProductStock reads the current stock of a product.
func ProductStock(t *testing.T, pool *pgxpool.Pool, productID uuid.UUID) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		`SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for %s: %v", productID, err)
	}
	return stock
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "addresses", "users", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// stubCartReader serves canned carts keyed by user so order flows can run
// against real repositories without a Redis instance.
type stubCartReader struct {
	carts map[uuid.UUID][]cart.Item
}

func newStubCartReader() *stubCartReader {
	return &stubCartReader{carts: make(map[uuid.UUID][]cart.Item)}
}

func (s *stubCartReader) put(userID uuid.UUID, productID uuid.UUID, quantity int) {
	s.carts[userID] = append(s.carts[userID], cart.Item{ProductID: productID, Quantity: quantity})
}

func (s *stubCartReader) GetCartByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	items, ok := s.carts[userID]
	if !ok {
		return nil, model.NotFoundf("Cart for user %s not found", userID)
	}
	return &cart.Cart{UserID: userID, Items: items}, nil
}
