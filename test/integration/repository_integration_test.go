package integration

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_ReserveStock(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	ctx := context.Background()

	t.Run("Reserve debits stock", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		productID := SeedProduct(t, db.Pool, "Keyboard", 100, 10)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)

		product, err := productRepo.ReserveStock(ctx, tx, productID, 4)
		require.NoError(t, err)
		assert.Equal(t, 6, product.Stock)

		require.NoError(t, tx.Commit(ctx))
		assert.Equal(t, 6, ProductStock(t, db.Pool, productID))
	})

	t.Run("Reserve entire stock to zero", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		productID := SeedProduct(t, db.Pool, "Keyboard", 100, 10)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)

		product, err := productRepo.ReserveStock(ctx, tx, productID, 10)
		require.NoError(t, err)
		assert.Equal(t, 0, product.Stock)

		require.NoError(t, tx.Commit(ctx))
		assert.Equal(t, 0, ProductStock(t, db.Pool, productID))
	})

	t.Run("Reserve beyond stock leaves stock untouched", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		productID := SeedProduct(t, db.Pool, "Keyboard", 100, 3)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = productRepo.ReserveStock(ctx, tx, productID, 4)
		require.Error(t, err)
		assert.Equal(t, model.KindOutOfStock, model.KindOf(err))
		assert.Equal(t, "Out of stock product", err.Error())

		require.NoError(t, tx.Rollback(ctx))
		assert.Equal(t, 3, ProductStock(t, db.Pool, productID))
	})

	t.Run("Reserve unknown product", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)

		_, err = productRepo.ReserveStock(ctx, tx, uuid.New(), 1)
		require.Error(t, err)
		assert.Equal(t, model.KindNotFound, model.KindOf(err))
	})

	t.Run("Release after reserve restores original stock", func(t *testing.T) {
		defer CleanupDB(t, db.Pool)
		productID := SeedProduct(t, db.Pool, "Keyboard", 100, 10)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		_, err = productRepo.ReserveStock(ctx, tx, productID, 7)
		require.NoError(t, err)
		_, err = productRepo.ReleaseStock(ctx, tx, productID, 7)
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))

		assert.Equal(t, 10, ProductStock(t, db.Pool, productID))
	})
}

// Two competing reservations against one unit of stock: exactly one commits,
// the other observes the post-commit balance and fails.
func TestProductRepository_ConcurrentReservations(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	productRepo := repository.NewProductRepository(db.Pool, logger)
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	ctx := context.Background()

	productID := SeedProduct(t, db.Pool, "Limited Edition", 500, 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			tx, err := orderRepo.BeginTx(ctx)
			if err != nil {
				errs[i] = err
				return
			}

			if _, err := productRepo.ReserveStock(ctx, tx, productID, 1); err != nil {
				tx.Rollback(ctx)
				errs[i] = err
				return
			}
			errs[i] = tx.Commit(ctx)
		}(i)
	}
	wg.Wait()

	var succeeded, outOfStock int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case model.KindOf(err) == model.KindOutOfStock:
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, ProductStock(t, db.Pool, productID))
}

func TestOrderRepository_SaveAndGet(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	ctx := context.Background()

	userID, addressID := SeedUser(t, db.Pool, "Jane")
	firstProduct := SeedProduct(t, db.Pool, "Keyboard", 100, 10)
	secondProduct := SeedProduct(t, db.Pool, "Mouse", 50, 10)

	items := []model.OrderItem{
		model.NewOrderItem(firstProduct, 2, decimal.NewFromInt(100)),
		model.NewOrderItem(secondProduct, 1, decimal.NewFromInt(50)),
	}
	order := model.NewOrder(userID, addressID, items, model.StatusPending)

	tx, err := orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, orderRepo.Save(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))

	got, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, order.ID, got.ID)
	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, addressID, got.AddressID)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(250)),
		"expected total 250, got %s", got.TotalAmount)

	// insertion order survives the roundtrip
	require.Len(t, got.Items, 2)
	assert.Equal(t, firstProduct, got.Items[0].ProductID)
	assert.Equal(t, secondProduct, got.Items[1].ProductID)
}

func TestOrderRepository_GetByID_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	orderRepo := repository.NewOrderRepository(db.Pool, zerolog.Nop())

	got, err := orderRepo.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOrderRepository_Update_ReplacesItems(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	ctx := context.Background()

	userID, addressID := SeedUser(t, db.Pool, "Jane")
	firstProduct := SeedProduct(t, db.Pool, "Keyboard", 100, 10)
	secondProduct := SeedProduct(t, db.Pool, "Mouse", 50, 10)

	items := []model.OrderItem{
		model.NewOrderItem(firstProduct, 2, decimal.NewFromInt(100)),
		model.NewOrderItem(secondProduct, 1, decimal.NewFromInt(50)),
	}
	order := model.NewOrder(userID, addressID, items, model.StatusPending)

	tx, err := orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, orderRepo.Save(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))

	// mutate the aggregate: drop an item, advance the status
	require.NoError(t, order.RemoveItem(order.Items[1].ID))
	require.NoError(t, order.SetStatus(model.StatusApproved))

	tx, err = orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, orderRepo.Update(ctx, tx, order))
	require.NoError(t, tx.Commit(ctx))

	got, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, model.StatusApproved, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, firstProduct, got.Items[0].ProductID)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(200)))
}

func TestOrderRepository_Update_NotFound(t *testing.T) {
	db := SetupTestDB(t)
	orderRepo := repository.NewOrderRepository(db.Pool, zerolog.Nop())
	ctx := context.Background()

	userID, addressID := SeedUser(t, db.Pool, "Jane")
	order := model.NewOrder(userID, addressID, nil, model.StatusPending)

	tx, err := orderRepo.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	err = orderRepo.Update(ctx, tx, order)
	require.Error(t, err)
	assert.Equal(t, model.KindNotFound, model.KindOf(err))
}

func TestOrderRepository_ListByUser(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	orderRepo := repository.NewOrderRepository(db.Pool, logger)
	ctx := context.Background()

	userID, addressID := SeedUser(t, db.Pool, "Jane")
	otherUserID, otherAddressID := SeedUser(t, db.Pool, "John")
	productID := SeedProduct(t, db.Pool, "Keyboard", 100, 100)

	for _, owner := range []struct {
		userID    uuid.UUID
		addressID uuid.UUID
	}{
		{userID, addressID},
		{userID, addressID},
		{otherUserID, otherAddressID},
	} {
		items := []model.OrderItem{model.NewOrderItem(productID, 1, decimal.NewFromInt(100))}
		order := model.NewOrder(owner.userID, owner.addressID, items, model.StatusPending)

		tx, err := orderRepo.BeginTx(ctx)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Save(ctx, tx, order))
		require.NoError(t, tx.Commit(ctx))
	}

	orders, err := orderRepo.ListByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	orders, err = orderRepo.ListByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUserAndAddressRepositories(t *testing.T) {
	db := SetupTestDB(t)
	logger := zerolog.Nop()
	userRepo := repository.NewUserRepository(db.Pool, logger)
	addressRepo := repository.NewAddressRepository(db.Pool, logger)
	ctx := context.Background()

	userID, addressID := SeedUser(t, db.Pool, "Jane")

	user, err := userRepo.GetByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Jane", user.Name)

	address, err := addressRepo.GetByID(ctx, addressID)
	require.NoError(t, err)
	require.NotNil(t, address)
	assert.Equal(t, userID, address.UserID)

	missing, err := userRepo.GetByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
