package service

import (
	"context"
	"fmt"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// orderService implements OrderService. It owns the transaction boundary:
// repositories mutate state only through the pgx.Tx it opens per operation.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	addressRepo repository.AddressRepository
	cartReader  cart.Reader
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	addressRepo repository.AddressRepository,
	cartReader cart.Reader,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		addressRepo: addressRepo,
		cartReader:  cartReader,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// CreateOrder converts the user's cart into a pending order. Stock for every
// cart line is reserved inside one transaction; any OutOfStock or NotFound
// rolls the whole reservation back, so no partial debit is ever committed.
func (s *orderService) CreateOrder(ctx context.Context, userID, addressID uuid.UUID) (*model.OrderDetail, error) {
	snapshot, err := s.cartReader.GetCartByUser(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to load cart")
		return nil, err
	}

	address, err := s.getAddress(ctx, addressID)
	if err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(snapshot.Items) == 0 {
		return nil, model.Unprocessablef("Cart is empty for user %s", userID)
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	items := make([]model.OrderItem, 0, len(snapshot.Items))
	products := make([]model.Product, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		var product *model.Product
		product, err = s.productRepo.ReserveStock(ctx, tx, line.ProductID, line.Quantity)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", line.ProductID.String()).
				Int("quantity", line.Quantity).
				Msg("stock reservation failed")
			return nil, err
		}
		// The unit price is snapshotted from the locked row, so the order
		// captures the price as of reservation time.
		items = append(items, model.NewOrderItem(product.ID, line.Quantity, product.Price))
		products = append(products, *product)
	}

	order := model.NewOrder(userID, addressID, items, model.StatusPending)

	if err = s.orderRepo.Save(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", userID.String()).
		Int("item_count", len(items)).
		Str("total_amount", order.TotalAmount.String()).
		Msg("order created")

	return model.NewOrderDetail(order, user, address, products)
}

// GetByID retrieves an order as an assembled view.
func (s *orderService) GetByID(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, order)
}

// ListByUser retrieves all of a user's orders as assembled views.
func (s *orderService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.OrderDetail, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	details := make([]*model.OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail, err := s.assemble(ctx, order)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// SetStatus advances the order through the status state machine. No stock
// side effects for any transition; cancellation goes through Cancel.
func (s *orderService) SetStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*model.OrderDetail, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.SetStatus(status); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("target_status", string(status)).
			Msg("rejected status transition")
		return nil, err
	}

	if err := s.persist(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(status)).
		Msg("order status changed")

	return s.assemble(ctx, order)
}

// Cancel cancels a pending or approved order and releases the stock of every
// remaining item. The releases and the status change commit together.
func (s *orderService) Cancel(ctx context.Context, orderID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err = order.Cancel(); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID.String()).Msg("rejected cancellation")
		return nil, err
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	for _, item := range order.Items {
		if _, err = s.productRepo.ReleaseStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
	}

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit cancellation")
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Int("released_items", len(order.Items)).
		Msg("order canceled")

	return s.assemble(ctx, order)
}

// RemoveItem removes one item from the order. The stock release and the item
// removal commit together or not at all.
func (s *orderService) RemoveItem(ctx context.Context, orderID, itemID uuid.UUID) (*model.OrderDetail, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item, err := order.Item(itemID)
	if err != nil {
		return nil, err
	}
	productID, quantity := item.ProductID, item.Quantity

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to remove order item: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if _, err = s.productRepo.ReleaseStock(ctx, tx, productID, quantity); err != nil {
		return nil, err
	}

	if err = order.RemoveItem(itemID); err != nil {
		return nil, err
	}

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit item removal")
		return nil, fmt.Errorf("failed to remove order item: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("item_id", itemID.String()).
		Int("released_quantity", quantity).
		Msg("order item removed")

	return s.assemble(ctx, order)
}

// ChangeItemQuantity adjusts an item's quantity by delta. Increases reserve
// the additional stock first, so an OutOfStock leaves the order untouched;
// decreases validate the aggregate before releasing stock.
func (s *orderService) ChangeItemQuantity(ctx context.Context, orderID, itemID uuid.UUID, delta int) (*model.OrderDetail, error) {
	if delta == 0 {
		return nil, model.Unprocessablef("Quantity change must not be zero")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	item, err := order.Item(itemID)
	if err != nil {
		return nil, err
	}
	productID := item.ProductID

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to change item quantity: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if delta > 0 {
		if _, err = s.productRepo.ReserveStock(ctx, tx, productID, delta); err != nil {
			return nil, err
		}
		err = order.IncreaseItemQuantity(itemID, delta)
	} else {
		if err = order.DecreaseItemQuantity(itemID, -delta); err == nil {
			_, err = s.productRepo.ReleaseStock(ctx, tx, productID, -delta)
		}
	}
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", orderID.String()).
			Str("item_id", itemID.String()).
			Int("delta", delta).
			Msg("quantity change failed")
		return nil, err
	}

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit quantity change")
		return nil, fmt.Errorf("failed to change item quantity: %w", err)
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("item_id", itemID.String()).
		Int("delta", delta).
		Msg("order item quantity changed")

	return s.assemble(ctx, order)
}

// persist writes the aggregate inside its own short transaction.
func (s *orderService) persist(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to persist order: %w", err)
	}
	defer s.rollbackOnErr(ctx, tx, &err)

	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to persist order: %w", err)
	}
	return nil
}

// assemble joins the order with its user, address and live product data.
func (s *orderService) assemble(ctx context.Context, order *model.Order) (*model.OrderDetail, error) {
	user, err := s.getUser(ctx, order.UserID)
	if err != nil {
		return nil, err
	}

	address, err := s.getAddress(ctx, order.AddressID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		productIDs[i] = item.ProductID
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	return model.NewOrderDetail(order, user, address, products)
}

func (s *orderService) getOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.NotFoundf("Order with id %s not found", orderID)
	}
	return order, nil
}

func (s *orderService) getUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.NotFoundf("User with id %s not found", userID)
	}
	return user, nil
}

func (s *orderService) getAddress(ctx context.Context, addressID uuid.UUID) (*model.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if address == nil {
		return nil, model.NotFoundf("Address with id %s not found", addressID)
	}
	return address, nil
}

// rollbackOnErr rolls the transaction back when the surrounding operation is
// returning an error, so no partial reservation or mutation stays committed.
func (s *orderService) rollbackOnErr(ctx context.Context, tx pgx.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
	}
}
