package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDetailItem is a line item joined with live product data.
type OrderDetailItem struct {
	ID       uuid.UUID       `json:"id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderDetail is the assembled read view returned by the order service: the
// persisted order joined with its user, address and current product details.
type OrderDetail struct {
	ID          uuid.UUID         `json:"id"`
	User        User              `json:"user"`
	Address     Address           `json:"address"`
	Items       []OrderDetailItem `json:"items"`
	Status      OrderStatus       `json:"status"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// NewOrderDetail joins an order with its collaborators. Every line item must
// resolve to a product; a missing product means the catalogue and the order
// disagree and the view cannot be built.
func NewOrderDetail(order *Order, user *User, address *Address, products []Product) (*OrderDetail, error) {
	byID := make(map[uuid.UUID]Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]OrderDetailItem, 0, len(order.Items))
	for _, item := range order.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, NotFoundf("Product with id %s not found", item.ProductID)
		}
		items = append(items, OrderDetailItem{
			ID:       item.ID,
			Product:  product,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	return &OrderDetail{
		ID:          order.ID,
		User:        *user,
		Address:     *address,
		Items:       items,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}, nil
}
