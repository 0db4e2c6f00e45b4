package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a line item snapshotting product identity and unit price at
// order-creation time. Price never changes after creation; later product
// price updates do not affect placed orders.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	ProductID uuid.UUID       `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// NewOrderItem creates a line item with a fresh id.
func NewOrderItem(productID uuid.UUID, quantity int, price decimal.Decimal) OrderItem {
	return OrderItem{
		ID:        uuid.New(),
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}
}

// Subtotal returns price × quantity for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the aggregate: the order plus its line items, treated as one
// consistency boundary. TotalAmount is a pure function of Items and is
// recomputed on every item mutation. Item order is insertion order and is
// never reordered.
type Order struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	UserID      uuid.UUID       `json:"userId" db:"user_id"`
	AddressID   uuid.UUID       `json:"addressId" db:"address_id"`
	Items       []OrderItem     `json:"items"`
	Status      OrderStatus     `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// NewOrder constructs an order and computes its total immediately. Emptiness
// of items is enforced by the order service before construction, because the
// aggregate is also restored from storage.
func NewOrder(userID, addressID uuid.UUID, items []OrderItem, status OrderStatus) *Order {
	o := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		AddressID: addressID,
		Items:     items,
		Status:    status,
		CreatedAt: time.Now(),
	}
	o.recomputeTotal()
	return o
}

// RestoreOrder rebuilds the aggregate from persisted state. The total is
// recomputed from the items rather than trusted from storage.
func RestoreOrder(id, userID, addressID uuid.UUID, items []OrderItem, status OrderStatus, createdAt time.Time) *Order {
	o := &Order{
		ID:        id,
		UserID:    userID,
		AddressID: addressID,
		Items:     items,
		Status:    status,
		CreatedAt: createdAt,
	}
	o.recomputeTotal()
	return o
}

func (o *Order) recomputeTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Subtotal())
	}
	o.TotalAmount = total
}

// Item returns the line item with the given id.
func (o *Order) Item(itemID uuid.UUID) (*OrderItem, error) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], nil
		}
	}
	return nil, NotFoundf("Order item with id %s not found", itemID)
}

// RemoveItem drops the item and recomputes the total. Removing the last item
// is permitted; an order is never deleted by emptying it.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if _, err := o.Item(itemID); err != nil {
		return err
	}
	items := make([]OrderItem, 0, len(o.Items)-1)
	for _, item := range o.Items {
		if item.ID != itemID {
			items = append(items, item)
		}
	}
	o.Items = items
	o.recomputeTotal()
	return nil
}

// IncreaseItemQuantity adds delta to the item's quantity and recomputes the
// total. Stock for the additional quantity must be reserved by the caller
// before this mutation.
func (o *Order) IncreaseItemQuantity(itemID uuid.UUID, delta int) error {
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	item.Quantity += delta
	o.recomputeTotal()
	return nil
}

// DecreaseItemQuantity subtracts delta from the item's quantity. Quantity may
// reach zero but never goes negative.
func (o *Order) DecreaseItemQuantity(itemID uuid.UUID, delta int) error {
	item, err := o.Item(itemID)
	if err != nil {
		return err
	}
	if item.Quantity-delta < 0 {
		return Conflictf("Can't decrease item quantity below zero, current quantity is %d", item.Quantity)
	}
	item.Quantity -= delta
	o.recomputeTotal()
	return nil
}

// SetStatus applies the generic transition rule: the new status is reachable
// only from its declared predecessor. Cancellation from approved is handled
// by Cancel, not here.
func (o *Order) SetStatus(next OrderStatus) error {
	predecessor, ok := statusPredecessor[next]
	if !ok {
		return Conflictf("Can't change %s order to %s", o.Status, next)
	}
	if o.Status != predecessor {
		return Conflictf("Can't change %s order to %s, it should be %s", o.Status, next, predecessor)
	}
	o.Status = next
	return nil
}

// Cancel marks the order canceled. Only pending and approved orders can be
// canceled; shipped and delivered orders are terminal for cancellation.
func (o *Order) Cancel() error {
	if o.Status != StatusPending && o.Status != StatusApproved {
		return Conflictf("Can't cancel %s order", o.Status)
	}
	o.Status = StatusCanceled
	return nil
}
