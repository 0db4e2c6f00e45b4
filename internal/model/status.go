package model

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusApproved  OrderStatus = "approved"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
)

// statusPredecessor declares, for every status reachable through the generic
// transition rule, the single status that must hold immediately before it.
// Nothing lands on pending; cancellation from approved goes through Cancel.
var statusPredecessor = map[OrderStatus]OrderStatus{
	StatusApproved:  StatusPending,
	StatusShipped:   StatusApproved,
	StatusDelivered: StatusShipped,
	StatusCanceled:  StatusPending,
}

// ParseOrderStatus validates a raw status string.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case StatusPending, StatusApproved, StatusShipped, StatusDelivered, StatusCanceled:
		return status, nil
	default:
		return "", Unprocessablef("Invalid order status %q", s)
	}
}
