package enums

import "fmt"

// OrderStatus tracks the lifecycle of a wholesale order.
type OrderStatus string

const (
	OrderStatusDraft     OrderStatus = "DRAFT"
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusSeparated OrderStatus = "SEPARATED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusSeparated,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRejected,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into a OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// IsTerminal reports whether no transition leaves the status.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected:
		return true
	default:
		return false
	}
}
