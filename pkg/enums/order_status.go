package enums

import "fmt"

// OrderStatus is the one-letter status code stored on orders.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "P"
	OrderStatusFulfilled OrderStatus = "F"
	OrderStatusCanceled  OrderStatus = "C"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusFulfilled,
	OrderStatusCanceled,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusPending:   "PENDING",
	OrderStatusFulfilled: "FULFILLED",
	OrderStatusCanceled:  "CANCELED",
}

// IsValid reports whether the value matches the canonical order status enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Label returns the public name for the status code.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseOrderStatus converts a public label or a stored code to OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for status, label := range orderStatusLabels {
		if value == label || value == string(status) {
			return status, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
