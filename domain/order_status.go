package domain

type OrderStatus string

const (
	OrderStatusInitiated      OrderStatus = "INITIATED"
	OrderStatusStockValidated OrderStatus = "STOCK_VALIDATED"
	OrderStatusPaymentPending OrderStatus = "PAYMENT_PENDING"
	OrderStatusPaymentFailed  OrderStatus = "PAYMENT_FAILED"
	OrderStatusPaid           OrderStatus = "PAID"
	OrderStatusPendingSync    OrderStatus = "PENDING_SYNC"
	OrderStatusCompleted      OrderStatus = "COMPLETED"
	OrderStatusFailed         OrderStatus = "FAILED"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusInitiated:      {OrderStatusStockValidated, OrderStatusFailed},
	OrderStatusStockValidated: {OrderStatusPaymentPending, OrderStatusPendingSync, OrderStatusCompleted, OrderStatusFailed},
	OrderStatusPaymentPending: {OrderStatusPaid, OrderStatusPaymentFailed},
	// PAYMENT_FAILED is retryable: the UI may re-initiate payment for the same draft.
	OrderStatusPaymentFailed: {OrderStatusPaymentPending},
	OrderStatusPaid:          {OrderStatusPendingSync, OrderStatusCompleted},
	OrderStatusPendingSync:   {OrderStatusCompleted},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}
