package service

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to checkout")
	ErrInvalidMethod     = errors.New("unknown payment method")
	ErrIllegalTransition = errors.New("illegal transition of order status")
	ErrAmountMismatch    = errors.New("gateway amount does not match order total")
	ErrUnknownOrder      = errors.New("no checkout in progress for this order id")
	ErrPaymentNotPending = errors.New("order is not awaiting payment")
	ErrNotRetryable      = errors.New("order payment is not in a retryable state")
)

// Stage names the checkout step a failure happened in.
type Stage string

const (
	StageValidate Stage = "validate"
	StageStock    Stage = "stock"
	StagePoints   Stage = "points"
	StagePayment  Stage = "payment"
	StageSubmit   Stage = "submit"
)

// StageError reports where checkout stopped and which side effects had
// already happened, so the caller knows what the customer has committed.
type StageError struct {
	Stage       Stage
	Message     string
	Unavailable []string // product ids, stock stage only
	PointsMoved bool     // points were redeemed before the failure
	MoneyMoved  bool     // a payment was collected before the failure
	err         error
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("checkout %s stage: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("checkout %s stage: %v", e.Stage, e.err)
}

func (e *StageError) Unwrap() error {
	return e.err
}
