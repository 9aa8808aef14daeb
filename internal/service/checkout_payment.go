package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/paymongo"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// initiatePayment creates a gateway source for the discounted total and
// suspends the checkout: the record is persisted, the customer is
// handed the checkout URL, and CompletePayment picks up after the
// redirect.
func (s *CheckoutServiceImpl) initiatePayment(ctx context.Context, rec *store.Record, b paymongo.Billing) (*CheckoutResult, error) {
	if !rec.Status.CanTransitionTo(domain.OrderStatusPaymentPending) {
		return nil, &StageError{Stage: StagePayment, err: ErrIllegalTransition, PointsMoved: rec.Discount > 0}
	}

	source, err := s.gateway.CreateSource(ctx, rec.Draft.PaymentMethod, rec.Total, rec.LocalID, b)
	if err != nil {
		return nil, &StageError{Stage: StagePayment, err: err, PointsMoved: rec.Discount > 0}
	}

	// The gateway charges what the source says, not what we computed.
	// Any disagreement means the customer would pay the wrong amount.
	if want := paymongo.Centavos(rec.Total); source.Amount != want {
		return nil, &StageError{
			Stage:       StagePayment,
			Message:     fmt.Sprintf("%v: source %d centavos, order %d", ErrAmountMismatch, source.Amount, want),
			PointsMoved: rec.Discount > 0,
			err:         ErrAmountMismatch,
		}
	}

	rec.Status = domain.OrderStatusPaymentPending
	rec.PaymentReference = source.ID
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, &StageError{Stage: StagePayment, err: err, PointsMoved: rec.Discount > 0}
	}

	result := s.resultFor(rec)
	result.Source = source
	return result, nil
}

// RetryPayment re-initiates payment for an order whose previous attempt
// failed. Stock was already validated and the points already redeemed
// for this order, so the stored record is reused as-is: the customer is
// not charged a second redemption for the same cart.
func (s *CheckoutServiceImpl) RetryPayment(ctx context.Context, localOrderID string, b paymongo.Billing) (*CheckoutResult, error) {
	rec, err := s.store.Get(ctx, localOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownOrder
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout record: %w", err)
	}

	if rec.Status != domain.OrderStatusPaymentFailed {
		return nil, fmt.Errorf("%w: status %v", ErrNotRetryable, rec.Status)
	}

	return s.initiatePayment(ctx, rec, b)
}

// CompletePayment resumes a suspended checkout after the gateway
// redirect. The query string the customer came back with is never
// trusted; the gateway is polled for the real outcome.
func (s *CheckoutServiceImpl) CompletePayment(ctx context.Context, localOrderID string) (*CheckoutResult, error) {
	rec, err := s.store.Get(ctx, localOrderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnknownOrder
	}
	if err != nil {
		return nil, fmt.Errorf("load checkout record: %w", err)
	}

	switch rec.Status {
	case domain.OrderStatusPaymentPending:
	case domain.OrderStatusCompleted, domain.OrderStatusPendingSync:
		// A reload of the return page lands here. Report, don't redo.
		return s.resultFor(rec), nil
	default:
		return nil, fmt.Errorf("%w: status %v", ErrPaymentNotPending, rec.Status)
	}

	status, err := s.gateway.WaitForPaid(ctx, rec.PaymentReference, s.poll)
	if err != nil {
		return nil, &StageError{Stage: StagePayment, err: err, PointsMoved: rec.Discount > 0}
	}

	switch status {
	case domain.SourceStatusPaid:
		// Only a gateway-confirmed paid status finalizes the order. A
		// source parked at chargeable keeps polling until the gateway
		// settles it or the attempts run out.
		rec.Status = domain.OrderStatusPaid
		return s.submitOrder(ctx, rec)
	default:
		log.Printf("payment for order %v ended %v, marking payment failed", rec.LocalID, status)
		rec.Status = domain.OrderStatusPaymentFailed
		if err := s.store.Save(ctx, rec); err != nil {
			log.Printf("failed to persist payment failure for %v: %v", rec.LocalID, err)
		}
		return s.resultFor(rec), nil
	}
}
