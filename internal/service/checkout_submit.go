package service

import (
	"context"
	"fmt"
	"log"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// submitOrder hands the order to the backend. If the backend cannot be
// reached after a payment has already been collected, the order is
// parked locally as pending sync instead of being lost; the reconciler
// resubmits it later. Points are awarded either way, keyed on the local
// order id so reconciliation cannot double-credit.
func (s *CheckoutServiceImpl) submitOrder(ctx context.Context, rec *store.Record) (*CheckoutResult, error) {
	req := &orders.CreateRequest{
		CustomerID:       rec.Draft.CustomerID,
		Items:            rec.Draft.Items,
		DeliveryAddress:  rec.Draft.DeliveryAddress,
		PaymentMethod:    string(rec.Draft.PaymentMethod),
		PointsToRedeem:   rec.Draft.PointsToRedeem,
		PaymentReference: rec.PaymentReference,
		Notes:            rec.Draft.Instructions,
	}

	resp, err := s.orders.Create(ctx, req)
	if err != nil {
		if httpx.IsKind(err, httpx.KindUnavailable) || httpx.IsKind(err, httpx.KindTransient) {
			return s.parkPendingSync(ctx, rec)
		}
		// The backend understood and said no. Money may have moved.
		return nil, &StageError{
			Stage:       StageSubmit,
			err:         err,
			PointsMoved: rec.Discount > 0,
			MoneyMoved:  rec.Draft.PaymentMethod.RequiresGateway(),
		}
	}

	if !rec.Status.CanTransitionTo(domain.OrderStatusCompleted) {
		return nil, &StageError{Stage: StageSubmit, err: ErrIllegalTransition}
	}
	rec.Status = domain.OrderStatusCompleted
	rec.BackendID = resp.OrderID
	rec.PendingSync = false
	if err := s.store.Save(ctx, rec); err != nil {
		log.Printf("failed to persist completed order %v: %v", rec.LocalID, err)
	}

	s.awardPoints(ctx, rec)
	return s.resultFor(rec), nil
}

// parkPendingSync persists the order locally when the backend is down.
// The checkout still succeeds from the customer's point of view.
func (s *CheckoutServiceImpl) parkPendingSync(ctx context.Context, rec *store.Record) (*CheckoutResult, error) {
	if !rec.Status.CanTransitionTo(domain.OrderStatusPendingSync) {
		return nil, &StageError{Stage: StageSubmit, err: ErrIllegalTransition}
	}
	rec.Status = domain.OrderStatusPendingSync
	rec.PendingSync = true
	if err := s.store.Save(ctx, rec); err != nil {
		// Nowhere durable to park it. This one really is lost on reload.
		return nil, &StageError{
			Stage:       StageSubmit,
			Message:     fmt.Sprintf("order backend down and local save failed: %v", err),
			PointsMoved: rec.Discount > 0,
			MoneyMoved:  rec.Draft.PaymentMethod.RequiresGateway(),
			err:         err,
		}
	}

	log.Printf("order backend unreachable, parked order %v for reconciliation", rec.LocalID)
	s.awardPoints(ctx, rec)
	return s.resultFor(rec), nil
}
