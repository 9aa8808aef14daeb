package service

import (
	"context"

	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/loyalty"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// redeemPoints spends the requested points and applies the discount to
// the running total. The loyalty backend re-validates the balance; a
// rejection here leaves no side effects, so the customer just retries
// without the redemption.
func (s *CheckoutServiceImpl) redeemPoints(ctx context.Context, rec *store.Record) error {
	points := rec.Draft.PointsToRedeem
	if points <= 0 {
		return nil
	}

	if _, err := s.loyalty.Redeem(ctx, rec.Draft.CustomerID, points, rec.Subtotal, rec.LocalID); err != nil {
		return &StageError{Stage: StagePoints, err: err}
	}

	rec.Discount = loyalty.DiscountForPoints(points)
	rec.Total = rec.Subtotal - rec.Discount
	return nil
}
