package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// validateStock gets a fresh availability verdict for every line item.
// A backend that cannot answer halts checkout the same as a sold-out
// item would: no verdict is never treated as "in stock".
func (s *CheckoutServiceImpl) validateStock(ctx context.Context, rec *store.Record) error {
	result, err := s.stock.Validate(ctx, rec.Draft.Items)
	if err != nil {
		return &StageError{Stage: StageStock, err: err}
	}

	if !result.OK {
		unavailable := result.Unavailable()
		// The backend can reject a cart without naming items; the
		// customer still gets a reason, never a blank list.
		message := "stock validation rejected by backend"
		if len(unavailable) > 0 {
			message = fmt.Sprintf("items unavailable: %s", strings.Join(unavailable, ", "))
		}
		return &StageError{
			Stage:       StageStock,
			Message:     message,
			Unavailable: unavailable,
		}
	}

	if !rec.Status.CanTransitionTo(domain.OrderStatusStockValidated) {
		return &StageError{Stage: StageStock, err: ErrIllegalTransition}
	}
	rec.Status = domain.OrderStatusStockValidated
	return nil
}
