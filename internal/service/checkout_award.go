package service

import (
	"context"
	"log"

	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// awardPoints credits the earn for a finished order, computed on the
// amount actually payable after discount. The award is keyed on the
// local order id, which exists before the backend id does, so a
// pending-sync order earns exactly once no matter when it reconciles.
// An award failure never fails the checkout; the order already went
// through.
func (s *CheckoutServiceImpl) awardPoints(ctx context.Context, rec *store.Record) {
	if _, err := s.loyalty.Award(ctx, rec.Draft.CustomerID, rec.LocalID, rec.Total); err != nil {
		log.Printf("failed to award points for order %v: %v", rec.LocalID, err)
	}
}
