package reconcile

import (
	"context"
	"log"
	"time"

	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// Poller drains pending-sync orders: orders whose payment settled while
// the order backend was unreachable. Each tick it resubmits whatever is
// parked and marks the synced ones. Points are not touched here; the
// award already happened when the order was parked.
type Poller struct {
	tick    time.Duration
	timeout time.Duration
	store   store.PendingOrders
	backend Backend
}

type Backend interface {
	Create(ctx context.Context, req *orders.CreateRequest) (*orders.CreateResponse, error)
}

func NewPoller(pending store.PendingOrders, backend Backend) *Poller {
	return &Poller{
		tick:    time.Second * 30,
		timeout: time.Second * 10,
		store:   pending,
		backend: backend,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.syncPendingOrders(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) syncPendingOrders(ctx context.Context) {
	records, err := p.store.ListPending(ctx)
	if err != nil {
		log.Printf("failed to list pending orders: %v", err)
		return
	}

	for _, rec := range records {
		if err := p.syncOne(ctx, rec); err != nil {
			log.Printf("failed to sync order %v: %v", rec.LocalID, err)
			continue
		}
		log.Printf("order synced: %v", rec.LocalID)
	}
}

func (p *Poller) syncOne(ctx context.Context, rec *store.Record) error {
	submitCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req := &orders.CreateRequest{
		CustomerID:       rec.Draft.CustomerID,
		Items:            rec.Draft.Items,
		DeliveryAddress:  rec.Draft.DeliveryAddress,
		PaymentMethod:    string(rec.Draft.PaymentMethod),
		PointsToRedeem:   rec.Draft.PointsToRedeem,
		PaymentReference: rec.PaymentReference,
		Notes:            rec.Draft.Instructions,
	}

	resp, err := p.backend.Create(submitCtx, req)
	if err != nil {
		return err
	}

	return p.store.MarkSynced(ctx, rec.LocalID, resp.OrderID)
}
