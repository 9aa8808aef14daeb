package store

import (
	"context"
	"errors"
	"time"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
)

var ErrNotFound = errors.New("order record not found")

// Record is a locally persisted order. Orders land here while a payment
// redirect is in flight, or with PendingSync set when the order backend
// was unreachable after a completed payment, so the order survives
// reloads and is reconciled later.
type Record struct {
	LocalID          string
	BackendID        string
	Draft            domain.OrderDraft
	Status           domain.OrderStatus
	PaymentReference string
	Subtotal         float64
	Discount         float64
	Total            float64
	PendingSync      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PendingOrders is the durable local fallback store.
type PendingOrders interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, localID string) (*Record, error)
	UpdateStatus(ctx context.Context, localID string, status domain.OrderStatus, pendingSync bool) error
	ListPending(ctx context.Context) ([]*Record, error)
	MarkSynced(ctx context.Context, localID, backendID string) error
	Close() error
}
