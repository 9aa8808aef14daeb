package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

type mockStore struct {
	pending []*store.Record
	listErr error
	synced  map[string]string // local id -> backend id
}

func (m *mockStore) Save(_ context.Context, _ *store.Record) error { return nil }

func (m *mockStore) Get(_ context.Context, _ string) (*store.Record, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) UpdateStatus(_ context.Context, _ string, _ domain.OrderStatus, _ bool) error {
	return nil
}

func (m *mockStore) ListPending(_ context.Context) ([]*store.Record, error) {
	return m.pending, m.listErr
}

func (m *mockStore) MarkSynced(_ context.Context, localID, backendID string) error {
	if m.synced == nil {
		m.synced = make(map[string]string)
	}
	m.synced[localID] = backendID
	return nil
}

func (m *mockStore) Close() error { return nil }

type mockBackend struct {
	failFor map[string]error
	calls   []string
}

func (m *mockBackend) Create(_ context.Context, req *orders.CreateRequest) (*orders.CreateResponse, error) {
	m.calls = append(m.calls, req.PaymentReference)
	if err := m.failFor[req.PaymentReference]; err != nil {
		return nil, err
	}
	return &orders.CreateResponse{OrderID: "ord-" + req.PaymentReference}, nil
}

func parkedRecord(localID, paymentRef string) *store.Record {
	return &store.Record{
		LocalID:          localID,
		Draft:            domain.OrderDraft{CustomerID: "cust-1", PaymentMethod: domain.PaymentMethodGCash},
		Status:           domain.OrderStatusPendingSync,
		PaymentReference: paymentRef,
		PendingSync:      true,
	}
}

func TestSyncPendingOrders_ResubmitsAndMarks(t *testing.T) {
	st := &mockStore{pending: []*store.Record{
		parkedRecord("local-1", "src_1"),
		parkedRecord("local-2", "src_2"),
	}}
	backend := &mockBackend{}
	p := NewPoller(st, backend)

	p.syncPendingOrders(context.Background())

	require.Len(t, st.synced, 2)
	assert.Equal(t, "ord-src_1", st.synced["local-1"])
	assert.Equal(t, "ord-src_2", st.synced["local-2"])
}

func TestSyncPendingOrders_FailureLeavesOrderParked(t *testing.T) {
	st := &mockStore{pending: []*store.Record{
		parkedRecord("local-1", "src_1"),
		parkedRecord("local-2", "src_2"),
	}}
	backend := &mockBackend{failFor: map[string]error{"src_1": errors.New("still down")}}
	p := NewPoller(st, backend)

	p.syncPendingOrders(context.Background())

	// The failed one stays for the next tick; the other goes through.
	assert.NotContains(t, st.synced, "local-1")
	assert.Equal(t, "ord-src_2", st.synced["local-2"])
	assert.Len(t, backend.calls, 2)
}

func TestSyncPendingOrders_ListFailureIsQuiet(t *testing.T) {
	st := &mockStore{listErr: errors.New("database locked")}
	backend := &mockBackend{}
	p := NewPoller(st, backend)

	p.syncPendingOrders(context.Background())

	assert.Empty(t, backend.calls)
}
