package service

import (
	"context"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/paymongo"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/stock"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

// MockStockValidator implements StockValidator for testing
type MockStockValidator struct {
	Result *stock.Result
	Err    error
	Calls  int
}

func (m *MockStockValidator) Validate(_ context.Context, _ []domain.CartItem) (*stock.Result, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// MockLoyaltyEngine implements LoyaltyEngine for testing
type MockLoyaltyEngine struct {
	RedeemErr     error
	RedeemCalls   int
	RedeemedOrder string
	RedeemedPts   int
	AwardErr      error
	AwardedOrders []string
	AwardedAmount float64
}

func (m *MockLoyaltyEngine) Redeem(_ context.Context, _ string, points int, _ float64, orderID string) (int, error) {
	m.RedeemCalls++
	if m.RedeemErr != nil {
		return 0, m.RedeemErr
	}
	m.RedeemedOrder = orderID
	m.RedeemedPts = points
	return 0, nil
}

func (m *MockLoyaltyEngine) Award(_ context.Context, _ string, orderID string, amount float64) (int, error) {
	if m.AwardErr != nil {
		return 0, m.AwardErr
	}
	m.AwardedOrders = append(m.AwardedOrders, orderID)
	m.AwardedAmount = amount
	return 0, nil
}

// MockPaymentGateway implements PaymentGateway for testing
type MockPaymentGateway struct {
	Source       *domain.PaymentSource
	CreateErr    error
	CreateCalls  int
	PollStatus   domain.SourceStatus
	PollErr      error
	PolledSource string
}

func (m *MockPaymentGateway) CreateSource(_ context.Context, method domain.PaymentMethod, amount float64, orderID string, _ paymongo.Billing) (*domain.PaymentSource, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Source != nil {
		return m.Source, nil
	}
	// Default: a source that charges exactly what was asked.
	return &domain.PaymentSource{
		ID:          "src_test",
		Method:      method,
		Amount:      paymongo.Centavos(amount),
		CheckoutURL: "https://gateway.test/checkout/src_test",
		Status:      domain.SourceStatusPending,
	}, nil
}

func (m *MockPaymentGateway) WaitForPaid(_ context.Context, sourceID string, _ *paymongo.PollConfig) (domain.SourceStatus, error) {
	m.PolledSource = sourceID
	if m.PollErr != nil {
		return "", m.PollErr
	}
	return m.PollStatus, nil
}

// MockOrderBackend implements OrderBackend for testing
type MockOrderBackend struct {
	Response *orders.CreateResponse
	Err      error
	Calls    int
	LastReq  *orders.CreateRequest
}

func (m *MockOrderBackend) Create(_ context.Context, req *orders.CreateRequest) (*orders.CreateResponse, error) {
	m.Calls++
	m.LastReq = req
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		return m.Response, nil
	}
	return &orders.CreateResponse{OrderID: "ord-backend", Status: "pending"}, nil
}

// MemStore implements store.PendingOrders in memory for testing
type MemStore struct {
	Records map[string]*store.Record
	SaveErr error
}

func NewMemStore() *MemStore {
	return &MemStore{Records: make(map[string]*store.Record)}
}

func (m *MemStore) Save(_ context.Context, rec *store.Record) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	cp := *rec
	m.Records[rec.LocalID] = &cp
	return nil
}

func (m *MemStore) Get(_ context.Context, localID string) (*store.Record, error) {
	rec, ok := m.Records[localID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *MemStore) UpdateStatus(_ context.Context, localID string, status domain.OrderStatus, pendingSync bool) error {
	rec, ok := m.Records[localID]
	if !ok {
		return store.ErrNotFound
	}
	rec.Status = status
	rec.PendingSync = pendingSync
	return nil
}

func (m *MemStore) ListPending(_ context.Context) ([]*store.Record, error) {
	var out []*store.Record
	for _, rec := range m.Records {
		if rec.PendingSync {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemStore) MarkSynced(_ context.Context, localID, backendID string) error {
	rec, ok := m.Records[localID]
	if !ok {
		return store.ErrNotFound
	}
	rec.BackendID = backendID
	rec.PendingSync = false
	rec.Status = domain.OrderStatusCompleted
	return nil
}

func (m *MemStore) Close() error { return nil }

// newTestCheckoutService wires a fully mocked service
func newTestCheckoutService(
	stockMock *MockStockValidator,
	loyaltyMock *MockLoyaltyEngine,
	gatewayMock *MockPaymentGateway,
	backendMock *MockOrderBackend,
	pending *MemStore,
) *CheckoutServiceImpl {
	return NewCheckoutService(stockMock, loyaltyMock, gatewayMock, backendMock, pending, nil)
}

func allInStock(items ...string) *stock.Result {
	r := &stock.Result{OK: true}
	for _, id := range items {
		r.Items = append(r.Items, stock.ItemResult{ProductID: id, Available: true})
	}
	return r
}
