package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/loyalty"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/orders"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/paymongo"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/stock"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/store"
)

type StockValidator interface {
	Validate(ctx context.Context, items []domain.CartItem) (*stock.Result, error)
}

type LoyaltyEngine interface {
	Redeem(ctx context.Context, customerID string, points int, subtotal float64, orderID string) (int, error)
	Award(ctx context.Context, customerID, orderID string, orderAmount float64) (int, error)
}

type PaymentGateway interface {
	CreateSource(ctx context.Context, method domain.PaymentMethod, amount float64, orderID string, b paymongo.Billing) (*domain.PaymentSource, error)
	WaitForPaid(ctx context.Context, sourceID string, cfg *paymongo.PollConfig) (domain.SourceStatus, error)
}

type OrderBackend interface {
	Create(ctx context.Context, req *orders.CreateRequest) (*orders.CreateResponse, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, request *CheckoutRequest) (*CheckoutResult, error)
	CompletePayment(ctx context.Context, localOrderID string) (*CheckoutResult, error)
	RetryPayment(ctx context.Context, localOrderID string, b paymongo.Billing) (*CheckoutResult, error)
}

type CheckoutServiceImpl struct {
	stock   StockValidator
	loyalty LoyaltyEngine
	gateway PaymentGateway
	orders  OrderBackend
	store   store.PendingOrders
	poll    *paymongo.PollConfig
}

func NewCheckoutService(
	stockValidator StockValidator,
	loyaltyEngine LoyaltyEngine,
	gateway PaymentGateway,
	orderBackend OrderBackend,
	pending store.PendingOrders,
	poll *paymongo.PollConfig,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		stock:   stockValidator,
		loyalty: loyaltyEngine,
		gateway: gateway,
		orders:  orderBackend,
		store:   pending,
		poll:    poll,
	}
}

type CheckoutRequest struct {
	Draft   *domain.OrderDraft
	Billing paymongo.Billing
}

type CheckoutResult struct {
	LocalOrderID   string
	BackendOrderID string
	Status         domain.OrderStatus
	Subtotal       float64
	Discount       float64
	Total          float64
	PointsRedeemed int
	PointsEarned   int
	Source         *domain.PaymentSource
	PendingSync    bool
}

// Checkout runs the pipeline up to the point where the customer leaves:
// stock, points, then either a gateway payment source (caller redirects
// and later resumes via CompletePayment) or, for cash on delivery,
// straight through to order submission.
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, request *CheckoutRequest) (*CheckoutResult, error) {
	draft := request.Draft
	if draft == nil || len(draft.Items) == 0 {
		return nil, &StageError{Stage: StageValidate, err: ErrEmptyCart}
	}
	if !draft.PaymentMethod.Valid() {
		return nil, &StageError{
			Stage:   StageValidate,
			Message: fmt.Sprintf("%v: %q", ErrInvalidMethod, draft.PaymentMethod),
			err:     ErrInvalidMethod,
		}
	}

	rec := &store.Record{
		LocalID:  uuid.New().String(),
		Draft:    *draft,
		Status:   domain.OrderStatusInitiated,
		Subtotal: draft.Subtotal(),
		Total:    draft.Subtotal(),
	}

	if err := s.validateStock(ctx, rec); err != nil {
		return nil, err
	}

	if err := s.redeemPoints(ctx, rec); err != nil {
		return nil, err
	}

	if draft.PaymentMethod.RequiresGateway() {
		return s.initiatePayment(ctx, rec, request.Billing)
	}

	// Cash settles on delivery; nothing suspends the flow.
	return s.submitOrder(ctx, rec)
}

func (s *CheckoutServiceImpl) resultFor(rec *store.Record) *CheckoutResult {
	return &CheckoutResult{
		LocalOrderID:   rec.LocalID,
		BackendOrderID: rec.BackendID,
		Status:         rec.Status,
		Subtotal:       rec.Subtotal,
		Discount:       rec.Discount,
		Total:          rec.Total,
		PointsRedeemed: rec.Draft.PointsToRedeem,
		PointsEarned:   loyalty.PointsEarned(rec.Total),
		PendingSync:    rec.PendingSync,
	}
}
