package loyalty

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DougJudyPontiacBandit/ramyeonsite/domain"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/cache"
	"github.com/DougJudyPontiacBandit/ramyeonsite/internal/httpx"
)

// RedemptionCheck is the outcome of validating a redemption request
// against the authoritative backend balance.
type RedemptionCheck struct {
	OK              bool
	AvailablePoints int
	Reason          string
}

// Engine talks to the loyalty backend and keeps an advisory local
// projection of the account. The backend is the single source of truth
// for the balance; the projection is UI state, overwritten by every
// authoritative fetch.
type Engine struct {
	api   *httpx.Client
	cache cache.Store

	mu      sync.Mutex
	account domain.LoyaltyAccount
	awarded map[string]bool // order ids already credited
}

func NewEngine(api *httpx.Client, store cache.Store) *Engine {
	return &Engine{
		api:     api,
		cache:   store,
		awarded: make(map[string]bool),
	}
}

type balanceResponse struct {
	Balance int `json:"balance"`
}

// Balance returns the customer's point balance, served from cache when
// a fetch happened within the TTL.
func (e *Engine) Balance(ctx context.Context, customerID string) (int, error) {
	key := cache.Key("balance", customerID)
	if data, err := e.cache.Get(ctx, key); err == nil {
		var resp balanceResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return resp.Balance, nil
		}
	}

	var resp balanceResponse
	err := httpx.Retry(ctx, nil, func() error {
		return e.api.GetJSON(ctx, "/loyalty/balance", &resp)
	})
	if err != nil {
		return 0, fmt.Errorf("fetch balance: %w", err)
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := e.cache.Put(ctx, key, data); err != nil {
			log.Printf("failed to cache balance for %v: %v", customerID, err)
		}
	}

	e.mu.Lock()
	e.account.Balance = resp.Balance
	e.mu.Unlock()
	return resp.Balance, nil
}

type historyResponse struct {
	Transactions []domain.LoyaltyTransaction `json:"transactions"`
}

// History returns the most-recent-first transaction history, cached.
func (e *Engine) History(ctx context.Context, customerID string, limit int) ([]domain.LoyaltyTransaction, error) {
	key := cache.Key("history", fmt.Sprintf("%s:%d", customerID, limit))
	if data, err := e.cache.Get(ctx, key); err == nil {
		var resp historyResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return resp.Transactions, nil
		}
	}

	var resp historyResponse
	err := httpx.Retry(ctx, nil, func() error {
		return e.api.GetJSON(ctx, fmt.Sprintf("/loyalty/history?limit=%d", limit), &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := e.cache.Put(ctx, key, data); err != nil {
			log.Printf("failed to cache history for %v: %v", customerID, err)
		}
	}

	e.mu.Lock()
	e.account.History = resp.Transactions
	e.mu.Unlock()
	return resp.Transactions, nil
}

type tiersResponse struct {
	Tiers []domain.Tier `json:"tiers"`
}

func (e *Engine) Tiers(ctx context.Context) ([]domain.Tier, error) {
	key := cache.Key("tiers", "all")
	if data, err := e.cache.Get(ctx, key); err == nil {
		var resp tiersResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			return resp.Tiers, nil
		}
	}

	var resp tiersResponse
	err := httpx.Retry(ctx, nil, func() error {
		return e.api.GetJSON(ctx, "/loyalty/tiers", &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tiers: %w", err)
	}

	if data, err := json.Marshal(resp); err == nil {
		if err := e.cache.Put(ctx, key, data); err != nil {
			log.Printf("failed to cache tiers: %v", err)
		}
	}
	return resp.Tiers, nil
}

// CurrentTier returns the customer's tier, cached.
func (e *Engine) CurrentTier(ctx context.Context, customerID string) (*domain.Tier, error) {
	key := cache.Key("tier", customerID)
	if data, err := e.cache.Get(ctx, key); err == nil {
		var tier domain.Tier
		if err := json.Unmarshal(data, &tier); err == nil {
			return &tier, nil
		}
	}

	var tier domain.Tier
	err := httpx.Retry(ctx, nil, func() error {
		return e.api.GetJSON(ctx, "/loyalty/current-tier", &tier)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch current tier: %w", err)
	}

	if data, err := json.Marshal(tier); err == nil {
		if err := e.cache.Put(ctx, key, data); err != nil {
			log.Printf("failed to cache tier for %v: %v", customerID, err)
		}
	}

	e.mu.Lock()
	e.account.Tier = &tier
	e.mu.Unlock()
	return &tier, nil
}

// TierFor picks the tier whose [MinPoints, MaxPoints) interval holds
// balance. When intervals touch, the higher tier wins.
func TierFor(balance int, tiers []domain.Tier) *domain.Tier {
	var best *domain.Tier
	for i := range tiers {
		t := &tiers[i]
		if !t.Contains(balance) {
			continue
		}
		if best == nil || t.MinPoints >= best.MinPoints {
			best = t
		}
	}
	return best
}

type validateRedemptionRequest struct {
	CustomerID     string  `json:"customer_id"`
	PointsToRedeem int     `json:"points_to_redeem"`
	OrderSubtotal  float64 `json:"order_subtotal"`
}

type validateRedemptionResponse struct {
	Valid           bool   `json:"valid"`
	AvailablePoints int    `json:"available_points"`
	Reason          string `json:"reason,omitempty"`
}

// ValidateRedemption checks a redemption request against the
// authoritative backend balance. It never consults the cache: a stale
// balance here is how double-spends happen. Side-effect-free.
func (e *Engine) ValidateRedemption(ctx context.Context, customerID string, points int, subtotal float64) (*RedemptionCheck, error) {
	if points <= 0 {
		return &RedemptionCheck{OK: false, Reason: "points to redeem must be positive"}, nil
	}
	if DiscountForPoints(points) > subtotal {
		return &RedemptionCheck{OK: false, Reason: "discount would exceed order subtotal"}, nil
	}

	req := validateRedemptionRequest{
		CustomerID:     customerID,
		PointsToRedeem: points,
		OrderSubtotal:  subtotal,
	}
	var resp validateRedemptionResponse
	if err := e.api.PostJSON(ctx, "/loyalty/validate-redemption", req, &resp); err != nil {
		return nil, fmt.Errorf("validate redemption: %w", err)
	}

	return &RedemptionCheck{
		OK:              resp.Valid,
		AvailablePoints: resp.AvailablePoints,
		Reason:          resp.Reason,
	}, nil
}

type redeemRequest struct {
	PointsToRedeem int    `json:"points_to_redeem"`
	OrderID        string `json:"order_id"`
}

type redeemResponse struct {
	NewBalance int `json:"new_balance"`
}

// Redeem validates first, then asks the backend to spend the points.
// The local balance is only moved once the backend confirms; concurrent
// redemptions from another tab are the backend's to reject.
func (e *Engine) Redeem(ctx context.Context, customerID string, points int, subtotal float64, orderID string) (int, error) {
	check, err := e.ValidateRedemption(ctx, customerID, points, subtotal)
	if err != nil {
		return 0, err
	}
	if !check.OK {
		return 0, &httpx.Error{Kind: httpx.KindAvailability, Message: check.Reason}
	}

	var resp redeemResponse
	req := redeemRequest{PointsToRedeem: points, OrderID: orderID}
	if err := e.api.PostJSON(ctx, "/loyalty/redeem", req, &resp); err != nil {
		return 0, fmt.Errorf("redeem points: %w", err)
	}

	if err := e.cache.Invalidate(ctx, cache.Key("balance", customerID)); err != nil {
		log.Printf("failed to invalidate balance cache for %v: %v", customerID, err)
	}

	e.mu.Lock()
	e.account.Balance = resp.NewBalance
	e.mu.Unlock()
	return resp.NewBalance, nil
}

type awardRequest struct {
	OrderAmount float64 `json:"order_amount"`
	OrderID     string  `json:"order_id"`
}

type awardResponse struct {
	PointsAwarded int `json:"points_awarded"`
	NewBalance    int `json:"new_balance"`
}

// Award credits points for a completed order. It is idempotent per
// order id: a retry after a redirect or reload must not double-credit.
func (e *Engine) Award(ctx context.Context, customerID, orderID string, orderAmount float64) (int, error) {
	e.mu.Lock()
	if e.awarded[orderID] {
		balance := e.account.Balance
		e.mu.Unlock()
		log.Printf("points already awarded for order %v, skipping", orderID)
		return balance, nil
	}
	e.mu.Unlock()

	var resp awardResponse
	req := awardRequest{OrderAmount: orderAmount, OrderID: orderID}
	if err := e.api.PostJSON(ctx, "/loyalty/award", req, &resp); err != nil {
		return 0, fmt.Errorf("award points: %w", err)
	}

	if err := e.cache.Invalidate(ctx, cache.Key("balance", customerID)); err != nil {
		log.Printf("failed to invalidate balance cache for %v: %v", customerID, err)
	}

	e.mu.Lock()
	e.awarded[orderID] = true
	e.account.Balance = resp.NewBalance
	e.account.History = append([]domain.LoyaltyTransaction{{
		ID:           uuid.New().String(),
		Points:       resp.PointsAwarded,
		Reason:       fmt.Sprintf("order %s", orderID),
		BalanceAfter: resp.NewBalance,
		CreatedAt:    time.Now(),
	}}, e.account.History...)
	e.mu.Unlock()

	return resp.NewBalance, nil
}

// Projection returns a copy of the advisory local account state.
func (e *Engine) Projection() domain.LoyaltyAccount {
	e.mu.Lock()
	defer e.mu.Unlock()
	account := e.account
	account.History = append([]domain.LoyaltyTransaction(nil), e.account.History...)
	return account
}
