package domain

import "time"

type LoyaltyTransaction struct {
	ID           string    `json:"id"`
	Points       int       `json:"points"`
	Reason       string    `json:"reason"`
	BalanceAfter int       `json:"balance_after"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tier covers balances in [MinPoints, MaxPoints).
type Tier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	MaxPoints int    `json:"max_points"`
}

func (t Tier) Contains(balance int) bool {
	return balance >= t.MinPoints && balance < t.MaxPoints
}

// LoyaltyAccount is the client-side projection of a customer's points
// state. It is advisory UI state only: every authoritative fetch
// overwrites it, and it must never gate a redemption on its own.
type LoyaltyAccount struct {
	Balance int                  `json:"balance"`
	History []LoyaltyTransaction `json:"history"`
	Tier    *Tier                `json:"tier,omitempty"`
}
