package loyalty

import "math"

const (
	// EarnRate: points earned per peso of discounted subtotal.
	EarnRate = 0.20
	// PointsPerPeso: redemption exchange rate, 4 points = ₱1.
	PointsPerPeso = 4.0
	// MaxDiscount caps the peso value of any single redemption.
	MaxDiscount = 20.0
)

// PointsEarned returns floor(subtotal * 0.20). Zero or negative
// subtotal earns nothing.
func PointsEarned(subtotalAfterDiscount float64) int {
	if subtotalAfterDiscount <= 0 {
		return 0
	}
	return int(math.Floor(subtotalAfterDiscount * EarnRate))
}

// DiscountForPoints converts a point count to its peso discount,
// capped at MaxDiscount and rounded to 2 decimal places.
func DiscountForPoints(points int) float64 {
	if points <= 0 {
		return 0
	}
	discount := float64(points) / PointsPerPeso
	if discount > MaxDiscount {
		discount = MaxDiscount
	}
	return math.Round(discount*100) / 100
}
