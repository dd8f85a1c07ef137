// Package pricing derives a competitive offer price from a client-stated
// budget.
package pricing

import "math"

// Discount brackets applied to the client-stated budget.
const (
	midBudget  = 1000
	highBudget = 5000
)

// Offer derives the proposed price from a positive budget using tiered
// discounts: 10% below 1000, 15% from 1000 to 4999, 20% from 5000 up.
// The discounted price is rounded to the nearest multiple of 100 when it
// is at least 1000, and to the nearest multiple of 50 otherwise.
// Deterministic: equal budgets always produce equal offers.
func Offer(budget int) int {
	b := float64(budget)

	var discounted float64
	switch {
	case budget < midBudget:
		discounted = b - b*0.10
	case budget < highBudget:
		discounted = b - b*0.15
	default:
		discounted = b - b*0.20
	}

	price := int(discounted)
	if price >= 1000 {
		return int(math.Round(float64(price)/100)) * 100
	}
	return int(math.Round(float64(price)/50)) * 50
}
