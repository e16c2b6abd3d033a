// Package economy holds the rizz-token arithmetic. Balances are unsigned and
// the only invariant is that a spend can never drive one negative.
package economy

import "errors"

// ErrInsufficientCredits is returned when a spend exceeds the balance.
var ErrInsufficientCredits = errors.New("economy: insufficient credits")

// Spend deducts cost from balance, refusing to go negative.
func Spend(balance, cost uint64) (uint64, error) {
	if cost > balance {
		return balance, ErrInsufficientCredits
	}
	return balance - cost, nil
}

// Grant adds amount to balance, saturating instead of wrapping.
func Grant(balance, amount uint64) uint64 {
	next := balance + amount
	if next < balance {
		return ^uint64(0)
	}
	return next
}
