package model

import "time"

// Balance is the per-user credit account. A user with no row reads as 0.
// The amount is never negative at any point visible outside a transaction.
type Balance struct {
	UserID    string
	Amount    int
	UpdatedAt time.Time
}
