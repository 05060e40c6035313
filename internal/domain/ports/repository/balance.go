package repository

import "context"

// BalanceRepository is the ledger port. Credit and Debit are atomic with
// respect to concurrent mutations of the same account; the stored amount
// is never negative.
type BalanceRepository interface {
	// Get returns the current balance, 0 (and no error) for unknown users.
	Get(ctx context.Context, tx Tx, userID string) (int, error)
	// Credit adds amount (> 0), creating the account if absent.
	Credit(ctx context.Context, tx Tx, userID string, amount int) error
	// Debit subtracts amount (> 0) only when the balance covers it,
	// otherwise domain.ErrInsufficientFunds with no side effect.
	Debit(ctx context.Context, tx Tx, userID string, amount int) error
}
