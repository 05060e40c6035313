package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.BalanceRepository = (*balanceRepo)(nil)

type balanceRepo struct {
	pool *pgxpool.Pool
}

func NewBalanceRepo(pool *pgxpool.Pool) repository.BalanceRepository {
	return &balanceRepo{pool: pool}
}

// Get reads the balance; a missing row is a zero balance, not an error.
func (r *balanceRepo) Get(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT amount FROM balances WHERE user_id = $1;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var amount int
	if err := ex.QueryRow(ctx, q, userID).Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return amount, nil
}

// Credit upserts in one statement; concurrent credits on the same user
// serialize on the row and both apply (no lost updates).
func (r *balanceRepo) Credit(ctx context.Context, tx repository.Tx, userID string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	const q = `
INSERT INTO balances (user_id, amount, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET
  amount = balances.amount + EXCLUDED.amount,
  updated_at = now();
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, userID, amount)
	return err
}

// Debit is a single conditional update: it only applies when the balance
// covers the amount, so the account can never observably go negative.
// The amount >= check runs under the row lock, making the debit the
// authoritative funds guard under concurrency.
func (r *balanceRepo) Debit(ctx context.Context, tx repository.Tx, userID string, amount int) error {
	if amount <= 0 {
		return domain.ErrInvalidInput
	}
	const q = `
UPDATE balances
   SET amount = amount - $2, updated_at = now()
 WHERE user_id = $1 AND amount >= $2;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, userID, amount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}
