package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CodeRepository = (*codeRepo)(nil)

type codeRepo struct {
	pool *pgxpool.Pool
}

func NewCodeRepo(pool *pgxpool.Pool) repository.CodeRepository {
	return &codeRepo{pool: pool}
}

func (r *codeRepo) CountUnsold(ctx context.Context, tx repository.Tx, productID string) (int, error) {
	const q = `SELECT COUNT(*) FROM codes WHERE product_id = $1 AND NOT sold;`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, q, productID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// AllocateOne claims the earliest-created unsold code of the product and
// marks it sold, in one statement. FOR UPDATE SKIP LOCKED skips codes
// held by other in-flight allocations, so concurrent buyers of the same
// product claim distinct rows without queueing on each other. Until the
// surrounding transaction commits the row lock is held; on rollback the
// code silently returns to the unsold pool.
func (r *codeRepo) AllocateOne(ctx context.Context, tx repository.Tx, productID, buyerID string) (*model.Code, error) {
	const q = `
UPDATE codes
   SET sold = TRUE, sold_to_user_id = $2, sold_at = now()
 WHERE id = (
       SELECT id
         FROM codes
        WHERE product_id = $1 AND NOT sold
        ORDER BY created_at, id
        FOR UPDATE SKIP LOCKED
        LIMIT 1
       )
RETURNING id, product_id, payload, sold, sold_to_user_id, sold_at, created_at;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var c model.Code
	err = ex.QueryRow(ctx, q, productID, buyerID).Scan(
		&c.ID, &c.ProductID, &c.Payload, &c.Sold, &c.SoldToUserID, &c.SoldAt, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOutOfStock
		}
		return nil, err
	}
	return &c, nil
}

func (r *codeRepo) Insert(ctx context.Context, tx repository.Tx, c *model.Code) error {
	const q = `
INSERT INTO codes (id, product_id, payload, sold, created_at)
VALUES ($1, $2, $3, FALSE, $4);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, c.ID, c.ProductID, c.Payload, c.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}
