package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

type purchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) repository.PurchaseRepository {
	return &purchaseRepo{pool: pool}
}

func (r *purchaseRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Purchase) error {
	const q = `
INSERT INTO purchases (id, user_id, product_id, price, code_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, p.ID, p.UserID, p.ProductID, p.Price, p.CodeID, p.CreatedAt)
	return err
}

func (r *purchaseRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Purchase, error) {
	const q = `
SELECT id, user_id, product_id, price, code_id, created_at
  FROM purchases
 WHERE user_id = $1
 ORDER BY created_at DESC;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Purchase
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.Price, &p.CodeID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *purchaseRepo) Count(ctx context.Context, tx repository.Tx) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM purchases;`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
