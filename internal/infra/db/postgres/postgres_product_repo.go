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
var _ repository.ProductRepository = (*productRepo)(nil)

type productRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepo{pool: pool}
}

func (r *productRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Product, error) {
	const q = `
SELECT id, name, price, kind, created_at
  FROM products
 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var p model.Product
	err = ex.QueryRow(ctx, q, id).Scan(&p.ID, &p.Name, &p.Price, &p.Kind, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Product, error) {
	const q = `
SELECT id, name, price, kind, created_at
  FROM products
 ORDER BY created_at, id;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Kind, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *productRepo) Insert(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
INSERT INTO products (id, name, price, kind, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if _, err := ex.Exec(ctx, q, p.ID, p.Name, p.Price, p.Kind, p.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update edits name/price only. Sold codes keep the price recorded in
// their purchase row, so historical sales are unaffected.
func (r *productRepo) Update(ctx context.Context, tx repository.Tx, p *model.Product) error {
	const q = `
UPDATE products SET name = $2, price = $3 WHERE id = $1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, p.ID, p.Name, p.Price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
