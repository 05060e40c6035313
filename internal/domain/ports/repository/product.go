package repository

import (
	"context"

	"telegram-code-shop/internal/domain/model"
)

// ProductRepository is the catalog port. Lookups are pure reads and are
// safe to call concurrently and outside any transaction.
type ProductRepository interface {
	// FindByID resolves a product or returns domain.ErrProductNotFound.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Product, error)
	// List returns the catalog ordered by creation time.
	List(ctx context.Context, tx Tx) ([]*model.Product, error)
	// Insert creates a product; domain.ErrAlreadyExists on duplicate id.
	Insert(ctx context.Context, tx Tx, p *model.Product) error
	// Update edits name/price. Completed sales are not rewritten.
	Update(ctx context.Context, tx Tx, p *model.Product) error
}
