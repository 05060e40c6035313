package repository

import (
	"context"

	"telegram-code-shop/internal/domain/model"
)

// PurchaseRepository records committed purchases.
type PurchaseRepository interface {
	Insert(ctx context.Context, tx Tx, p *model.Purchase) error
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Purchase, error)
	Count(ctx context.Context, tx Tx) (int, error)
}
