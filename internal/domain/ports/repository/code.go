package repository

import (
	"context"

	"telegram-code-shop/internal/domain/model"
)

// CodeRepository is the inventory pool port.
type CodeRepository interface {
	// CountUnsold reports how many codes of the product are still unsold.
	CountUnsold(ctx context.Context, tx Tx, productID string) (int, error)
	// AllocateOne exclusively claims the earliest-created unsold code of
	// the product for the buyer and marks it sold. Two concurrent calls
	// can never claim the same code; claims on distinct codes do not
	// contend. Returns domain.ErrOutOfStock immediately when the pool is
	// empty; it never waits for inventory.
	AllocateOne(ctx context.Context, tx Tx, productID, buyerID string) (*model.Code, error)
	// Insert adds an unsold code; domain.ErrAlreadyExists when the
	// payload is already present anywhere in the pool.
	Insert(ctx context.Context, tx Tx, c *model.Code) error
}
