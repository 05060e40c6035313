// File: internal/usecase/catalog_uc.go
package usecase

import (
	"context"

	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

// ProductWithStock pairs a catalog entry with its unsold-code count for
// menu rendering. Plain products report -1 (stock does not apply).
type ProductWithStock struct {
	Product *model.Product
	Unsold  int
}

// CatalogUseCase serves read-only catalog queries for the bot and the
// admin API.
type CatalogUseCase struct {
	products repository.ProductRepository
	codes    repository.CodeRepository
}

func NewCatalogUseCase(products repository.ProductRepository, codes repository.CodeRepository) *CatalogUseCase {
	return &CatalogUseCase{products: products, codes: codes}
}

// Get resolves one product; domain.ErrProductNotFound when unknown.
func (uc *CatalogUseCase) Get(ctx context.Context, id string) (*model.Product, error) {
	return uc.products.FindByID(ctx, repository.NoTx, id)
}

// List returns the catalog with per-product stock, oldest first.
func (uc *CatalogUseCase) List(ctx context.Context) ([]ProductWithStock, error) {
	products, err := uc.products.List(ctx, repository.NoTx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductWithStock, 0, len(products))
	for _, p := range products {
		unsold := -1
		if p.Kind == model.ProductKindCode {
			unsold, err = uc.codes.CountUnsold(ctx, repository.NoTx, p.ID)
			if err != nil {
				return nil, err
			}
		}
		out = append(out, ProductWithStock{Product: p, Unsold: unsold})
	}
	return out, nil
}

// Stock reports the unsold-code count for one product.
func (uc *CatalogUseCase) Stock(ctx context.Context, productID string) (int, error) {
	return uc.codes.CountUnsold(ctx, repository.NoTx, productID)
}
