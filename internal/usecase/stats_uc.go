// File: internal/usecase/stats_uc.go
package usecase

import (
	"context"

	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

// ShopStats is the admin dashboard snapshot.
type ShopStats struct {
	Products        int            `json:"products"`
	Purchases       int            `json:"purchases"`
	UnsoldByProduct map[string]int `json:"unsold_by_product"`
}

// StatsUseCase aggregates read-only counters for the admin API.
type StatsUseCase struct {
	products  repository.ProductRepository
	codes     repository.CodeRepository
	purchases repository.PurchaseRepository
}

func NewStatsUseCase(products repository.ProductRepository, codes repository.CodeRepository, purchases repository.PurchaseRepository) *StatsUseCase {
	return &StatsUseCase{products: products, codes: codes, purchases: purchases}
}

func (uc *StatsUseCase) Collect(ctx context.Context) (*ShopStats, error) {
	products, err := uc.products.List(ctx, repository.NoTx)
	if err != nil {
		return nil, err
	}
	nPurchases, err := uc.purchases.Count(ctx, repository.NoTx)
	if err != nil {
		return nil, err
	}

	stats := &ShopStats{
		Products:        len(products),
		Purchases:       nPurchases,
		UnsoldByProduct: map[string]int{},
	}
	for _, p := range products {
		if p.Kind != model.ProductKindCode {
			continue
		}
		n, err := uc.codes.CountUnsold(ctx, repository.NoTx, p.ID)
		if err != nil {
			return nil, err
		}
		stats.UnsoldByProduct[p.ID] = n
	}
	return stats, nil
}
