//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
)

func TestCatalog_List(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newShopFixture()
	f.addProduct("gift", 10, model.ProductKindCode)
	f.addProduct("vip", 25, model.ProductKindPlain)
	f.addCode("gift", "SECRET-1", time.Now())
	uc := NewCatalogUseCase(f.products, f.codes)

	items, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, it := range items {
		switch it.Product.ID {
		case "gift":
			if it.Unsold != 1 {
				t.Fatalf("gift unsold = %d, want 1", it.Unsold)
			}
		case "vip":
			if it.Unsold != -1 {
				t.Fatalf("plain product unsold = %d, want -1", it.Unsold)
			}
		}
	}
}

func TestCatalog_GetUnknown(t *testing.T) {
	t.Parallel()

	f := newShopFixture()
	uc := NewCatalogUseCase(f.products, f.codes)

	_, err := uc.Get(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
