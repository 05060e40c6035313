// File: cmd/seed/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-code-shop/internal/config"
	pg "telegram-code-shop/internal/infra/db/postgres"
	"telegram-code-shop/internal/infra/logging"
	"telegram-code-shop/internal/usecase"

	"telegram-code-shop/internal/domain/model"
)

// Seeds a demo catalog with codes for manual testing. Does nothing when
// products already exist.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	productRepo := pg.NewProductRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	balanceRepo := pg.NewBalanceRepo(pool)
	catalogUC := usecase.NewCatalogUseCase(productRepo, codeRepo)
	provisionUC := usecase.NewProvisionUseCase(productRepo, codeRepo, balanceRepo, nil, logger)

	// If products already exist, do nothing
	existing, err := catalogUC.List(ctx)
	if err != nil {
		log.Fatalf("list products: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d products already present. No changes.\n", len(existing))
		for _, it := range existing {
			fmt.Printf("  - %s (%s, price=%d, unsold=%d)\n", it.Product.ID, it.Product.Name, it.Product.Price, it.Unsold)
		}
		return
	}

	seed := []struct {
		ID    string
		Name  string
		Price int
		Kind  model.ProductKind
		Codes []string
	}{
		{"gift-10", "Gift Card 10", 10, model.ProductKindCode, []string{"GIFT-AAAA-0001", "GIFT-AAAA-0002", "GIFT-AAAA-0003"}},
		{"gift-50", "Gift Card 50", 50, model.ProductKindCode, []string{"GIFT-BBBB-0001"}},
		{"vip", "VIP Membership", 25, model.ProductKindPlain, nil},
	}

	for _, s := range seed {
		if _, err := provisionUC.AddProduct(ctx, s.ID, s.Name, s.Price, s.Kind); err != nil {
			log.Fatalf("add product %s: %v", s.ID, err)
		}
		for _, payload := range s.Codes {
			if _, err := provisionUC.AddCode(ctx, s.ID, payload); err != nil {
				log.Fatalf("add code for %s: %v", s.ID, err)
			}
		}
		fmt.Printf("seeded %s (%d codes)\n", s.ID, len(s.Codes))
	}
	fmt.Println("done")
}
