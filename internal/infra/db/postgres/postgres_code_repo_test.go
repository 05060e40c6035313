//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
)

func seedProduct(t *testing.T, id string, price int, kind model.ProductKind) {
	t.Helper()
	repo := NewProductRepo(testPool)
	err := repo.Insert(context.Background(), nil, &model.Product{
		ID:        id,
		Name:      "Product " + id,
		Price:     price,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
}

func seedCode(t *testing.T, productID, payload string, createdAt time.Time) {
	t.Helper()
	repo := NewCodeRepo(testPool)
	err := repo.Insert(context.Background(), nil, &model.Code{
		ID:        uuid.NewString(),
		ProductID: productID,
		Payload:   payload,
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("seed code: %v", err)
	}
}

func TestCodeRepo_AllocateOne_FIFO(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	seedProduct(t, "gift", 10, model.ProductKindCode)
	base := time.Now().UTC()
	seedCode(t, "gift", "SECOND", base.Add(time.Second))
	seedCode(t, "gift", "FIRST", base)

	repo := NewCodeRepo(testPool)
	c, err := repo.AllocateOne(ctx, nil, "gift", "buyer-1")
	if err != nil {
		t.Fatalf("AllocateOne: %v", err)
	}
	if c.Payload != "FIRST" {
		t.Fatalf("expected FIFO allocation, got %q", c.Payload)
	}
	if !c.Sold || c.SoldToUserID == nil || *c.SoldToUserID != "buyer-1" {
		t.Fatalf("code not marked sold to buyer: %+v", c)
	}

	n, err := repo.CountUnsold(ctx, nil, "gift")
	if err != nil {
		t.Fatalf("CountUnsold: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 unsold, got %d", n)
	}
}

func TestCodeRepo_AllocateOne_Empty(t *testing.T) {
	cleanup(t)
	seedProduct(t, "gift", 10, model.ProductKindCode)

	repo := NewCodeRepo(testPool)
	_, err := repo.AllocateOne(context.Background(), nil, "gift", "buyer-1")
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}

func TestCodeRepo_Insert_DuplicatePayload(t *testing.T) {
	cleanup(t)
	seedProduct(t, "gift", 10, model.ProductKindCode)
	seedProduct(t, "other", 5, model.ProductKindCode)
	seedCode(t, "gift", "SECRET", time.Now().UTC())

	repo := NewCodeRepo(testPool)
	err := repo.Insert(context.Background(), nil, &model.Code{
		ID:        uuid.NewString(),
		ProductID: "other",
		Payload:   "SECRET",
		CreatedAt: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

// Two transactions allocating concurrently must claim distinct codes.
func TestCodeRepo_AllocateOne_Concurrent(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	seedProduct(t, "gift", 10, model.ProductKindCode)
	base := time.Now().UTC()
	const codes = 4
	for i := 0; i < codes; i++ {
		seedCode(t, "gift", "CODE-"+string(rune('A'+i)), base.Add(time.Duration(i)*time.Millisecond))
	}

	repo := NewCodeRepo(testPool)
	txm := NewTxManager(testPool)

	const workers = 8
	payloads := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
				c, err := repo.AllocateOne(ctx, tx, "gift", "buyer")
				if err != nil {
					return err
				}
				payloads <- c.Payload
				return nil
			})
			if err != nil && !errors.Is(err, domain.ErrOutOfStock) {
				t.Errorf("worker %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
	close(payloads)

	seen := map[string]bool{}
	for p := range payloads {
		if seen[p] {
			t.Fatalf("payload %q claimed twice", p)
		}
		seen[p] = true
	}
	if len(seen) != codes {
		t.Fatalf("expected %d distinct claims, got %d", codes, len(seen))
	}
}

// A rolled-back transaction returns its claimed code to the pool.
func TestCodeRepo_AllocateOne_RollbackReturnsCode(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	seedProduct(t, "gift", 10, model.ProductKindCode)
	seedCode(t, "gift", "SECRET", time.Now().UTC())

	repo := NewCodeRepo(testPool)
	txm := NewTxManager(testPool)

	boom := errors.New("boom")
	err := txm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := repo.AllocateOne(ctx, tx, "gift", "buyer"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	n, err := repo.CountUnsold(ctx, nil, "gift")
	if err != nil {
		t.Fatalf("CountUnsold: %v", err)
	}
	if n != 1 {
		t.Fatalf("rollback lost the code: %d unsold", n)
	}
}
