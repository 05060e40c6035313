// File: internal/usecase/purchase_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/repository"
	"telegram-code-shop/internal/infra/logging"
	"telegram-code-shop/internal/infra/metrics"
)

// maxTxAttempts bounds transparent retries of a purchase transaction on
// transient storage conflicts. Business rejections are never retried.
const maxTxAttempts = 3

// retryBackoff is the pause between transaction attempts.
const retryBackoff = 25 * time.Millisecond

// PurchaseUseCase coordinates one buy: catalog lookup, funds check,
// allocation (code products), debit and the purchase record, all inside
// a single transaction. A rejection or failure at any step leaves the
// system exactly as if the purchase never started.
type PurchaseUseCase struct {
	products  repository.ProductRepository
	codes     repository.CodeRepository
	balances  repository.BalanceRepository
	purchases repository.PurchaseRepository
	txm       repository.TransactionManager
	log       *zerolog.Logger
}

func NewPurchaseUseCase(
	products repository.ProductRepository,
	codes repository.CodeRepository,
	balances repository.BalanceRepository,
	purchases repository.PurchaseRepository,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *PurchaseUseCase {
	l := logger.With().Str("component", "PurchaseUC").Logger()
	return &PurchaseUseCase{
		products:  products,
		codes:     codes,
		balances:  balances,
		purchases: purchases,
		txm:       txm,
		log:       &l,
	}
}

// Buy purchases one unit of the product for the user. On success the
// receipt carries the delivered payload (code products) and the new
// balance. Rejections (domain.ErrProductNotFound, domain.ErrOutOfStock,
// domain.ErrInsufficientFunds) surface verbatim and have no side effect.
func (uc *PurchaseUseCase) Buy(ctx context.Context, userID, productID string) (*model.Receipt, error) {
	defer logging.TraceDuration(uc.log, "PurchaseUC.Buy")()
	start := time.Now()

	// Catalog lookup is a pure read; it runs outside the transaction.
	product, err := uc.products.FindByID(ctx, repository.NoTx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			metrics.IncPurchase("product_not_found")
			return nil, err
		}
		uc.log.Error().Err(err).Str("product_id", productID).Msg("catalog lookup failed")
		metrics.IncPurchase("internal_error")
		return nil, domain.ErrInternal
	}

	var rcpt *model.Receipt
	for attempt := 1; ; attempt++ {
		rcpt, err = uc.buyOnce(ctx, userID, product)
		if err == nil {
			break
		}
		if domain.IsPurchaseRejection(err) {
			metrics.IncPurchase(rejectionLabel(err))
			return nil, err
		}
		if !isTransient(err) || attempt >= maxTxAttempts {
			uc.log.Error().Err(err).
				Str("user_id", userID).Str("product_id", productID).
				Int("attempts", attempt).Msg("purchase failed")
			metrics.IncPurchase("internal_error")
			return nil, domain.ErrInternal
		}
		uc.log.Warn().Err(err).Int("attempt", attempt).Msg("transient conflict, retrying purchase")
		metrics.IncPurchaseRetry()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}

	metrics.IncPurchase("committed")
	metrics.ObservePurchaseDuration(time.Since(start))
	metrics.AddRevenue(product.Price)
	uc.log.Info().
		Str("purchase_id", rcpt.PurchaseID).
		Str("user_id", userID).
		Str("product_id", productID).
		Int("price", product.Price).
		Msg("purchase committed")
	return rcpt, nil
}

// buyOnce runs FundsCheck -> Allocating -> Debiting inside one
// transaction. Any error aborts the whole unit: the claimed code goes
// back to unsold and the debit never applies.
func (uc *PurchaseUseCase) buyOnce(ctx context.Context, userID string, product *model.Product) (*model.Receipt, error) {
	var rcpt *model.Receipt
	err := uc.txm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		// FundsCheck rejects early; the conditional Debit below is the
		// authoritative guard under concurrency.
		bal, err := uc.balances.Get(ctx, tx, userID)
		if err != nil {
			return err
		}
		if bal < product.Price {
			return domain.ErrInsufficientFunds
		}

		var code *model.Code
		if product.Kind == model.ProductKindCode {
			code, err = uc.codes.AllocateOne(ctx, tx, product.ID, userID)
			if err != nil {
				return err
			}
		}

		if product.Price > 0 {
			if err := uc.balances.Debit(ctx, tx, userID, product.Price); err != nil {
				return err
			}
		}

		purchase := &model.Purchase{
			ID:        newPurchaseID(),
			UserID:    userID,
			ProductID: product.ID,
			Price:     product.Price,
			CreatedAt: time.Now().UTC(),
		}
		if code != nil {
			purchase.CodeID = &code.ID
		}
		if err := uc.purchases.Insert(ctx, tx, purchase); err != nil {
			return err
		}

		newBal, err := uc.balances.Get(ctx, tx, userID)
		if err != nil {
			return err
		}

		rcpt = &model.Receipt{
			PurchaseID:  purchase.ID,
			ProductName: product.Name,
			Price:       product.Price,
			NewBalance:  newBal,
		}
		if code != nil {
			rcpt.CodePayload = code.Payload
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rcpt, nil
}

// Balance reads the user's current credits; unknown users read as 0.
func (uc *PurchaseUseCase) Balance(ctx context.Context, userID string) (int, error) {
	return uc.balances.Get(ctx, repository.NoTx, userID)
}

// History lists the user's committed purchases, newest first.
func (uc *PurchaseUseCase) History(ctx context.Context, userID string) ([]*model.Purchase, error) {
	return uc.purchases.ListByUser(ctx, repository.NoTx, userID)
}

func rejectionLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found"
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	}
	return "internal_error"
}

// newPurchaseID returns a time-ordered ULID string.
func newPurchaseID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
