// File: internal/usecase/provision_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/adapter"
	"telegram-code-shop/internal/domain/ports/repository"
	"telegram-code-shop/internal/infra/metrics"
)

// ProvisionUseCase implements the admin side: catalog entries, code
// inventory and balance top-ups. All inputs are validated before any
// state is touched.
type ProvisionUseCase struct {
	products repository.ProductRepository
	codes    repository.CodeRepository
	balances repository.BalanceRepository
	bot      adapter.TelegramBotAdapter // may be nil (seed tool, tests)
	log      *zerolog.Logger
}

func NewProvisionUseCase(
	products repository.ProductRepository,
	codes repository.CodeRepository,
	balances repository.BalanceRepository,
	bot adapter.TelegramBotAdapter,
	logger *zerolog.Logger,
) *ProvisionUseCase {
	l := logger.With().Str("component", "ProvisionUC").Logger()
	return &ProvisionUseCase{
		products: products,
		codes:    codes,
		balances: balances,
		bot:      bot,
		log:      &l,
	}
}

// AddProduct creates a catalog entry. Empty id/name, negative price or an
// unknown kind are rejected with domain.ErrInvalidInput before any write.
func (uc *ProvisionUseCase) AddProduct(ctx context.Context, id, name string, price int, kind model.ProductKind) (*model.Product, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty product name", domain.ErrInvalidInput)
	}
	if price < 0 {
		return nil, fmt.Errorf("%w: negative price %d", domain.ErrInvalidInput, price)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidInput, kind)
	}
	if id == "" {
		id = uuid.NewString()
	}

	p := &model.Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.products.Insert(ctx, repository.NoTx, p); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: duplicate product id %q", domain.ErrInvalidInput, id)
		}
		return nil, err
	}
	metrics.IncProvisioning("add_product")
	uc.log.Info().Str("product_id", p.ID).Str("name", p.Name).Int("price", p.Price).Msg("product added")
	return p, nil
}

// AddCode adds one unsold code to a product's pool. The product must
// exist and the payload must be unique across the entire pool.
func (uc *ProvisionUseCase) AddCode(ctx context.Context, productID, payload string) (*model.Code, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty code payload", domain.ErrInvalidInput)
	}
	if _, err := uc.products.FindByID(ctx, repository.NoTx, productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, fmt.Errorf("%w: unknown product %q", domain.ErrInvalidInput, productID)
		}
		return nil, err
	}

	c := &model.Code{
		ID:        uuid.NewString(),
		ProductID: productID,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.codes.Insert(ctx, repository.NoTx, c); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: duplicate code payload", domain.ErrInvalidInput)
		}
		return nil, err
	}
	metrics.IncProvisioning("add_code")
	uc.log.Info().Str("product_id", productID).Str("code_id", c.ID).Msg("code added")
	return c, nil
}

// TopUp credits the user's balance and notifies them out of band. The
// notification is best effort; a send failure never undoes the credit.
func (uc *ProvisionUseCase) TopUp(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: top-up amount must be positive", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return 0, fmt.Errorf("%w: empty user id", domain.ErrInvalidInput)
	}

	if err := uc.balances.Credit(ctx, repository.NoTx, userID, amount); err != nil {
		return 0, err
	}
	newBal, err := uc.balances.Get(ctx, repository.NoTx, userID)
	if err != nil {
		return 0, err
	}
	metrics.IncProvisioning("top_up")
	uc.log.Info().Str("user_id", userID).Int("amount", amount).Int("balance", newBal).Msg("balance credited")

	uc.notifyTopUp(ctx, userID, amount, newBal)
	return newBal, nil
}

// notifyTopUp pushes the out-of-band notice. Buyers are keyed by their
// Telegram id, so the user id doubles as the chat id.
func (uc *ProvisionUseCase) notifyTopUp(ctx context.Context, userID string, amount, newBal int) {
	if uc.bot == nil {
		return
	}
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		uc.log.Warn().Str("user_id", userID).Msg("user id is not a chat id, skipping top-up notice")
		return
	}
	text := fmt.Sprintf("Your balance was topped up by %d credits. New balance: %d.", amount, newBal)
	if err := uc.bot.SendMessage(ctx, chatID, text); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("top-up notice failed")
	}
}
