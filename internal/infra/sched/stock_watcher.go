package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-code-shop/internal/domain/model"
	"telegram-code-shop/internal/domain/ports/adapter"
	"telegram-code-shop/internal/infra/metrics"
	"telegram-code-shop/internal/usecase"
)

// StockWatcher periodically samples unsold-code counts, feeds the
// inventory gauge, and alerts admins when a pool runs low. Sold codes
// never return to the pool, so low stock only resolves by provisioning.
type StockWatcher struct {
	interval  time.Duration
	threshold int
	catalogUC *usecase.CatalogUseCase
	bot       adapter.TelegramBotAdapter
	adminIDs  []int64
	log       *zerolog.Logger

	alerted map[string]bool // products already alerted at current low level
}

func NewStockWatcher(
	interval time.Duration,
	threshold int,
	catalogUC *usecase.CatalogUseCase,
	bot adapter.TelegramBotAdapter,
	adminIDs []int64,
	logger *zerolog.Logger,
) *StockWatcher {
	l := logger.With().Str("component", "StockWatcher").Logger()
	return &StockWatcher{
		interval:  interval,
		threshold: threshold,
		catalogUC: catalogUC,
		bot:       bot,
		adminIDs:  adminIDs,
		log:       &l,
		alerted:   map[string]bool{},
	}
}

func (w *StockWatcher) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Int("threshold", w.threshold).Msg("starting stock watcher")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping stock watcher")
			return ctx.Err()
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *StockWatcher) check(ctx context.Context) {
	items, err := w.catalogUC.List(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stock check failed")
		return
	}
	for _, it := range items {
		if it.Product.Kind != model.ProductKindCode {
			continue
		}
		metrics.SetUnsoldCodes(it.Product.ID, it.Unsold)

		if it.Unsold > w.threshold {
			delete(w.alerted, it.Product.ID)
			continue
		}
		if w.alerted[it.Product.ID] {
			continue
		}
		w.alerted[it.Product.ID] = true
		w.log.Warn().Str("product_id", it.Product.ID).Int("unsold", it.Unsold).Msg("low stock")
		w.notifyAdmins(ctx, it.Product.Name, it.Unsold)
	}
}

func (w *StockWatcher) notifyAdmins(ctx context.Context, productName string, unsold int) {
	if w.bot == nil {
		return
	}
	text := fmt.Sprintf("Low stock: product %s has only %d unsold codes left.", productName, unsold)
	for _, id := range w.adminIDs {
		if err := w.bot.SendMessage(ctx, id, text); err != nil {
			w.log.Warn().Err(err).Int64("admin_id", id).Msg("low stock alert failed")
		}
	}
}
