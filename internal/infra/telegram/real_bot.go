package telegram

import (
	"context"
	"errors"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-code-shop/internal/application"
	"telegram-code-shop/internal/config"
	"telegram-code-shop/internal/domain/ports/adapter"
	"telegram-code-shop/internal/infra/i18n"
	red "telegram-code-shop/internal/infra/redis"
)

// RealTelegramBotAdapter polls updates with a worker pool and delegates
// to the BotFacade. It renders menus and rejection texts; the purchase
// semantics live entirely in the use cases.
type RealTelegramBotAdapter struct {
	bot        *tgbotapi.BotAPI
	cfg        *config.BotConfig
	shopCfg    *config.ShopConfig
	facade     *application.BotFacade
	limiter    *red.RateLimiter
	pending    *red.PendingStateRepo
	translator *i18n.Translator
	log        *zerolog.Logger

	adminIDsMap   map[int64]struct{}
	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	shopCfg *config.ShopConfig,
	facade *application.BotFacade,
	limiter *red.RateLimiter,
	pending *red.PendingStateRepo,
	translator *i18n.Translator,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	adminMap := map[int64]struct{}{}
	for _, id := range cfg.AdminIDs {
		adminMap[id] = struct{}{}
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		shopCfg:       shopCfg,
		facade:        facade,
		limiter:       limiter,
		pending:       pending,
		translator:    translator,
		log:           &l,
		adminIDsMap:   adminMap,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	switch {
	case up.CallbackQuery != nil:
		return r.handleCallback(ctx, up.CallbackQuery)
	case up.Message != nil && up.Message.IsCommand():
		if h, ok := r.commandRoutes()[up.Message.Command()]; ok {
			return h(ctx, up.Message)
		}
		return r.SendMessage(ctx, up.Message.Chat.ID, r.translator.T("help"))
	case up.Message != nil:
		// Free text outside a command: point at the menu.
		return r.SendMessage(ctx, up.Message.Chat.ID, r.translator.T("help"))
	}
	return nil
}

// SendMessage implements adapter.TelegramBotAdapter for out-of-band
// notices (top-ups, low-stock alerts).
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) isAdmin(userID int64) bool {
	_, ok := r.adminIDsMap[userID]
	return ok
}
