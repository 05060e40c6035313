package telegram

import (
	"context"

	"telegram-code-shop/internal/domain/ports/adapter"
)

// NoopBot discards outbound messages. Used by the seed tool and tests
// where no live bot is wanted.
type NoopBot struct{}

var _ adapter.TelegramBotAdapter = (*NoopBot)(nil)

func (NoopBot) SendMessage(ctx context.Context, chatID int64, text string) error { return nil }
