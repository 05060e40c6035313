package adapter

import "context"

// TelegramBotAdapter is the outbound messaging port. Use cases only ever
// push plain text through it (top-up notices, low-stock alerts); all menu
// rendering stays in the bot layer.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
