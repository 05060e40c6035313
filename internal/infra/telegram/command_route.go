package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":   r.handleStartCommand,
		"shop":    r.handleShopCommand,
		"balance": r.handleBalanceCommand,
		"history": r.handleHistoryCommand,
		"help":    r.handleHelpCommand,

		// These handlers are wrapped in the adminOnly middleware.
		"add_product": r.adminOnly(r.handleAddProductCommand),
		"add_code":    r.adminOnly(r.handleAddCodeCommand),
		"topup":       r.adminOnly(r.handleTopUpCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.isAdmin(message.From.ID) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_unauthorized"))
		}
		return next(ctx, message)
	}
}

func userKey(message *tgbotapi.Message) string {
	return strconv.FormatInt(message.From.ID, 10)
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	text := r.translator.T("welcome")
	if r.isAdmin(message.From.ID) {
		text += "\n\n" + r.translator.T("help_admin")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	text := r.translator.T("help")
	if r.isAdmin(message.From.ID) {
		text += "\n\n" + r.translator.T("help_admin")
	}
	return r.SendMessage(ctx, message.Chat.ID, text)
}

func (r *RealTelegramBotAdapter) handleShopCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendShopMenu(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleBalanceCommand(ctx context.Context, message *tgbotapi.Message) error {
	bal, err := r.facade.PurchaseUC.Balance(ctx, userKey(message))
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("balance", bal))
}

func (r *RealTelegramBotAdapter) handleHistoryCommand(ctx context.Context, message *tgbotapi.Message) error {
	purchases, err := r.facade.PurchaseUC.History(ctx, userKey(message))
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	if len(purchases) == 0 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("history_empty"))
	}
	var b strings.Builder
	b.WriteString(r.translator.T("history_header"))
	for _, p := range purchases {
		b.WriteString("\n")
		b.WriteString(r.translator.T("history_item", p.CreatedAt.Format("2006-01-02"), p.ProductID, p.Price))
	}
	return r.SendMessage(ctx, message.Chat.ID, b.String())
}

// /add_product <id> <price> <code|plain> <name...>
func (r *RealTelegramBotAdapter) handleAddProductCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	if len(args) < 4 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", "/add_product <id> <price> <code|plain> <name...>"))
	}
	price, err := strconv.Atoi(args[1])
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", "price must be an integer"))
	}
	name := strings.Join(args[3:], " ")

	p, err := r.facade.ProvisionUC.AddProduct(ctx, args[0], name, price, model.ProductKind(args[2]))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", err.Error()))
		}
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_product_added", p.ID, p.Name, p.Price))
}

// /add_code <product_id> <payload>
func (r *RealTelegramBotAdapter) handleAddCodeCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", "/add_code <product_id> <payload>"))
	}

	c, err := r.facade.ProvisionUC.AddCode(ctx, args[0], args[1])
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", err.Error()))
		}
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	unsold, err := r.facade.CatalogUC.Stock(ctx, c.ProductID)
	if err != nil {
		unsold = -1
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_code_added", c.ProductID, unsold))
}

// /topup <user_id> <amount>
func (r *RealTelegramBotAdapter) handleTopUpCommand(ctx context.Context, message *tgbotapi.Message) error {
	args := strings.Fields(message.CommandArguments())
	if len(args) != 2 {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", "/topup <user_id> <amount>"))
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", "amount must be an integer"))
	}

	newBal, err := r.facade.ProvisionUC.TopUp(ctx, args[0], amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_bad_input", err.Error()))
		}
		return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_generic"))
	}
	return r.SendMessage(ctx, message.Chat.ID, r.translator.T("admin_topup_done", amount, args[0], newBal))
}
