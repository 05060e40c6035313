package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-code-shop/internal/domain"
	"telegram-code-shop/internal/domain/model"
	red "telegram-code-shop/internal/infra/redis"
)

// handleCallback dispatches inline-keyboard taps. "buy:<id>" opens a
// confirmation, "confirm"/"cancel" resolve the pending purchase held in
// redis for the chat.
func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	// Ack first so the client stops the spinner even if handling is slow.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("callback ack failed")
	}

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, "buy:"):
		return r.handleBuyTap(ctx, chatID, strings.TrimPrefix(data, "buy:"))
	case data == "confirm":
		return r.handleConfirmTap(ctx, chatID, cb.From.ID)
	case data == "cancel":
		if err := r.pending.ClearPending(ctx, chatID); err != nil {
			r.log.Warn().Err(err).Msg("clear pending failed")
		}
		return r.SendMessage(ctx, chatID, r.translator.T("buy_cancelled"))
	case data == "shop":
		return r.sendShopMenu(ctx, chatID)
	}
	return nil
}

func (r *RealTelegramBotAdapter) sendShopMenu(ctx context.Context, chatID int64) error {
	items, err := r.facade.CatalogUC.List(ctx)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	if len(items) == 0 {
		return r.SendMessage(ctx, chatID, r.translator.T("shop_empty"))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		label := r.translator.T("shop_item", it.Product.Name, it.Product.Price)
		if it.Product.Kind == model.ProductKindCode {
			label = r.translator.T("shop_item_stock", it.Product.Name, it.Product.Price, it.Unsold)
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "buy:"+it.Product.ID),
		))
	}

	msg := tgbotapi.NewMessage(chatID, r.translator.T("shop_header"))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	_, err = r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleBuyTap(ctx context.Context, chatID int64, productID string) error {
	product, err := r.facade.CatalogUC.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return r.SendMessage(ctx, chatID, r.translator.T("error_product_not_found"))
		}
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	if err := r.pending.SetPending(ctx, chatID, product.ID); err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}

	msg := tgbotapi.NewMessage(chatID, r.translator.T("confirm_buy", product.Name, product.Price))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(r.translator.T("confirm_button_yes"), "confirm"),
			tgbotapi.NewInlineKeyboardButtonData(r.translator.T("confirm_button_no"), "cancel"),
		),
	)
	_, err = r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleConfirmTap(ctx context.Context, chatID, tgUserID int64) error {
	productID, err := r.pending.GetPending(ctx, chatID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.translator.T("error_generic"))
	}
	if productID == "" {
		return r.SendMessage(ctx, chatID, r.translator.T("buy_expired"))
	}

	if r.limiter != nil {
		ok, err := r.limiter.Allow(ctx, red.UserCommandKey(tgUserID, "buy"), r.shopCfg.BuyRateLimit, r.shopCfg.BuyRateWindow)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limiter unavailable, allowing buy")
		} else if !ok {
			return r.SendMessage(ctx, chatID, r.translator.T("error_rate_limited"))
		}
	}

	if err := r.pending.ClearPending(ctx, chatID); err != nil {
		r.log.Warn().Err(err).Msg("clear pending failed")
	}

	rcpt, err := r.facade.PurchaseUC.Buy(ctx, strconv.FormatInt(tgUserID, 10), productID)
	if err != nil {
		return r.SendMessage(ctx, chatID, r.renderRejection(err))
	}

	if err := r.SendMessage(ctx, chatID, r.translator.T("buy_success", rcpt.ProductName, rcpt.Price, rcpt.NewBalance)); err != nil {
		return err
	}
	if rcpt.CodePayload != "" {
		// The payload is delivered exactly once and kept nowhere else.
		return r.SendMessage(ctx, chatID, r.translator.T("buy_code_delivery", rcpt.CodePayload))
	}
	return nil
}

func (r *RealTelegramBotAdapter) renderRejection(err error) string {
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		return r.translator.T("error_product_not_found")
	case errors.Is(err, domain.ErrOutOfStock):
		return r.translator.T("error_out_of_stock")
	case errors.Is(err, domain.ErrInsufficientFunds):
		return r.translator.T("error_insufficient_funds")
	case errors.Is(err, domain.ErrRateLimited):
		return r.translator.T("error_rate_limited")
	}
	return r.translator.T("error_generic")
}
