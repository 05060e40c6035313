// File: internal/application/bot_facade.go
package application

import (
	"telegram-code-shop/internal/usecase"
)

// BotFacade bundles the use cases the bot layer needs, so the Telegram
// adapter takes one dependency instead of four.
type BotFacade struct {
	CatalogUC   *usecase.CatalogUseCase
	PurchaseUC  *usecase.PurchaseUseCase
	ProvisionUC *usecase.ProvisionUseCase
}

func NewBotFacade(catalog *usecase.CatalogUseCase, purchase *usecase.PurchaseUseCase, provision *usecase.ProvisionUseCase) *BotFacade {
	return &BotFacade{
		CatalogUC:   catalog,
		PurchaseUC:  purchase,
		ProvisionUC: provision,
	}
}
