// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-code-shop/internal/application"
	"telegram-code-shop/internal/config"
	pg "telegram-code-shop/internal/infra/db/postgres"
	"telegram-code-shop/internal/infra/i18n"
	"telegram-code-shop/internal/infra/logging"
	"telegram-code-shop/internal/infra/metrics"
	red "telegram-code-shop/internal/infra/redis"
	"telegram-code-shop/internal/infra/sched"
	tele "telegram-code-shop/internal/infra/telegram"
	"telegram-code-shop/internal/infra/web"
	"telegram-code-shop/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, no sampling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	go pg.ReportPoolStats(ctx, pool, 30*time.Second)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)
	pendingRepo := red.NewPendingStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	productRepo := pg.NewProductRepo(pool)
	codeRepo := pg.NewCodeRepo(pool)
	balanceRepo := pg.NewBalanceRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	txm := pg.NewTxManager(pool)

	// ---- Translator ----
	translator, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		log.Fatalf("i18n: %v", err)
	}

	// ---- Use cases ----
	catalogUC := usecase.NewCatalogUseCase(productRepo, codeRepo)
	purchaseUC := usecase.NewPurchaseUseCase(productRepo, codeRepo, balanceRepo, purchaseRepo, txm, logger)
	statsUC := usecase.NewStatsUseCase(productRepo, codeRepo, purchaseRepo)

	// The bot is also the top-up notifier; build the provisioning UC
	// after the adapter exists.
	facade := application.NewBotFacade(catalogUC, purchaseUC, nil)

	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, &cfg.Shop, facade, rateLimiter, pendingRepo, translator, logger)
	if err != nil {
		log.Fatalf("telegram: %v", err)
	}
	provisionUC := usecase.NewProvisionUseCase(productRepo, codeRepo, balanceRepo, botAdapter, logger)
	facade.ProvisionUC = provisionUC

	if strings.ToLower(cfg.Bot.Mode) != "polling" && cfg.Bot.Mode != "" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil {
			logger.Info().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin HTTP API ----
	adminSrv := web.NewServer(catalogUC, provisionUC, statsUC, cfg.Admin.APIKey, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Admin.Port),
		Handler: adminSrv.Router(),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin api listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin api server error")
		}
	}()

	// ---- Stock watcher ----
	watcher := sched.NewStockWatcher(
		cfg.Shop.StockCheckInterval,
		cfg.Shop.LowStockThreshold,
		catalogUC,
		botAdapter,
		cfg.Bot.AdminIDs,
		logger,
	)
	go func() { _ = watcher.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
