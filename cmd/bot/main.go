package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"insurance-bot/internal/ai"
	"insurance-bot/internal/config"
	"insurance-bot/internal/extract"
	"insurance-bot/internal/session"
	"insurance-bot/internal/telegram"
	"insurance-bot/internal/workflow"
)

func main() {
	// Load .env file if one exists; real environments set vars directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore()
	extractor := extract.NewAdapter(extract.NewMindeeClient(cfg.MindeeAPIKey, cfg.MindeeModelID, cfg.HTTPTimeout))
	advisor := ai.NewManager(ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.HTTPTimeout), store, cfg.AIHistoryLimit)

	bot, err := telegram.New(cfg.TelegramToken, cfg.HTTPTimeout)
	if err != nil {
		log.Fatalf("failed to start telegram bot: %v", err)
	}
	if err := bot.RegisterCommands(); err != nil {
		log.Printf("⚠️  %v (continuing without command menu)", err)
	}

	engine := workflow.NewEngine(store, extractor, advisor, bot, cfg.Price)
	dispatcher := workflow.NewDispatcher(ctx, engine)
	defer dispatcher.Close()

	log.Printf("🚗 Car insurance bot ready as @%s (model: %s)", bot.Username(), cfg.GeminiModel)

	if err := bot.Run(ctx, dispatcher); err != nil {
		log.Fatalf("polling loop failed: %v", err)
	}
	log.Println("shutting down, draining pending events")
}
