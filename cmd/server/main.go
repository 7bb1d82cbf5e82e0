package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbuddy/internal/advisor"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/mail"
	"budgetbuddy/internal/server"
	"budgetbuddy/internal/storage"
	"budgetbuddy/internal/storage/memory"
	"budgetbuddy/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	var store storage.Store
	if cfg.UseMemoryStore {
		log.Println("using in-memory store; data will not survive restarts")
		store = memory.New()
	} else {
		pg, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = &mail.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	} else {
		log.Println("SMTP not configured; reset links will be logged instead of mailed")
	}

	var gen advisor.Generator
	if cfg.GeminiAPIKey != "" {
		g, err := advisor.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("advisor: gemini unavailable, falling back to rules: %v", err)
		} else {
			gen = g
		}
	} else {
		log.Println("GEMINI_API_KEY not set; recommendations use deterministic rules")
	}

	srv := server.New(cfg, store, mailer, gen)

	go func() {
		log.Printf("budgetbuddy backend listening on %s", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
