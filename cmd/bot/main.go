package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"snapmath/internal/config"
	"snapmath/internal/solver"
	"snapmath/internal/store"
	"snapmath/internal/telegram"
	"snapmath/internal/workflow"
)

func main() {
	cfg := config.Load()

	// --- optional Postgres response cache ---
	var cache *store.Cache
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("sql.Open: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(1 * time.Hour)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := db.PingContext(ctx); err != nil {
			log.Fatalf("db.Ping: %v", err)
		}
		cancel()
		log.Printf("db connected, response cache enabled")
		cache = store.New(db)
	} else {
		log.Printf("DATABASE_URL not set, response cache disabled")
	}

	// --- solver client + orchestrator ---
	client := solver.New(cfg.SolverBaseURL)
	client.Timeout = cfg.SolverTimeout
	orc := workflow.NewOrchestrator(client, cache)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = false
	log.Printf("authorized as @%s", bot.Self.UserName)

	router := &telegram.Router{Bot: bot, Orc: orc}

	// healthz for the hosting platform
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := ":" + cfg.Port
		log.Printf("healthz listening on %s", addr)
		log.Fatal(http.ListenAndServe(addr, mux))
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for upd := range updates {
		go router.HandleUpdate(context.Background(), upd)
	}
}
