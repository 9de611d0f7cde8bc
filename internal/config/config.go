package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port string

	TelegramBotToken string
	SolverBaseURL    string
	SolverTimeout    time.Duration
	DatabaseURL      string // optional; empty disables the response cache
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Printf("bad duration in env %s: %q, using %s", k, v, def)
	}
	return def
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),
		SolverBaseURL:    getEnv("SOLVER_BASE_URL", "http://ken6a03.pythonanywhere.com"),
		SolverTimeout:    getDuration("SOLVER_TIMEOUT", 60*time.Second),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
	}
}
