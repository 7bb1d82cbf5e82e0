package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port           string
	DatabaseURL    string
	UseMemoryStore bool

	JWTSecret string
	JWTIssuer string
	JWTTTL    time.Duration

	CORSOrigins []string

	BcryptCost  int
	HashWorkers int

	GeminiAPIKey   string
	GeminiModel    string
	AdvisorTimeout time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	ResetBaseURL string
}

// Load reads configuration from the environment and performs minimal
// validation. There is deliberately no default signing secret: the process
// refuses to start without JWT_SECRET rather than run with a guessable one.
func Load() (Config, error) {
	cfg := Config{
		Port:           fallback(os.Getenv("PORT"), "8080"),
		DatabaseURL:    strings.TrimSpace(os.Getenv("DATABASE_URL")),
		UseMemoryStore: os.Getenv("MEMORY_STORE") == "true",
		JWTSecret:      strings.TrimSpace(os.Getenv("JWT_SECRET")),
		JWTIssuer:      fallback(os.Getenv("JWT_ISSUER"), "budgetbuddy"),
		CORSOrigins:    parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		BcryptCost:     intFallback(os.Getenv("BCRYPT_COST"), bcrypt.DefaultCost),
		HashWorkers:    intFallback(os.Getenv("HASH_WORKERS"), 4),
		GeminiAPIKey:   strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    fallback(os.Getenv("GEMINI_MODEL"), "gemini-1.5-flash"),
		SMTPHost:       strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:       fallback(os.Getenv("SMTP_PORT"), "587"),
		SMTPUsername:   strings.TrimSpace(os.Getenv("SMTP_USERNAME")),
		SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
		ResetBaseURL:   fallback(os.Getenv("RESET_BASE_URL"), "http://localhost:3000/reset-password"),
	}
	cfg.MailFrom = fallback(os.Getenv("MAIL_FROM"), cfg.SMTPUsername)

	cfg.JWTTTL = time.Duration(intFallback(os.Getenv("JWT_TTL_MINUTES"), 60)) * time.Minute
	cfg.AdvisorTimeout = time.Duration(intFallback(os.Getenv("ADVISOR_TIMEOUT_SECONDS"), 10)) * time.Second

	if cfg.DatabaseURL == "" && !cfg.UseMemoryStore {
		return Config{}, errors.New("DATABASE_URL is required (or set MEMORY_STORE=true)")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func intFallback(value string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
		return n
	}
	return def
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
