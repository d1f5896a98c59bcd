package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Token            string
	GuildID          string
	DatabaseURL      string
	MigrationsPath   string
	DashboardAddr    string
	DashboardBaseURL string
	DefaultLocale    string

	// Tunables, overridable per deployment.
	PartyMinSize      int           // below this, a party disbands
	SignupOffset      time.Duration // deadline = event time - offset
	ReminderOffset    time.Duration // reminder fires within this window before start
	CloseGrace        time.Duration // events auto-close this long after start
	RefreshDelay      time.Duration // embed refresh debounce
	DispatchSendDelay time.Duration // pause between assignment DMs
	EditTokenTTL      time.Duration // dashboard edit-link lifetime
}

// Load reads configuration from the environment (and .env when
// present) and validates it.
func Load() (*Config, error) {
	// .env is optional when variables come from the environment
	// (Docker, CI, etc.).
	_ = godotenv.Load()

	cfg := &Config{
		Token:             os.Getenv("TOKEN"),
		GuildID:           os.Getenv("GUILD_ID"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MigrationsPath:    envString("MIGRATIONS_PATH", "internal/infrastructure/database/migrations"),
		DashboardAddr:     envString("DASHBOARD_ADDR", ":8090"),
		DashboardBaseURL:  envString("DASHBOARD_BASE_URL", "http://localhost:8090"),
		DefaultLocale:     envString("DEFAULT_LOCALE", "en"),
		PartyMinSize:      envInt("PARTY_MIN_SIZE", 3),
		SignupOffset:      envDuration("SIGNUP_DEADLINE_OFFSET", 20*time.Minute),
		ReminderOffset:    envDuration("REMINDER_OFFSET", 30*time.Minute),
		CloseGrace:        envDuration("EVENT_CLOSE_GRACE", 2*time.Hour),
		RefreshDelay:      envDuration("REFRESH_DELAY", 2*time.Second),
		DispatchSendDelay: envDuration("DISPATCH_SEND_DELAY", time.Second),
		EditTokenTTL:      envDuration("EDIT_TOKEN_TTL", time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("config: TOKEN is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		// Useful local default when DATABASE_URL is not provided.
		c.DatabaseURL = "postgres://localhost:5432/raidbot?sslmode=disable"
	}
	parsed, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): %w", c.DatabaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: invalid DATABASE_URL (%q): missing scheme or host", c.DatabaseURL)
	}

	if c.PartyMinSize < 1 {
		return fmt.Errorf("config: PARTY_MIN_SIZE must be at least 1, got %d", c.PartyMinSize)
	}
	return nil
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
