package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dance-admin/internal/util"
)

type Config struct {
	APIBaseURL  string
	APIEmail    string
	APIPassword string
	APITimeout  time.Duration

	TelegramToken string
	TelegramDebug bool
	AdminTGIDs    map[int64]bool

	SpreadsheetID            string
	GoogleServiceAccountJSON string

	HTTPAddr       string
	BasePublicURL  string
	ExportSecret   string
	PublicCacheTTL time.Duration

	LogLevel slog.Level
}

func FromEnv() (Config, error) {
	var c Config
	var err error

	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("DANCE_API_BASE_URL")), "/")
	c.APIEmail = strings.TrimSpace(os.Getenv("DANCE_API_EMAIL"))
	c.APIPassword = os.Getenv("DANCE_API_PASSWORD")
	if c.APITimeout, err = durationEnv("DANCE_API_TIMEOUT", 15*time.Second); err != nil {
		return c, err
	}

	c.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	c.TelegramDebug = util.NormalizeBool(os.Getenv("TELEGRAM_DEBUG"))
	c.AdminTGIDs = parseAdminIDs(os.Getenv("ADMIN_TG_IDS"))

	c.SpreadsheetID = strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"))
	c.GoogleServiceAccountJSON = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))

	c.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	c.BasePublicURL = strings.TrimRight(strings.TrimSpace(os.Getenv("BASE_PUBLIC_URL")), "/")

	c.ExportSecret = strings.TrimSpace(os.Getenv("EXPORT_SECRET"))
	if c.ExportSecret == "" {
		c.ExportSecret = "change-me"
	}
	if c.PublicCacheTTL, err = durationEnv("PUBLIC_CACHE_TTL", time.Minute); err != nil {
		return c, err
	}

	if err := c.LogLevel.UnmarshalText([]byte(strings.TrimSpace(os.Getenv("LOG_LEVEL")))); err != nil {
		c.LogLevel = slog.LevelInfo
	}

	if c.APIBaseURL == "" {
		return c, fmt.Errorf("DANCE_API_BASE_URL is empty")
	}
	return c, nil
}

// RequireCredentials is checked by commands that log in to the backend.
func (c Config) RequireCredentials() error {
	if c.APIEmail == "" {
		return fmt.Errorf("DANCE_API_EMAIL is empty")
	}
	if c.APIPassword == "" {
		return fmt.Errorf("DANCE_API_PASSWORD is empty")
	}
	return nil
}

func (c Config) TelegramEnabled() bool { return c.TelegramToken != "" }

func (c Config) SheetsEnabled() bool {
	return c.SpreadsheetID != "" && c.GoogleServiceAccountJSON != ""
}

// AdminChatIDs returns the admin ids in no particular order.
func (c Config) AdminChatIDs() []int64 {
	ids := make([]int64, 0, len(c.AdminTGIDs))
	for id := range c.AdminTGIDs {
		ids = append(ids, id)
	}
	return ids
}

// PublicURL is the base for links handed out to users.
func (c Config) PublicURL() string {
	if c.BasePublicURL != "" {
		return c.BasePublicURL
	}
	return "http://localhost" + c.HTTPAddr
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func parseAdminIDs(raw string) map[int64]bool {
	m := map[int64]bool{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return m
	}
	parts := strings.Split(raw, ",")
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		m[v] = true
	}
	return m
}
