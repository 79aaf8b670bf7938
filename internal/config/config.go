// Package config loads the process configuration from the environment and
// the static chat allow-list and trigger vocabulary from built-in defaults or
// operator-supplied JSON files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	TelegramToken string
	AdminID       int64

	// Database
	SQLiteDBPath string

	// Processing
	ProcessDelay     time.Duration
	ScanInterval     time.Duration
	TriggerWarnCount int

	// Daily report
	ReportCron string
	Timezone   string

	// Static tables (optional JSON overrides of the built-in defaults)
	ChatsFile    string
	TriggersFile string

	// AMQP event fan-out (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets activity-log mirror (optional)
	GoogleSpreadsheetID string
	GoogleSheetName     string
}

func Load() *Config {
	return &Config{
		TelegramToken: getEnv("TELEGRAM_TOKEN", ""),
		AdminID:       getEnvInt64("ADMIN_ID", 542345855),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/kassa.db"),

		ProcessDelay:     getEnvDuration("PROCESS_DELAY", 5*time.Minute),
		ScanInterval:     getEnvDuration("SCAN_INTERVAL", 30*time.Second),
		TriggerWarnCount: getEnvInt("TRIGGER_WARN_COUNT", 100),

		ReportCron: getEnv("REPORT_CRON", "5 22 * * *"),
		Timezone:   getEnv("TZ", "Europe/Vienna"),

		ChatsFile:    getEnv("KASSA_CHATS_FILE", ""),
		TriggersFile: getEnv("KASSA_TRIGGERS_FILE", ""),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "kassa"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),
	}
}

// Validate checks the configuration and returns all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if c.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_TOKEN is required")
	}
	if c.AdminID == 0 {
		errs = append(errs, "ADMIN_ID cannot be zero")
	}
	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLite database path cannot be empty")
	}
	if c.ProcessDelay < time.Second {
		errs = append(errs, fmt.Sprintf("invalid process delay %v: must be at least 1 second", c.ProcessDelay))
	}
	if c.ScanInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid scan interval %v: must be at least 1 second", c.ScanInterval))
	} else if c.ScanInterval > time.Hour {
		errs = append(errs, fmt.Sprintf("invalid scan interval %v: must be at most 1 hour", c.ScanInterval))
	}
	if c.TriggerWarnCount < 1 {
		errs = append(errs, fmt.Sprintf("invalid trigger warn count %d: must be at least 1", c.TriggerWarnCount))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone %q: %v", c.Timezone, err))
	}
	if c.AMQPURL != "" {
		if !strings.HasPrefix(c.AMQPURL, "amqp://") && !strings.HasPrefix(c.AMQPURL, "amqps://") {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL %q: scheme must be amqp or amqps", c.AMQPURL))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleSheetName == "" {
		errs = append(errs, "Google sheet name cannot be empty when a spreadsheet ID is provided")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
