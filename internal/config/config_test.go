package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	// Ensure a clean environment for the keys we read.
	for _, key := range []string{
		"TELEGRAM_TOKEN", "ADMIN_ID", "SQLITE_DB_PATH", "PROCESS_DELAY",
		"SCAN_INTERVAL", "REPORT_CRON", "KASSA_CHATS_FILE", "AMQP_URL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.ProcessDelay != 5*time.Minute {
		t.Errorf("ProcessDelay = %v, want 5m", cfg.ProcessDelay)
	}
	if cfg.ScanInterval != 30*time.Second {
		t.Errorf("ScanInterval = %v, want 30s", cfg.ScanInterval)
	}
	if cfg.ReportCron != "5 22 * * *" {
		t.Errorf("ReportCron = %q", cfg.ReportCron)
	}
	if cfg.TriggerWarnCount != 100 {
		t.Errorf("TriggerWarnCount = %d, want 100", cfg.TriggerWarnCount)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "test-token")
	t.Setenv("ADMIN_ID", "42")
	t.Setenv("PROCESS_DELAY", "2m")
	t.Setenv("SCAN_INTERVAL", "10s")

	cfg := Load()
	if cfg.TelegramToken != "test-token" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
	if cfg.AdminID != 42 {
		t.Errorf("AdminID = %d, want 42", cfg.AdminID)
	}
	if cfg.ProcessDelay != 2*time.Minute {
		t.Errorf("ProcessDelay = %v, want 2m", cfg.ProcessDelay)
	}
	if cfg.ScanInterval != 10*time.Second {
		t.Errorf("ScanInterval = %v, want 10s", cfg.ScanInterval)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			TelegramToken:    "t",
			AdminID:          1,
			SQLiteDBPath:     "./data/test.db",
			ProcessDelay:     5 * time.Minute,
			ScanInterval:     30 * time.Second,
			TriggerWarnCount: 100,
			ReportCron:       "5 22 * * *",
			Timezone:         "Europe/Vienna",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing token", func(c *Config) { c.TelegramToken = "" }, "TELEGRAM_TOKEN"},
		{"zero admin", func(c *Config) { c.AdminID = 0 }, "ADMIN_ID"},
		{"short delay", func(c *Config) { c.ProcessDelay = 0 }, "process delay"},
		{"long interval", func(c *Config) { c.ScanInterval = 2 * time.Hour }, "scan interval"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://x" }, "AMQP URL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDefaultChats(t *testing.T) {
	chats := DefaultChats()
	if len(chats) != 11 {
		t.Fatalf("len(DefaultChats) = %d, want 11", len(chats))
	}
	c, ok := chats[-1002079167705]
	if !ok {
		t.Fatal("bakery chat missing from defaults")
	}
	if c.ThreadID != 48 {
		t.Errorf("bakery thread = %d, want 48", c.ThreadID)
	}
}

func TestLoadChatsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chats.json")
	content := `[{"chat_id": -100, "title": "Fixture", "thread_id": 7}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	chats, err := LoadChats(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 {
		t.Fatalf("len = %d, want 1", len(chats))
	}
	if chats[-100].ThreadID != 7 {
		t.Errorf("thread = %d, want 7", chats[-100].ThreadID)
	}
}

func TestLoadChatsRejectsBadFile(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChats(empty); err == nil {
		t.Error("expected error for empty chat list")
	}

	zero := filepath.Join(dir, "zero.json")
	if err := os.WriteFile(zero, []byte(`[{"title": "x", "thread_id": 1}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadChats(zero); err == nil {
		t.Error("expected error for zero chat id")
	}

	if _, err := LoadChats(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadTriggers(t *testing.T) {
	if triggers, err := LoadTriggers(""); err != nil || triggers != nil {
		t.Fatalf("empty path should yield nil table, got %v, %v", triggers, err)
	}

	path := filepath.Join(t.TempDir(), "triggers.json")
	content := `{"+": 256, "габ": 289, "+ тест": 100}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	triggers, err := LoadTriggers(path)
	if err != nil {
		t.Fatal(err)
	}
	if triggers["+ тест"] != 100 {
		t.Errorf("custom trigger = %d, want 100", triggers["+ тест"])
	}
}
