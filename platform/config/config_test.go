package config

import (
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/artisan")
	t.Setenv("JWT_ACCESS_SECRET", "secret")
	t.Setenv("CORS_ALLOW_CREDENTIALS", "false")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_HOST", "")
	t.Setenv("APP_TIMEZONE", "Europe/Paris")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.EmailEnabled {
		t.Fatalf("expected email to be disabled without SMTP_HOST")
	}
	if cfg.GetQuoteExpirationCron() != "5 0 * * *" {
		t.Fatalf("unexpected cron spec %q", cfg.GetQuoteExpirationCron())
	}
	if cfg.GetDraftRetention() != 90*24*time.Hour {
		t.Fatalf("unexpected draft retention %s", cfg.GetDraftRetention())
	}
	if cfg.GetAccessLogRetention() != 365*24*time.Hour {
		t.Fatalf("unexpected access log retention %s", cfg.GetAccessLogRetention())
	}
	if cfg.GetLocation().String() != "Europe/Paris" {
		t.Fatalf("unexpected location %s", cfg.GetLocation())
	}
	if cfg.IsFollowUpSchedulerEnabled() {
		t.Fatalf("expected follow-up scheduler to be disabled without URL")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid timezone")
	}
}

func TestLoadRequiresFromAddressWhenSMTPConfigured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("EMAIL_ENABLED", "true")
	t.Setenv("EMAIL_FROM_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when EMAIL_FROM_ADDRESS is missing")
	}
}

func TestLoadRejectsNegativeAccessLogRetention(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("QUOTE_ACCESS_LOG_RETENTION_DAYS", "-1")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative access log retention")
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" a, ,b ,c")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("unexpected split result: %v", got)
	}
}
