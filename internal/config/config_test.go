package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("REMINDER_TIME", "")
	t.Setenv("REPORT_INTERVAL_HOURS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "pflanzen_manager.db", cfg.DatabaseURL)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, "09:00", cfg.ReminderTime)
	assert.Zero(t, cfg.ReportInterval)
}

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "  ")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReportInterval(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, cfg.ReportInterval)

	t.Setenv("REPORT_INTERVAL_HOURS", "kaputt")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.ReportInterval)
}
