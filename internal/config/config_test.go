package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobseek-id/auto-emailer/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/emails")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "job_seek", cfg.Channel)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "starttls", cfg.SMTPEncryption)
	assert.Equal(t, 30*time.Second, cfg.SMTPTimeout)
	assert.Equal(t, time.Hour, cfg.StatsInterval)
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv makes the variable truly absent.
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("REDIS_URL")

	_, err := config.Load()
	require.Error(t, err)
}

func TestConfig_Paths(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/emails")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DATA_DIR", "/srv/emailer")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/emailer/cv", cfg.CVDir())
	assert.Equal(t, "/srv/emailer/template", cfg.TemplateDir())
}
