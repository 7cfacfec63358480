package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/set-night/groqchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"unset", map[string]string{}},
		{"empty", map[string]string{"GROQ_API_KEY": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFrom(tt.environ)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "GROQ_API_KEY")
		})
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"GROQ_API_KEY": "gsk_test"})
	require.NoError(t, err)

	assert.Equal(t, "gsk_test", cfg.GroqAPIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.GroqBaseURL)
	assert.Equal(t, ":8501", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.False(t, cfg.UsePostgres())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"GROQ_API_KEY":       "gsk_test",
		"DATABASE_URL":       "postgres://localhost/chat",
		"TELEGRAM_BOT_TOKEN": "123:abc",
		"SESSION_TTL":        "30m",
		"LOG_LEVEL":          "DEBUG",
	})
	require.NoError(t, err)

	assert.True(t, cfg.UsePostgres())
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "DEBUG", cfg.SlogLevel().String())
}

func TestLoadCatalog_Default(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	assert.Equal(t, "llama-3.3-70b-versatile", c.Default().ID)
	assert.Contains(t, c.IDs(), "mixtral-8x7b-32768")
	assert.Contains(t, c.IDs(), "llama2-70b-4096")

	s := c.DefaultSettings()
	assert.Equal(t, domain.DefaultWindow, s.Window)
	assert.NoError(t, s.Validate(c.IDs()))
}

func TestLoadCatalog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models:\n  - id: only-model\n"), 0o600))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"only-model"}, c.IDs())
	assert.Equal(t, "only-model", c.Default().Name)

	m, err := c.Get("only-model")
	require.NoError(t, err)
	assert.True(t, m.IsFree())

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":     "models: []\n",
		"no id":     "models:\n  - name: x\n",
		"duplicate": "models:\n  - id: a\n  - id: a\n",
		"malformed": "models: [\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}
