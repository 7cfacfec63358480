package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_MissingAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")

	err := run()

	assert.ErrorContains(t, err, "GROQ_API_KEY")
}

func TestRun_InvalidPurgeScheduleReturnsError(t *testing.T) {
	groq := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer groq.Close()

	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GROQ_BASE_URL", groq.URL)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("MODELS_FILE", "")
	t.Setenv("SESSION_PURGE_SCHEDULE", "every other tuesday")

	err := run()

	assert.ErrorContains(t, err, "start session purger")
}
