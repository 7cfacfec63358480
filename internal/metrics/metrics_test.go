package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordTurn(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordTurn("llama", "success", 2*time.Second, domain.Usage{
		PromptTokens:     100,
		CompletionTokens: 20,
		Cost:             decimal.RequireFromString("0.25"),
	})
	c.RecordTurn("llama", "rate_limited", 100*time.Millisecond, domain.Usage{})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.turns.WithLabelValues("llama", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.turns.WithLabelValues("llama", "rate_limited")))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.tokens.WithLabelValues("llama", "prompt")))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.tokens.WithLabelValues("llama", "completion")))
	assert.Equal(t, 0.25, testutil.ToFloat64(c.cost.WithLabelValues("llama")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.inferenceLatency))
}

func TestCollector_SessionsAndHTTP(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.SetActiveSessions(7)
	c.RecordHTTP("POST", "/chat", 200, 30*time.Millisecond)

	assert.Equal(t, 7.0, testutil.ToFloat64(c.sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/chat", "200")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(nil)
	c.SetActiveSessions(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "groqchat_sessions_active 3")
	assert.Contains(t, string(body), "go_goroutines")
}
