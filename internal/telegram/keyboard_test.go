package telegram

import (
	"testing"

	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsKeyboard(t *testing.T) {
	catalog, err := config.ParseCatalog([]byte(`
models:
  - id: a
    name: Model A
  - id: b
    name: Model B
`))
	require.NoError(t, err)

	kb := SettingsKeyboard(catalog, domain.Settings{Model: "b", Window: 7, ShowCost: true})
	rows := kb.InlineKeyboard

	// Two model rows, two rows of window sizes, the cost toggle.
	require.Len(t, rows, 5)
	assert.Equal(t, "Model A", rows[0][0].Text)
	assert.Equal(t, "model:a", rows[0][0].CallbackData)
	assert.Equal(t, "✅ Model B", rows[1][0].Text)

	require.Len(t, rows[2], 5)
	require.Len(t, rows[3], 5)
	assert.Equal(t, "window:1", rows[2][0].CallbackData)
	assert.Equal(t, "[7]", rows[3][1].Text)
	assert.Equal(t, "window:10", rows[3][4].CallbackData)

	assert.Equal(t, "💰 Show cost: ✅ On", rows[4][0].Text)
	assert.Equal(t, "show_cost", rows[4][0].CallbackData)
}

func TestApplyCallback(t *testing.T) {
	base := domain.Settings{Model: "a", Window: 5}

	got, err := ApplyCallback(base, "model:b")
	require.NoError(t, err)
	assert.Equal(t, domain.Settings{Model: "b", Window: 5}, got)

	got, err = ApplyCallback(base, "window:3")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Window)

	got, err = ApplyCallback(base, "show_cost")
	require.NoError(t, err)
	assert.True(t, got.ShowCost)

	_, err = ApplyCallback(base, "window:x")
	assert.ErrorIs(t, err, domain.ErrWindowOutOfRange)

	_, err = ApplyCallback(base, "something")
	assert.Error(t, err)
}
