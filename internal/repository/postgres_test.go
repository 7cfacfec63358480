package repository

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	groqchat "github.com/set-night/groqchat"
	"github.com/set-night/groqchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestPostgresStore connects to TEST_DATABASE_URL, skipping when unset.
func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	migrations, err := fs.Sub(groqchat.MigrationsFS, "migrations")
	require.NoError(t, err)
	pool, err := Open(context.Background(), url, migrations)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewPostgresStore(pool)
}

func TestPostgresStore_Lifecycle(t *testing.T) {
	store := newTestPostgresStore(t)
	ctx := context.Background()
	id := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Create(ctx, &domain.Session{
		ID:        id,
		Settings:  domain.Settings{Model: "m", Window: 5},
		CreatedAt: now,
		UpdatedAt: now,
	}))
	t.Cleanup(func() { _ = store.Delete(context.Background(), id) })

	settings := domain.Settings{Model: "m", Window: 2, ShowCost: true}
	for _, p := range []domain.MessagePair{{Human: "h1", AI: "a1"}, {Human: "h2", AI: "a2"}, {Human: "h3", AI: "a3"}} {
		require.NoError(t, store.AppendPair(ctx, id, p, settings, now))
	}

	sess, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, settings, sess.Settings)
	assert.Equal(t, []domain.MessagePair{{Human: "h2", AI: "a2"}, {Human: "h3", AI: "a3"}}, sess.History.Last(2))

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPostgresStore_AppendUnknownSession(t *testing.T) {
	store := newTestPostgresStore(t)
	err := store.AppendPair(context.Background(), uuid.NewString(), domain.MessagePair{Human: "h", AI: "a"}, domain.Settings{Model: "m", Window: 1}, time.Now())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
