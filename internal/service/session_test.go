package service

import (
	"context"
	"testing"
	"time"

	"github.com/set-night/groqchat/internal/domain"
	"github.com/set-night/groqchat/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_FindOrCreateDefaults(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore(), testCatalog(t), time.Hour)

	sess, err := svc.FindOrCreate(context.Background(), "s1")
	require.NoError(t, err)

	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, domain.Settings{Model: "paid-model", Window: domain.DefaultWindow}, sess.Settings)
	assert.Zero(t, sess.History.Len())
}

func TestSessionService_ExpiredSessionStartsOver(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, testCatalog(t), time.Hour)
	ctx := context.Background()
	now := time.Now()
	svc.now = func() time.Time { return now }

	sess, err := svc.FindOrCreate(ctx, "s1")
	require.NoError(t, err)
	_, err = svc.Record(ctx, *sess, domain.MessagePair{Human: "h", AI: "a"}, domain.Settings{Model: "free-model", Window: 2})
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Hour) }
	sess, err = svc.FindOrCreate(ctx, "s1")
	require.NoError(t, err)

	assert.Zero(t, sess.History.Len())
	assert.Equal(t, domain.Settings{Model: "free-model", Window: 2}, sess.Settings)
}

func TestSessionService_UpdateSettings(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore(), testCatalog(t), time.Hour)
	ctx := context.Background()

	err := svc.UpdateSettings(ctx, "s1", domain.Settings{Model: "free-model", Window: 0})
	assert.ErrorIs(t, err, domain.ErrWindowOutOfRange)

	want := domain.Settings{Model: "free-model", Window: 7, ShowCost: true}
	require.NoError(t, svc.UpdateSettings(ctx, "s1", want))

	sess, err := svc.FindOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, sess.Settings)
}

func TestSessionService_TryAcquire(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore(), testCatalog(t), time.Hour)

	release, err := svc.TryAcquire("s1")
	require.NoError(t, err)

	_, err = svc.TryAcquire("s1")
	assert.ErrorIs(t, err, domain.ErrActiveRequest)

	other, err := svc.TryAcquire("s2")
	require.NoError(t, err)
	other()

	release()
	again, err := svc.TryAcquire("s1")
	require.NoError(t, err)
	again()
}

type gaugeFunc func(int64)

func (f gaugeFunc) SetActiveSessions(n int64) { f(n) }

func TestPurger_RunOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSessionService(store, testCatalog(t), time.Hour)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Create(ctx, &domain.Session{ID: "old", UpdatedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, store.Create(ctx, &domain.Session{ID: "new", UpdatedAt: now}))

	var live int64 = -1
	p := NewPurger(svc, "@every 1h", gaugeFunc(func(n int64) { live = n }))
	p.RunOnce(ctx)

	assert.EqualValues(t, 1, live)
	_, err := store.Get(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPurger_StartRejectsBadSchedule(t *testing.T) {
	svc := NewSessionService(repository.NewMemoryStore(), testCatalog(t), time.Hour)

	err := NewPurger(svc, "not a schedule", nil).Start(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	p := NewPurger(svc, "@every 1h", nil)
	require.NoError(t, p.Start(ctx))
	cancel()
	p.Stop()
}
