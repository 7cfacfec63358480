package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/set-night/groqchat/internal/config"
	"github.com/set-night/groqchat/internal/domain"
)

// SessionStore persists chat sessions. Implementations live in the
// repository package.
type SessionStore interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Create(ctx context.Context, s *domain.Session) error
	AppendPair(ctx context.Context, id string, pair domain.MessagePair, settings domain.Settings, at time.Time) error
	UpdateSettings(ctx context.Context, id string, settings domain.Settings, at time.Time) error
	Delete(ctx context.Context, id string) error
	PurgeIdle(ctx context.Context, before time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type SessionService struct {
	store   SessionStore
	catalog *config.Catalog
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex
	active map[string]struct{}
}

func NewSessionService(store SessionStore, catalog *config.Catalog, ttl time.Duration) *SessionService {
	return &SessionService{
		store:   store,
		catalog: catalog,
		ttl:     ttl,
		now:     time.Now,
		active:  make(map[string]struct{}),
	}
}

// FindOrCreate returns the session with id, starting a fresh one when it does
// not exist yet or has been idle for longer than the session TTL.
func (s *SessionService) FindOrCreate(ctx context.Context, id string) (*domain.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err == nil {
		if !sess.IsIdle(s.ttl, s.now()) {
			return sess, nil
		}
		slog.Debug("session expired, starting over", "session_id", id)
		return s.Reset(ctx, id)
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s.create(ctx, id, s.catalog.DefaultSettings())
}

// Reset drops the session history while keeping its settings.
func (s *SessionService) Reset(ctx context.Context, id string) (*domain.Session, error) {
	settings := s.catalog.DefaultSettings()
	if old, err := s.store.Get(ctx, id); err == nil {
		settings = old.Settings
	} else if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("delete session: %w", err)
	}
	return s.create(ctx, id, settings)
}

func (s *SessionService) create(ctx context.Context, id string, settings domain.Settings) (*domain.Session, error) {
	now := s.now()
	sess := &domain.Session{
		ID:        id,
		Settings:  settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Record appends a completed turn and returns the session as stored
// afterwards.
func (s *SessionService) Record(ctx context.Context, sess domain.Session, pair domain.MessagePair, settings domain.Settings) (*domain.Session, error) {
	next := sess.WithTurn(pair, settings, s.now())
	if err := s.store.AppendPair(ctx, sess.ID, pair, settings, next.UpdatedAt); err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	stored, err := s.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}
	return stored, nil
}

func (s *SessionService) UpdateSettings(ctx context.Context, id string, settings domain.Settings) error {
	if err := settings.Validate(s.catalog.IDs()); err != nil {
		return err
	}
	if _, err := s.FindOrCreate(ctx, id); err != nil {
		return err
	}
	return s.store.UpdateSettings(ctx, id, settings, s.now())
}

// TryAcquire marks a request as in flight for the session. The returned
// function releases it.
func (s *SessionService) TryAcquire(id string) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.active[id]; busy {
		return nil, domain.ErrActiveRequest
	}
	s.active[id] = struct{}{}

	return func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
	}, nil
}

// PurgeIdle deletes sessions idle for longer than the TTL.
func (s *SessionService) PurgeIdle(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	return s.store.PurgeIdle(ctx, s.now().Add(-s.ttl))
}

func (s *SessionService) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}

func (s *SessionService) Catalog() *config.Catalog {
	return s.catalog
}
