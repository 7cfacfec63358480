package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/set-night/groqchat/internal/domain"
)

// PostgresStore keeps sessions in PostgreSQL so they survive restarts and can
// be shared between replicas.
type PostgresStore struct {
	db      *pgxpool.Pool
	queries *Queries
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db, queries: NewQueries(db)}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	row, err := s.queries.GetSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	msgs, err := s.queries.GetSessionMessages(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	pairs := make([]domain.MessagePair, len(msgs))
	for i, m := range msgs {
		pairs[i] = domain.MessagePair{Human: m.Human, AI: m.Ai}
	}

	sess := rowToSession(row)
	sess.History = domain.NewHistory(pairs...)
	return sess, nil
}

func (s *PostgresStore) Create(ctx context.Context, sess *domain.Session) error {
	return s.queries.CreateSession(ctx, CreateSessionParams{
		ID:         sess.ID,
		Model:      sess.Settings.Model,
		WindowSize: int32(sess.Settings.Window),
		ShowCost:   sess.Settings.ShowCost,
		CreatedAt:  timeToPgTimestamptz(sess.CreatedAt),
	})
}

func (s *PostgresStore) AppendPair(ctx context.Context, id string, pair domain.MessagePair, settings domain.Settings, at time.Time) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	qtx := s.queries.WithTx(tx)
	n, err := qtx.UpdateSessionSettings(ctx, UpdateSessionSettingsParams{
		ID:         id,
		Model:      settings.Model,
		WindowSize: int32(settings.Window),
		ShowCost:   settings.ShowCost,
		UpdatedAt:  timeToPgTimestamptz(at),
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}

	if err := qtx.AddSessionMessage(ctx, AddSessionMessageParams{
		SessionID: id,
		Human:     pair.Human,
		Ai:        pair.AI,
		CreatedAt: timeToPgTimestamptz(at),
	}); err != nil {
		return fmt.Errorf("add message: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) UpdateSettings(ctx context.Context, id string, settings domain.Settings, at time.Time) error {
	n, err := s.queries.UpdateSessionSettings(ctx, UpdateSessionSettingsParams{
		ID:         id,
		Model:      settings.Model,
		WindowSize: int32(settings.Window),
		ShowCost:   settings.ShowCost,
		UpdatedAt:  timeToPgTimestamptz(at),
	})
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session; its messages go with it via ON DELETE CASCADE.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.queries.DeleteSession(ctx, id)
}

func (s *PostgresStore) PurgeIdle(ctx context.Context, before time.Time) (int64, error) {
	return s.queries.DeleteIdleSessions(ctx, before)
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	return s.queries.CountSessions(ctx)
}

func rowToSession(row ChatSession) *domain.Session {
	return &domain.Session{
		ID: row.ID,
		Settings: domain.Settings{
			Model:    row.Model,
			Window:   int(row.WindowSize),
			ShowCost: row.ShowCost,
		},
		CreatedAt: pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt: pgTimestamptzToTime(row.UpdatedAt),
	}
}

// pgTimestamptzToTime converts pgtype.Timestamptz to time.Time.
func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// timeToPgTimestamptz converts time.Time to pgtype.Timestamptz.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}
