package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Queries struct {
	db DBTX
}

func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type ChatSession struct {
	ID         string
	Model      string
	WindowSize int32
	ShowCost   bool
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type SessionMessage struct {
	ID        int64
	SessionID string
	Human     string
	Ai        string
	CreatedAt pgtype.Timestamptz
}

const getSessionByID = `
SELECT id, model, window_size, show_cost, created_at, updated_at
FROM chat_sessions
WHERE id = $1`

func (q *Queries) GetSessionByID(ctx context.Context, id string) (ChatSession, error) {
	var s ChatSession
	err := q.db.QueryRow(ctx, getSessionByID, id).Scan(
		&s.ID, &s.Model, &s.WindowSize, &s.ShowCost, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

const createSession = `
INSERT INTO chat_sessions (id, model, window_size, show_cost, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5)
ON CONFLICT (id) DO UPDATE
SET model = EXCLUDED.model, window_size = EXCLUDED.window_size,
    show_cost = EXCLUDED.show_cost, updated_at = EXCLUDED.updated_at`

type CreateSessionParams struct {
	ID         string
	Model      string
	WindowSize int32
	ShowCost   bool
	CreatedAt  pgtype.Timestamptz
}

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) error {
	_, err := q.db.Exec(ctx, createSession, arg.ID, arg.Model, arg.WindowSize, arg.ShowCost, arg.CreatedAt)
	return err
}

const updateSessionSettings = `
UPDATE chat_sessions
SET model = $2, window_size = $3, show_cost = $4, updated_at = $5
WHERE id = $1`

type UpdateSessionSettingsParams struct {
	ID         string
	Model      string
	WindowSize int32
	ShowCost   bool
	UpdatedAt  pgtype.Timestamptz
}

func (q *Queries) UpdateSessionSettings(ctx context.Context, arg UpdateSessionSettingsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, updateSessionSettings, arg.ID, arg.Model, arg.WindowSize, arg.ShowCost, arg.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const addSessionMessage = `
INSERT INTO session_messages (session_id, human, ai, created_at)
VALUES ($1, $2, $3, $4)`

type AddSessionMessageParams struct {
	SessionID string
	Human     string
	Ai        string
	CreatedAt pgtype.Timestamptz
}

func (q *Queries) AddSessionMessage(ctx context.Context, arg AddSessionMessageParams) error {
	_, err := q.db.Exec(ctx, addSessionMessage, arg.SessionID, arg.Human, arg.Ai, arg.CreatedAt)
	return err
}

const getSessionMessages = `
SELECT id, session_id, human, ai, created_at
FROM session_messages
WHERE session_id = $1
ORDER BY id`

func (q *Queries) GetSessionMessages(ctx context.Context, sessionID string) ([]SessionMessage, error) {
	rows, err := q.db.Query(ctx, getSessionMessages, sessionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (SessionMessage, error) {
		var m SessionMessage
		err := row.Scan(&m.ID, &m.SessionID, &m.Human, &m.Ai, &m.CreatedAt)
		return m, err
	})
}

const deleteSession = `DELETE FROM chat_sessions WHERE id = $1`

func (q *Queries) DeleteSession(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteSession, id)
	return err
}

const deleteIdleSessions = `DELETE FROM chat_sessions WHERE updated_at < $1`

func (q *Queries) DeleteIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := q.db.Exec(ctx, deleteIdleSessions, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countSessions = `SELECT count(*) FROM chat_sessions`

func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countSessions).Scan(&n)
	return n, err
}
