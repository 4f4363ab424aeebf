package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrSessionNotFound = errors.New("session not found")

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Queries bundles the session queries.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Session is a row of the sessions table. Config, Graph and Tokens hold JSON.
type Session struct {
	SessionID   string
	KeyHash     string
	Config      []byte
	Graph       []byte
	Tokens      []byte
	GeneratedAt pgtype.Timestamptz
	CopiedUntil pgtype.Timestamptz
	LastError   pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const sessionColumns = `session_id::text, key_hash, config, graph, tokens, generated_at, copied_until, last_error, created_at, updated_at`

func scanSession(row pgx.Row) (Session, error) {
	var s Session
	err := row.Scan(
		&s.SessionID,
		&s.KeyHash,
		&s.Config,
		&s.Graph,
		&s.Tokens,
		&s.GeneratedAt,
		&s.CopiedUntil,
		&s.LastError,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return s, ErrSessionNotFound
	}
	return s, err
}

type CreateSessionParams struct {
	SessionID string
	KeyHash   string
	Config    []byte
}

const createSession = `INSERT INTO sessions (session_id, key_hash, config)
VALUES ($1::uuid, $2, $3)
RETURNING ` + sessionColumns

func (q *Queries) CreateSession(ctx context.Context, arg CreateSessionParams) (Session, error) {
	return scanSession(q.db.QueryRow(ctx, createSession, arg.SessionID, arg.KeyHash, arg.Config))
}

const retrieveSession = `SELECT ` + sessionColumns + ` FROM sessions WHERE session_id = $1::uuid`

func (q *Queries) RetrieveSession(ctx context.Context, sessionID string) (Session, error) {
	return scanSession(q.db.QueryRow(ctx, retrieveSession, sessionID))
}

const getKeyBySession = `SELECT key_hash FROM sessions WHERE session_id = $1::uuid`

func (q *Queries) GetKeyBySession(ctx context.Context, sessionID string) (string, error) {
	var keyHash string
	err := q.db.QueryRow(ctx, getKeyBySession, sessionID).Scan(&keyHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrSessionNotFound
	}
	return keyHash, err
}

type UpdateConfigParams struct {
	SessionID string
	Config    []byte
}

const updateConfig = `UPDATE sessions SET config = $2, updated_at = now()
WHERE session_id = $1::uuid
RETURNING ` + sessionColumns

func (q *Queries) UpdateConfig(ctx context.Context, arg UpdateConfigParams) (Session, error) {
	return scanSession(q.db.QueryRow(ctx, updateConfig, arg.SessionID, arg.Config))
}

type SaveResultsParams struct {
	SessionID string
	Config    []byte
	Graph     []byte
	Tokens    []byte
}

// SaveResults replaces the result set of a session and stores the config
// that produced it. It also clears a pending error.
const saveResults = `UPDATE sessions
SET config = $2, graph = $3, tokens = $4, generated_at = now(), last_error = NULL, updated_at = now()
WHERE session_id = $1::uuid
RETURNING ` + sessionColumns

func (q *Queries) SaveResults(ctx context.Context, arg SaveResultsParams) (Session, error) {
	return scanSession(q.db.QueryRow(ctx, saveResults, arg.SessionID, arg.Config, arg.Graph, arg.Tokens))
}

type ImportResultsParams struct {
	SessionID string
	Graph     []byte
}

const importResults = `UPDATE sessions
SET graph = $2, tokens = '[]'::jsonb, generated_at = now(), updated_at = now()
WHERE session_id = $1::uuid
RETURNING ` + sessionColumns

func (q *Queries) ImportResults(ctx context.Context, arg ImportResultsParams) (Session, error) {
	return scanSession(q.db.QueryRow(ctx, importResults, arg.SessionID, arg.Graph))
}

const clearResults = `UPDATE sessions
SET graph = '[]'::jsonb, tokens = '[]'::jsonb, generated_at = NULL, copied_until = NULL, updated_at = now()
WHERE session_id = $1::uuid`

func (q *Queries) ClearResults(ctx context.Context, sessionID string) error {
	tag, err := q.db.Exec(ctx, clearResults, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type SetErrorParams struct {
	SessionID string
	LastError pgtype.Text
}

const setError = `UPDATE sessions SET last_error = $2, updated_at = now() WHERE session_id = $1::uuid`

// SetError stores (or, with an invalid LastError, dismisses) the last
// inference error of a session.
func (q *Queries) SetError(ctx context.Context, arg SetErrorParams) error {
	tag, err := q.db.Exec(ctx, setError, arg.SessionID, arg.LastError)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type SetCopiedUntilParams struct {
	SessionID   string
	CopiedUntil time.Time
}

const setCopiedUntil = `UPDATE sessions SET copied_until = $2 WHERE session_id = $1::uuid`

func (q *Queries) SetCopiedUntil(ctx context.Context, arg SetCopiedUntilParams) error {
	tag, err := q.db.Exec(ctx, setCopiedUntil, arg.SessionID, arg.CopiedUntil)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

const deleteSession = `DELETE FROM sessions WHERE session_id = $1::uuid`

func (q *Queries) DeleteSession(ctx context.Context, sessionID string) error {
	tag, err := q.db.Exec(ctx, deleteSession, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

const deleteAllRecords = `DELETE FROM sessions`

func (q *Queries) DeleteAllRecords(ctx context.Context) error {
	_, err := q.db.Exec(ctx, deleteAllRecords)
	return err
}

const countSessions = `SELECT count(*) FROM sessions`

func (q *Queries) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countSessions).Scan(&n)
	return n, err
}
