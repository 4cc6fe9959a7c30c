package db

import (
	"context"
	"database/sql"
)

type Queries struct {
	db *sql.DB
}

func New(conn *sql.DB) *Queries {
	return &Queries{db: conn}
}

type Session struct {
	ID        string
	Channel   string
	CreatedAt string
}

type Turn struct {
	ID           int64
	SessionID    string
	UserMessage  string
	ResponseJson string
	Model        sql.NullString
	CreatedAt    string
}

type UpsertSessionParams struct {
	ID      string
	Channel string
}

func (q *Queries) UpsertSession(ctx context.Context, arg UpsertSessionParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO sessions (id, channel) VALUES (?, ?)
		 ON CONFLICT (id) DO NOTHING`,
		arg.ID, arg.Channel)
	return err
}

func (q *Queries) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := q.db.QueryRowContext(ctx,
		`SELECT id, channel, created_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.Channel, &s.CreatedAt)
	return s, err
}

func (q *Queries) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, channel, created_at FROM sessions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.Channel, &s.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

type InsertTurnParams struct {
	SessionID    string
	UserMessage  string
	ResponseJson string
	Model        sql.NullString
}

func (q *Queries) InsertTurn(ctx context.Context, arg InsertTurnParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO turns (session_id, user_message, response_json, model)
		 VALUES (?, ?, ?, ?)`,
		arg.SessionID, arg.UserMessage, arg.ResponseJson, arg.Model)
	return err
}

func (q *Queries) GetTurnsBySession(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, session_id, user_message, response_json, model, created_at
		 FROM turns WHERE session_id = ? ORDER BY id`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.UserMessage, &t.ResponseJson, &t.Model, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}
