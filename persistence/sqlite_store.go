package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteExchangeStore keeps exchanges in a SQLite database so token usage
// can be queried across sessions.
type SQLiteExchangeStore struct {
	db *sql.DB
}

// NewSQLiteExchangeStore opens/creates the database at dbPath.
func NewSQLiteExchangeStore(dbPath string) (*SQLiteExchangeStore, error) {
	if dbPath == "" {
		return nil, errors.New("database path required")
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	store := &SQLiteExchangeStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteExchangeStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		model TEXT,
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_exchanges_session ON exchanges(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append inserts one exchange.
func (s *SQLiteExchangeStore) Append(ctx context.Context, exchange Exchange) error {
	if exchange.SessionID == "" {
		return errors.New("session id required")
	}
	ts := exchange.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exchanges (session_id, model, prompt, response, input_tokens, output_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exchange.SessionID, exchange.Model, exchange.Prompt, exchange.Response,
		exchange.InputTokens, exchange.OutputTokens, ts)
	return err
}

// History returns a session's exchanges oldest first.
func (s *SQLiteExchangeStore) History(ctx context.Context, sessionID string) ([]Exchange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, model, prompt, response, input_tokens, output_tokens, created_at
		FROM exchanges WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Exchange
	for rows.Next() {
		var ex Exchange
		var model sql.NullString
		if err := rows.Scan(&ex.SessionID, &model, &ex.Prompt, &ex.Response, &ex.InputTokens, &ex.OutputTokens, &ex.Timestamp); err != nil {
			return nil, err
		}
		ex.Model = model.String
		out = append(out, ex)
	}
	return out, rows.Err()
}

// Usage sums the token counts recorded for a session.
func (s *SQLiteExchangeStore) Usage(ctx context.Context, sessionID string) (input, output int, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM exchanges WHERE session_id = ?`, sessionID)
	err = row.Scan(&input, &output)
	return input, output, err
}

// Close releases the database handle.
func (s *SQLiteExchangeStore) Close() error {
	return s.db.Close()
}
