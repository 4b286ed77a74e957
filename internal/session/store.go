// Package session persists browser sessions: the OAuth state nonce issued
// before redirecting to the login page, and the bearer token plus expiry
// obtained from the code exchange. The browser only ever holds an opaque
// random id.
package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound means no session row exists for the given id.
var ErrNotFound = errors.New("session: not found")

// Session is one browser session. A zero ExpiresAt or empty AccessToken
// means the user has not completed authentication.
type Session struct {
	ID          string
	State       string
	AccessToken string
	UserID      string
	ExpiresAt   time.Time
}

// Authenticated reports whether the session carries a credential that is
// still valid at now.
func (s Session) Authenticated(now time.Time) bool {
	return s.AccessToken != "" && now.Before(s.ExpiresAt)
}

// NewID returns a fresh random session id (also used for OAuth state).
func NewID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// Store keeps sessions in sqlite so a restart does not log everyone out.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the sqlite database at dbPath and runs
// the embedded migrations.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping checks database liveness, for readiness probes.
func (st *Store) Ping(ctx context.Context) error {
	return st.db.PingContext(ctx)
}

func (st *Store) Close() error {
	if st.db != nil {
		return st.db.Close()
	}
	return nil
}

// Get loads a session by id.
func (st *Store) Get(ctx context.Context, id string) (Session, error) {
	row := st.db.QueryRowContext(ctx,
		`SELECT id, state, access_token, user_id, expires_at FROM sessions WHERE id = ?`, id)
	var (
		s       Session
		expires int64
	)
	if err := row.Scan(&s.ID, &s.State, &s.AccessToken, &s.UserID, &expires); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrNotFound
		}
		return Session{}, fmt.Errorf("select session: %w", err)
	}
	if expires > 0 {
		s.ExpiresAt = time.Unix(expires, 0)
	}
	return s, nil
}

// Save upserts the session row.
func (st *Store) Save(ctx context.Context, s Session) error {
	var expires int64
	if !s.ExpiresAt.IsZero() {
		expires = s.ExpiresAt.Unix()
	}
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, access_token, user_id, expires_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
		   state = excluded.state,
		   access_token = excluded.access_token,
		   user_id = excluded.user_id,
		   expires_at = excluded.expires_at,
		   updated_at = CURRENT_TIMESTAMP`,
		s.ID, s.State, s.AccessToken, s.UserID, expires)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes a session; deleting an absent id is a no-op.
func (st *Store) Delete(ctx context.Context, id string) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
