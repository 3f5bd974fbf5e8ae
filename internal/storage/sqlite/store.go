package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Store persists user credentials and the per-user conversation log.
type Store struct {
	db *sql.DB
}

type UserRecord struct {
	Username  string
	Email     string
	FullName  string
	CreatedAt time.Time
}

type ChatMessage struct {
	ID        int64
	Username  string
	SessionID string
	Role      string
	Text      string
	Timestamp time.Time
}

func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    email TEXT,
    full_name TEXT,
    password_hash TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS chats (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL,
    session_id TEXT,
    role TEXT CHECK(role IN ('user', 'assistant')) NOT NULL,
    text TEXT NOT NULL,
    ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_chats_user ON chats(username, id);
`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// RegisterUser creates a new credential record. It returns false without an
// error when the username is already taken.
func (s *Store) RegisterUser(ctx context.Context, username, email, fullName, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, fmt.Errorf("username is required")
	}
	if password == "" {
		return false, fmt.Errorf("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO users (username, email, full_name, password_hash)
VALUES (?, ?, ?, ?)
`, username, email, fullName, string(hash))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return false, nil
		}
		return false, fmt.Errorf("insert user: %w", err)
	}
	return true, nil
}

// VerifyLogin reports whether the supplied credentials match a stored record.
// Unknown usernames and bad passwords are both false without an error.
func (s *Store) VerifyLogin(ctx context.Context, username, password string) (bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT password_hash FROM users WHERE username = ? LIMIT 1
`, strings.TrimSpace(username))

	var hash string
	if err := row.Scan(&hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup user: %w", err)
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// Profile returns the stored record for a username, or nil if unknown. The
// password hash never leaves the store.
func (s *Store) Profile(ctx context.Context, username string) (*UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT username, email, full_name, created_at
FROM users WHERE username = ? LIMIT 1
`, strings.TrimSpace(username))

	var rec UserRecord
	if err := row.Scan(&rec.Username, &rec.Email, &rec.FullName, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	return &rec, nil
}

// AppendMessage writes one conversation-log row.
func (s *Store) AppendMessage(ctx context.Context, msg ChatMessage) error {
	if strings.TrimSpace(msg.Username) == "" {
		return fmt.Errorf("message username is required")
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return fmt.Errorf("invalid message role %q", msg.Role)
	}
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO chats (username, session_id, role, text, ts)
VALUES (?, ?, ?, ?, ?)
`, msg.Username, msg.SessionID, msg.Role, msg.Text, ts.UTC())
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages for a user in insertion order.
func (s *Store) RecentMessages(ctx context.Context, username string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, username, session_id, role, text, ts
FROM chats
WHERE username = ?
ORDER BY id ASC
LIMIT ?
`, strings.TrimSpace(username), limit)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []ChatMessage
	for rows.Next() {
		var (
			rec       ChatMessage
			sessionID sql.NullString
			ts        time.Time
		)
		if err := rows.Scan(&rec.ID, &rec.Username, &sessionID, &rec.Role, &rec.Text, &ts); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		rec.SessionID = sessionID.String
		rec.Timestamp = ts
		msgs = append(msgs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chat messages rows: %w", err)
	}
	return msgs, nil
}
