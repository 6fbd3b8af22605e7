// Package sqlite implements the repository interfaces on top of an embedded
// SQLite database.
//
// WHY SQLITE NEXT TO MONGO?
// The production store is MongoDB, but SQLite needs no server: a single file
// (or ":memory:") is enough to run the whole API locally and to back the test
// suite. modernc.org/sqlite is a pure Go translation of SQLite, so no C
// compiler is needed.
//
// DOCUMENT SHAPE ON TABLES:
// A Post "document" is spread over three tables:
//
//	posts       one row per post
//	post_likes  one row per (post, user); the primary key gives set semantics
//	comments    one row per comment, ordered by created_at
//
// Likes and comments are deleted with their post (ON DELETE CASCADE).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/yellowipe/internal/repository"
)

// DB wraps a sql.DB connection pool and implements both repositories.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New opens the SQLite database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/yellowipe.db" → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests)
//
// The pool is limited to ONE connection: every ":memory:" connection is a
// separate database, and SQLite serializes writers anyway.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress (file databases only).
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite; the cascades below need them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Users returns the user repository.
func (db *DB) Users() repository.UserRepository { return db }

// Posts returns the post repository.
func (db *DB) Posts() repository.PostRepository { return db }

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	// email is UNIQUE: the service checks first, this closes the race.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			bio           TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			author_id  TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS post_likes (
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (post_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating post_likes table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
			author_id  TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating comments table: %w", err)
	}

	return nil
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
