// Package dbtest spins up a throwaway SQLite database with the production
// schema for store and service tests.
package dbtest

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE roles (
    role_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    role_name   TEXT NOT NULL,
    description TEXT NOT NULL
);
CREATE TABLE members (
    member_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    phone         TEXT,
    password_hash TEXT NOT NULL,
    role_id       INTEGER NOT NULL REFERENCES roles (role_id),
    created_at    TIMESTAMP NOT NULL
);
CREATE TABLE books (
    book_id     INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    author      TEXT NOT NULL,
    isbn        TEXT NOT NULL,
    category    TEXT NOT NULL,
    description TEXT,
    cover_img   TEXT,
    donor_id    INTEGER REFERENCES members (member_id)
);
CREATE TABLE book_copies (
    copy_id   INTEGER PRIMARY KEY AUTOINCREMENT,
    book_id   INTEGER NOT NULL REFERENCES books (book_id),
    status    TEXT NOT NULL DEFAULT 'available',
    holder_id INTEGER REFERENCES members (member_id)
);
CREATE TABLE borrow_transactions (
    txn_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    txn_ulid      TEXT NOT NULL UNIQUE,
    copy_id       INTEGER NOT NULL REFERENCES book_copies (copy_id),
    member_id     INTEGER NOT NULL REFERENCES members (member_id),
    admin_id      INTEGER REFERENCES members (member_id),
    admin_comment TEXT,
    status        TEXT NOT NULL DEFAULT 'pending',
    due_date      TIMESTAMP NOT NULL,
    return_date   TIMESTAMP,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP
);
CREATE TABLE donation_transactions (
    txn_id        INTEGER PRIMARY KEY AUTOINCREMENT,
    txn_ulid      TEXT NOT NULL UNIQUE,
    book_id       INTEGER NOT NULL REFERENCES books (book_id),
    member_id     INTEGER NOT NULL REFERENCES members (member_id),
    admin_id      INTEGER REFERENCES members (member_id),
    admin_comment TEXT,
    status        TEXT NOT NULL DEFAULT 'pending',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP
);
`

// Open returns a database backed by a file in t.TempDir. A single connection
// is shared so transactions serialize the same way a row-locking server would.
func Open(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	_, err = conn.Exec(schema)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// ===== fixtures =====

func InsertRole(t *testing.T, conn *sql.DB, name, description string) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO roles (role_name, description) VALUES (?, ?)`, name, description)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func InsertMember(t *testing.T, conn *sql.DB, name, email string, roleID int64) int64 {
	t.Helper()
	res, err := conn.Exec(
		`INSERT INTO members (name, email, password_hash, role_id, created_at) VALUES (?, ?, 'x', ?, ?)`,
		name, email, roleID, time.Now().UTC())
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func InsertBook(t *testing.T, conn *sql.DB, title, author, isbn string) int64 {
	t.Helper()
	res, err := conn.Exec(
		`INSERT INTO books (title, author, isbn, category) VALUES (?, ?, ?, 'General')`,
		title, author, isbn)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func InsertCopy(t *testing.T, conn *sql.DB, bookID int64, status string) int64 {
	t.Helper()
	res, err := conn.Exec(`INSERT INTO book_copies (book_id, status) VALUES (?, ?)`, bookID, status)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

// CopyState reads back the status and holder of a copy.
func CopyState(t *testing.T, conn *sql.DB, copyID int64) (status string, holderID sql.NullInt64) {
	t.Helper()
	err := conn.QueryRow(`SELECT status, holder_id FROM book_copies WHERE copy_id = ?`, copyID).
		Scan(&status, &holderID)
	require.NoError(t, err)
	return status, holderID
}

// CountCopies counts copies of a book in the given status.
func CountCopies(t *testing.T, conn *sql.DB, bookID int64, status string) int {
	t.Helper()
	var n int
	err := conn.QueryRow(`SELECT COUNT(*) FROM book_copies WHERE book_id = ? AND status = ?`, bookID, status).Scan(&n)
	require.NoError(t, err)
	return n
}

// Ctx is a convenience context for tests.
func Ctx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
