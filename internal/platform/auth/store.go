package auth

import (
	"context"
	"database/sql"
	"time"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) EmailExists(ctx context.Context, q db.DBTX, email string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM members WHERE email = ?`, email).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) PhoneExists(ctx context.Context, q db.DBTX, phone string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM members WHERE phone = ?`, phone).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// UserRoleID resolves the role new registrations get. Seeding creates the
// regular-user role after the privileged ones, hence the DESC order.
func (s *Store) UserRoleID(ctx context.Context, q db.DBTX) (int64, error) {
	const query = `SELECT role_id FROM roles WHERE role_name = 'user' ORDER BY role_id DESC LIMIT 1`
	var id int64
	if err := q.QueryRowContext(ctx, query).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return 0, apperr.ErrInternal("user role not found")
		}
		return 0, err
	}
	return id, nil
}

func (s *Store) InsertMember(ctx context.Context, q db.DBTX, name, email string, phone *string, passwordHash string, roleID int64, now time.Time) (int64, error) {
	const query = `
	INSERT INTO members (name, email, phone, password_hash, role_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	var ph any
	if phone != nil && *phone != "" {
		ph = *phone
	}
	res, err := q.ExecContext(ctx, query, name, email, ph, passwordHash, roleID, now)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
