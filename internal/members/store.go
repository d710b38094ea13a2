package members

import (
	"context"
	"database/sql"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

const memberCols = `
	m.member_id, m.name, m.email, m.phone, m.password_hash, m.role_id, r.role_name, m.created_at`

func scanMember(row *sql.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.MemberID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash,
		&m.RoleID, &m.RoleName, &m.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("member not found")
		}
		return nil, err
	}
	return &m, nil
}

func (s *Store) GetMember(ctx context.Context, q db.DBTX, memberID int64) (*Member, error) {
	const query = `
	SELECT` + memberCols + `
	FROM members m JOIN roles r ON r.role_id = m.role_id
	WHERE m.member_id = ?`
	return scanMember(q.QueryRowContext(ctx, query, memberID))
}

func (s *Store) GetMemberByEmail(ctx context.Context, q db.DBTX, email string) (*Member, error) {
	const query = `
	SELECT` + memberCols + `
	FROM members m JOIN roles r ON r.role_id = m.role_id
	WHERE m.email = ?`
	return scanMember(q.QueryRowContext(ctx, query, email))
}

func (s *Store) MemberExists(ctx context.Context, q db.DBTX, memberID int64) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM members WHERE member_id = ?`, memberID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListMembers(ctx context.Context, q db.DBTX) ([]Member, error) {
	const query = `
	SELECT` + memberCols + `
	FROM members m JOIN roles r ON r.role_id = m.role_id
	ORDER BY m.member_id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(
			&m.MemberID, &m.Name, &m.Email, &m.Phone, &m.PasswordHash,
			&m.RoleID, &m.RoleName, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
