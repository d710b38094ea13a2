package borrows

import (
	"context"
	"database/sql"
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

const txnCols = `
	txn_id, txn_ulid, copy_id, member_id, admin_id, admin_comment, status,
	due_date, return_date, created_at, updated_at`

func scanTxn(row *sql.Row) (*BorrowTxn, error) {
	var t BorrowTxn
	err := row.Scan(
		&t.TxnID, &t.TxnULID, &t.CopyID, &t.MemberID, &t.AdminID, &t.AdminComment,
		&t.Status, &t.DueDate, &t.ReturnDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("borrow transaction not found")
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) InsertBorrow(ctx context.Context, q db.DBTX, t *BorrowTxn) error {
	const query = `
	INSERT INTO borrow_transactions
	(txn_ulid, copy_id, member_id, status, due_date, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		t.TxnULID, t.CopyID, t.MemberID, t.Status, t.DueDate, t.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.TxnID = id
	return nil
}

func (s *Store) GetBorrow(ctx context.Context, q db.DBTX, txnID int64) (*BorrowTxn, error) {
	const query = `SELECT` + txnCols + ` FROM borrow_transactions WHERE txn_id = ?`
	return scanTxn(q.QueryRowContext(ctx, query, txnID))
}

// MarkDecided moves a pending transaction to its terminal state. The WHERE
// clause re-checks pending so that two concurrent decisions cannot both land.
func (s *Store) MarkDecided(ctx context.Context, q db.DBTX, txnID int64, status catalog.TxnStatus, adminID int64, comment *string, now time.Time) error {
	const query = `
	UPDATE borrow_transactions
	SET status = ?, admin_id = ?, admin_comment = ?, updated_at = ?
	WHERE txn_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, status, adminID, commentOrNil(comment), now, txnID, catalog.TxnPending)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return apperr.ErrInvalidState("transaction already handled")
	}
	return nil
}

// FindOpenBorrow selects the member's open borrow (success, not returned).
// With copyID it must match that exact copy; without, the earliest-created
// open borrow is chosen, to match the first-borrowed-first-returned
// convention.
func (s *Store) FindOpenBorrow(ctx context.Context, q db.DBTX, memberID int64, copyID *int64) (*BorrowTxn, error) {
	query := `
	SELECT` + txnCols + `
	FROM borrow_transactions
	WHERE member_id = ? AND status = ? AND return_date IS NULL`
	args := []any{memberID, catalog.TxnSuccess}
	if copyID != nil {
		query += ` AND copy_id = ?`
		args = append(args, *copyID)
	}
	query += ` ORDER BY created_at, txn_id LIMIT 1`

	t, err := scanTxn(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			if copyID != nil {
				return nil, apperr.ErrNotFound("no active borrow found for the specified copy")
			}
			return nil, apperr.ErrNotFound("no active borrow found")
		}
		return nil, err
	}
	return t, nil
}

// SetReturned stamps the return date. Idempotence is enforced here: a second
// return of the same transaction affects zero rows.
func (s *Store) SetReturned(ctx context.Context, q db.DBTX, txnID int64, now time.Time) error {
	const query = `
	UPDATE borrow_transactions
	SET return_date = ?, updated_at = ?
	WHERE txn_id = ? AND return_date IS NULL`
	res, err := q.ExecContext(ctx, query, now, now, txnID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return apperr.ErrInvalidState("transaction already returned")
	}
	return nil
}

func (s *Store) ListPending(ctx context.Context, q db.DBTX) ([]PendingBorrow, error) {
	const query = `
	SELECT
		t.txn_id, t.txn_ulid, t.copy_id, t.member_id, t.due_date, t.status,
		t.created_at, t.updated_at, t.admin_id, t.admin_comment,
		m.name, m.email, m.phone, r.role_name,
		b.book_id, b.title, b.author, b.category, b.isbn, b.description, b.cover_img,
		(SELECT COUNT(*) FROM book_copies c2 WHERE c2.book_id = b.book_id AND c2.status = ?) AS available_copies
	FROM borrow_transactions t
	JOIN book_copies c ON c.copy_id = t.copy_id
	JOIN books b ON b.book_id = c.book_id
	JOIN members m ON m.member_id = t.member_id
	JOIN roles r ON r.role_id = m.role_id
	WHERE t.status = ?
	ORDER BY t.created_at, t.txn_id`

	rows, err := q.QueryContext(ctx, query, catalog.CopyAvailable, catalog.TxnPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingBorrow
	for rows.Next() {
		var (
			p           PendingBorrow
			updatedAt   sql.NullTime
			adminID     sql.NullInt64
			comment     sql.NullString
			phone       sql.NullString
			description sql.NullString
			coverImg    sql.NullString
		)
		if err := rows.Scan(
			&p.TxnID, &p.TxnULID, &p.CopyID, &p.MemberID, &p.DueDate, &p.Status,
			&p.CreatedAt, &updatedAt, &adminID, &comment,
			&p.Member.Name, &p.Member.Email, &phone, &p.Member.RoleName,
			&p.Book.BookID, &p.Book.Title, &p.Book.Author, &p.Book.Category,
			&p.Book.ISBN, &description, &coverImg, &p.Book.AvailableCopies,
		); err != nil {
			return nil, err
		}
		p.Member.MemberID = p.MemberID
		p.Book.CanBorrow = true
		if updatedAt.Valid {
			v := updatedAt.Time
			p.UpdatedAt = &v
		}
		if adminID.Valid {
			v := adminID.Int64
			p.AdminID = &v
		}
		if comment.Valid {
			v := comment.String
			p.AdminComment = &v
		}
		if phone.Valid {
			v := phone.String
			p.Member.Phone = &v
		}
		if description.Valid {
			v := description.String
			p.Book.Description = &v
		}
		if coverImg.Valid {
			v := coverImg.String
			p.Book.CoverImg = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListBorrowedBooks returns the member's open borrows joined with book info.
func (s *Store) ListBorrowedBooks(ctx context.Context, q db.DBTX, memberID int64, now time.Time) ([]BorrowedBook, error) {
	const query = `
	SELECT c.copy_id, b.book_id, b.title, b.author, b.category, t.created_at, t.due_date
	FROM borrow_transactions t
	JOIN book_copies c ON c.copy_id = t.copy_id
	JOIN books b ON b.book_id = c.book_id
	WHERE t.member_id = ? AND t.status = ? AND t.return_date IS NULL
	ORDER BY t.created_at, t.txn_id`

	rows, err := q.QueryContext(ctx, query, memberID, catalog.TxnSuccess)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BorrowedBook
	for rows.Next() {
		var bb BorrowedBook
		if err := rows.Scan(
			&bb.CopyID, &bb.BookID, &bb.Title, &bb.Author, &bb.Category,
			&bb.BorrowedDate, &bb.DueDate,
		); err != nil {
			return nil, err
		}
		bb.IsOverdue = now.After(bb.DueDate)
		out = append(out, bb)
	}
	return out, rows.Err()
}

func commentOrNil(s *string) any {
	if s != nil && *s != "" {
		return *s
	}
	return nil
}
