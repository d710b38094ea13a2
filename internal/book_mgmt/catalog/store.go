package catalog

import (
	"context"
	"database/sql"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

func (s *Store) GetBook(ctx context.Context, q db.DBTX, bookID int64) (*Book, error) {
	const query = `
	SELECT book_id, title, author, isbn, category, description, cover_img, donor_id
	FROM books WHERE book_id = ?`
	var b Book
	err := q.QueryRowContext(ctx, query, bookID).Scan(
		&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Category,
		&b.Description, &b.CoverImg, &b.DonorID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("book not found")
		}
		return nil, err
	}
	return &b, nil
}

func (s *Store) ListBooks(ctx context.Context, q db.DBTX) ([]Book, error) {
	const query = `
	SELECT book_id, title, author, isbn, category, description, cover_img, donor_id
	FROM books ORDER BY book_id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(
			&b.BookID, &b.Title, &b.Author, &b.ISBN, &b.Category,
			&b.Description, &b.CoverImg, &b.DonorID,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CountAvailable recomputes the available-copy count from live copy rows.
// Never cached on the book row.
func (s *Store) CountAvailable(ctx context.Context, q db.DBTX, bookID int64) (int, error) {
	const query = `SELECT COUNT(*) FROM book_copies WHERE book_id = ? AND status = ?`
	var n int
	if err := q.QueryRowContext(ctx, query, bookID, CopyAvailable).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// HasOpenOrPendingBorrow reports whether the member currently holds a copy of
// the book (success, not yet returned) or has a pending request for it.
func (s *Store) HasOpenOrPendingBorrow(ctx context.Context, q db.DBTX, memberID, bookID int64) (bool, error) {
	const query = `
	SELECT COUNT(*)
	FROM borrow_transactions t
	JOIN book_copies c ON c.copy_id = t.copy_id
	WHERE t.member_id = ? AND c.book_id = ?
	  AND ((t.status = ? AND t.return_date IS NULL) OR t.status = ?)`
	var n int
	if err := q.QueryRowContext(ctx, query, memberID, bookID, TxnSuccess, TxnPending).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}
