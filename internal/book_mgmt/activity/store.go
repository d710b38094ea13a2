package activity

import (
	"context"
	"database/sql"
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/platform/db"
)

type Store struct{}

func NewStore() *Store { return &Store{} }

// feedRow is a (member name, book title, timestamp, row id) tuple shared by
// the borrow/donation/return feed queries.
type feedRow struct {
	RowID      int64
	MemberName string
	BookTitle  string
	At         time.Time
}

func scanFeedRows(rows *sql.Rows) ([]feedRow, error) {
	defer rows.Close()
	var out []feedRow
	for rows.Next() {
		var r feedRow
		if err := rows.Scan(&r.RowID, &r.MemberName, &r.BookTitle, &r.At); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecentBorrows: approved borrows, newest decision first.
func (s *Store) RecentBorrows(ctx context.Context, q db.DBTX, limit int) ([]feedRow, error) {
	const query = `
	SELECT t.txn_id, m.name, b.title, COALESCE(t.updated_at, t.created_at)
	FROM borrow_transactions t
	JOIN members m ON m.member_id = t.member_id
	JOIN book_copies c ON c.copy_id = t.copy_id
	JOIN books b ON b.book_id = c.book_id
	WHERE t.status = ?
	ORDER BY COALESCE(t.updated_at, t.created_at) DESC
	LIMIT ?`
	rows, err := q.QueryContext(ctx, query, catalog.TxnSuccess, limit)
	if err != nil {
		return nil, err
	}
	return scanFeedRows(rows)
}

// RecentDonations: approved donations, newest decision first.
func (s *Store) RecentDonations(ctx context.Context, q db.DBTX, limit int) ([]feedRow, error) {
	const query = `
	SELECT t.txn_id, m.name, b.title, COALESCE(t.updated_at, t.created_at)
	FROM donation_transactions t
	JOIN members m ON m.member_id = t.member_id
	JOIN books b ON b.book_id = t.book_id
	WHERE t.status = ?
	ORDER BY COALESCE(t.updated_at, t.created_at) DESC
	LIMIT ?`
	rows, err := q.QueryContext(ctx, query, catalog.TxnSuccess, limit)
	if err != nil {
		return nil, err
	}
	return scanFeedRows(rows)
}

// RecentReturns: returned borrows, newest return first.
func (s *Store) RecentReturns(ctx context.Context, q db.DBTX, limit int) ([]feedRow, error) {
	const query = `
	SELECT t.txn_id, m.name, b.title, t.return_date
	FROM borrow_transactions t
	JOIN members m ON m.member_id = t.member_id
	JOIN book_copies c ON c.copy_id = t.copy_id
	JOIN books b ON b.book_id = c.book_id
	WHERE t.return_date IS NOT NULL
	ORDER BY t.return_date DESC
	LIMIT ?`
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanFeedRows(rows)
}

// RecentMembers: newest registrations.
func (s *Store) RecentMembers(ctx context.Context, q db.DBTX, limit int) ([]feedRow, error) {
	const query = `
	SELECT member_id, name, '', created_at
	FROM members
	ORDER BY created_at DESC, member_id DESC
	LIMIT ?`
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return scanFeedRows(rows)
}

// ---- member history ----

type borrowHistoryRow struct {
	TxnID        int64
	CopyID       int64
	Status       catalog.TxnStatus
	DueDate      time.Time
	ReturnDate   sql.NullTime
	CreatedAt    time.Time
	AdminComment sql.NullString
	Title        string
	Author       string
	Category     string
}

func (s *Store) BorrowHistory(ctx context.Context, q db.DBTX, memberID int64) ([]borrowHistoryRow, error) {
	const query = `
	SELECT t.txn_id, t.copy_id, t.status, t.due_date, t.return_date, t.created_at, t.admin_comment,
	       b.title, b.author, b.category
	FROM borrow_transactions t
	JOIN book_copies c ON c.copy_id = t.copy_id
	JOIN books b ON b.book_id = c.book_id
	WHERE t.member_id = ?
	ORDER BY t.created_at DESC, t.txn_id DESC`
	rows, err := q.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []borrowHistoryRow
	for rows.Next() {
		var r borrowHistoryRow
		if err := rows.Scan(
			&r.TxnID, &r.CopyID, &r.Status, &r.DueDate, &r.ReturnDate, &r.CreatedAt,
			&r.AdminComment, &r.Title, &r.Author, &r.Category,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type donationHistoryRow struct {
	TxnID        int64
	Status       catalog.TxnStatus
	CreatedAt    time.Time
	AdminComment sql.NullString
	Title        string
	Author       string
	Category     string
}

func (s *Store) DonationHistory(ctx context.Context, q db.DBTX, memberID int64) ([]donationHistoryRow, error) {
	const query = `
	SELECT t.txn_id, t.status, t.created_at, t.admin_comment, b.title, b.author, b.category
	FROM donation_transactions t
	JOIN books b ON b.book_id = t.book_id
	WHERE t.member_id = ?
	ORDER BY t.created_at DESC, t.txn_id DESC`
	rows, err := q.QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []donationHistoryRow
	for rows.Next() {
		var r donationHistoryRow
		if err := rows.Scan(
			&r.TxnID, &r.Status, &r.CreatedAt, &r.AdminComment, &r.Title, &r.Author, &r.Category,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
