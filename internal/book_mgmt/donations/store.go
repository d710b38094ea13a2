package donations

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

// InsertBook creates the catalog entry for a brand-new donated title.
// Zero copies exist until the donation is approved.
func (s *Store) InsertBook(ctx context.Context, q db.DBTX, b *catalog.Book) error {
	const query = `
	INSERT INTO books (title, author, isbn, category, description, cover_img, donor_id)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query,
		b.Title, b.Author, b.ISBN, b.Category,
		nullStrOrNil(b.Description), nullStrOrNil(b.CoverImg), b.DonorID,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.BookID = id
	return nil
}

func (s *Store) InsertDonation(ctx context.Context, q db.DBTX, t *DonationTxn) error {
	const query = `
	INSERT INTO donation_transactions (txn_ulid, book_id, member_id, status, created_at)
	VALUES (?, ?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, t.TxnULID, t.BookID, t.MemberID, t.Status, t.CreatedAt)
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

func (s *Store) GetDonation(ctx context.Context, q db.DBTX, txnID int64) (*DonationTxn, error) {
	const query = `
	SELECT txn_id, txn_ulid, book_id, member_id, admin_id, admin_comment, status, created_at, updated_at
	FROM donation_transactions WHERE txn_id = ?`
	var t DonationTxn
	err := q.QueryRowContext(ctx, query, txnID).Scan(
		&t.TxnID, &t.TxnULID, &t.BookID, &t.MemberID, &t.AdminID, &t.AdminComment,
		&t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNotFound("donation transaction not found")
		}
		return nil, err
	}
	return &t, nil
}

// MarkDecided moves a pending donation to its terminal state, compare-and-set
// on pending like the borrow side.
func (s *Store) MarkDecided(ctx context.Context, q db.DBTX, txnID int64, status catalog.TxnStatus, adminID int64, comment *string, now time.Time) error {
	const query = `
	UPDATE donation_transactions
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
		return apperr.ErrInvalidState("donation already handled")
	}
	return nil
}

// InsertCopy materializes exactly one new available copy for the book.
func (s *Store) InsertCopy(ctx context.Context, q db.DBTX, bookID int64) (int64, error) {
	const query = `INSERT INTO book_copies (book_id, status) VALUES (?, ?)`
	res, err := q.ExecContext(ctx, query, bookID, catalog.CopyAvailable)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ListPending(ctx context.Context, q db.DBTX) ([]PendingDonation, error) {
	const query = `
	SELECT
		t.txn_id, t.txn_ulid, t.book_id, t.member_id, t.status,
		t.created_at, t.updated_at, t.admin_id, t.admin_comment,
		m.name, m.email, m.phone, r.role_name,
		b.title, b.author, b.category, b.isbn, b.description, b.cover_img,
		(SELECT COUNT(*) FROM book_copies c2 WHERE c2.book_id = b.book_id AND c2.status = ?) AS available_copies
	FROM donation_transactions t
	JOIN books b ON b.book_id = t.book_id
	JOIN members m ON m.member_id = t.member_id
	JOIN roles r ON r.role_id = m.role_id
	WHERE t.status = ?
	ORDER BY t.created_at, t.txn_id`

	rows, err := q.QueryContext(ctx, query, catalog.CopyAvailable, catalog.TxnPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PendingDonation
	for rows.Next() {
		var (
			p           PendingDonation
			updatedAt   sql.NullTime
			adminID     sql.NullInt64
			comment     sql.NullString
			phone       sql.NullString
			description sql.NullString
			coverImg    sql.NullString
		)
		if err := rows.Scan(
			&p.TxnID, &p.TxnULID, &p.BookID, &p.MemberID, &p.Status,
			&p.CreatedAt, &updatedAt, &adminID, &comment,
			&p.Member.Name, &p.Member.Email, &phone, &p.Member.RoleName,
			&p.Book.Title, &p.Book.Author, &p.Book.Category, &p.Book.ISBN,
			&description, &coverImg, &p.Book.AvailableCopies,
		); err != nil {
			return nil, err
		}
		p.Member.MemberID = p.MemberID
		p.Book.BookID = p.BookID
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

func nullStrOrNil(ns sql.NullString) any {
	if ns.Valid {
		return ns.String
	}
	return nil
}

func commentOrNil(s *string) any {
	if s != nil && *s != "" {
		return *s
	}
	return nil
}
