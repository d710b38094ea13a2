package borrows

import (
	"context"
	"database/sql"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

// Allocator picks the physical copy that satisfies a borrow request and owns
// the available<->borrowed transitions. All state flips are single
// compare-and-set UPDATEs so that two concurrent approvals of the same copy
// resolve to exactly one winner.
type Allocator struct{}

// FindAvailable returns the available copy with the lowest copy_id, so that
// allocation is deterministic and reproducible. NO_AVAILABLE_COPY if the book
// has no available copies.
func (Allocator) FindAvailable(ctx context.Context, q db.DBTX, bookID int64) (*catalog.Copy, error) {
	const query = `
	SELECT copy_id, book_id, status, holder_id
	FROM book_copies
	WHERE book_id = ? AND status = ?
	ORDER BY copy_id
	LIMIT 1`
	var c catalog.Copy
	err := q.QueryRowContext(ctx, query, bookID, catalog.CopyAvailable).Scan(
		&c.CopyID, &c.BookID, &c.Status, &c.HolderID,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrNoAvailableCopy("no available copy found")
		}
		return nil, err
	}
	return &c, nil
}

// Reserve flips one copy available -> borrowed and records the holder.
// The WHERE clause re-checks live state; zero affected rows means another
// operation got the copy first and the caller must fail with COPY_UNAVAILABLE.
func (Allocator) Reserve(ctx context.Context, q db.DBTX, copyID, holderID int64) error {
	const query = `
	UPDATE book_copies
	SET status = ?, holder_id = ?
	WHERE copy_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, catalog.CopyBorrowed, holderID, copyID, catalog.CopyAvailable)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return apperr.ErrCopyUnavailable("book copy is not available any more")
	}
	return nil
}

// Release flips one copy borrowed -> available and clears the holder.
// Releasing a copy that is not borrowed means the inventory and the
// transaction log disagree; that is surfaced, not patched.
func (Allocator) Release(ctx context.Context, q db.DBTX, copyID int64) error {
	const query = `
	UPDATE book_copies
	SET status = ?, holder_id = NULL
	WHERE copy_id = ? AND status = ?`
	res, err := q.ExecContext(ctx, query, catalog.CopyAvailable, copyID, catalog.CopyBorrowed)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff != 1 {
		return apperr.ErrInternal("copy to release was not in borrowed state")
	}
	return nil
}
