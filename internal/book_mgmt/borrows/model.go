package borrows

import (
	"database/sql"
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
)

// BorrowTxn は borrow_transactions テーブルの1行を表す
type BorrowTxn struct {
	TxnID        int64
	TxnULID      string
	CopyID       int64
	MemberID     int64
	AdminID      sql.NullInt64
	AdminComment sql.NullString
	Status       catalog.TxnStatus
	DueDate      time.Time
	ReturnDate   sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    sql.NullTime
}

// Open reports whether the txn is an approved borrow that has not been
// returned yet.
func (t *BorrowTxn) Open() bool {
	return t.Status == catalog.TxnSuccess && !t.ReturnDate.Valid
}
