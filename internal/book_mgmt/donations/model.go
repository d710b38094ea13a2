package donations

import (
	"database/sql"
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
)

// DonationTxn は donation_transactions テーブルの1行を表す。
// Copyへの参照は持たない。承認の時点で初めてコピーが1冊作られる。
type DonationTxn struct {
	TxnID        int64
	TxnULID      string
	BookID       int64
	MemberID     int64
	AdminID      sql.NullInt64
	AdminComment sql.NullString
	Status       catalog.TxnStatus
	CreatedAt    time.Time
	UpdatedAt    sql.NullTime
}
