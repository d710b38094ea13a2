package catalog

import "database/sql"

// CopyStatus is the availability state of one physical copy.
type CopyStatus string

const (
	CopyAvailable CopyStatus = "available"
	CopyBorrowed  CopyStatus = "borrowed"
	CopyLost      CopyStatus = "lost"
)

// TxnStatus is the lifecycle state of a borrow or donation transaction.
// pending -> success or pending -> failed; terminal states never change.
type TxnStatus string

const (
	TxnPending TxnStatus = "pending"
	TxnSuccess TxnStatus = "success"
	TxnFailed  TxnStatus = "failed"
)

// Book は books テーブルの1行を表す
type Book struct {
	BookID      int64
	Title       string
	Author      string
	ISBN        string
	Category    string
	Description sql.NullString
	CoverImg    sql.NullString
	DonorID     sql.NullInt64
}

// Copy は book_copies テーブルの1行を表す
type Copy struct {
	CopyID   int64
	BookID   int64
	Status   CopyStatus
	HolderID sql.NullInt64
}
