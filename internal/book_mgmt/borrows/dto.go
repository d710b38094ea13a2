package borrows

import (
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
)

// ===== Requests =====

type ReturnRequest struct {
	// 指定なしなら最も古い貸出中の1冊を返却
	CopyID *int64 `json:"copy_id,omitempty"`
}

type AdminDecisionRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// ===== Responses =====

type BorrowCreatedResponse struct {
	Message string `json:"message"`
	TxnID   int64  `json:"borrow_txn_id"`
	TxnULID string `json:"borrow_txn_ulid"`
	CopyID  int64  `json:"copy_id"`
}

type ReturnedResponse struct {
	Message string `json:"message"`
	CopyID  int64  `json:"copy_id"`
}

type DecisionResponse struct {
	Message string `json:"message"`
}

// BorrowedBook is one currently-held copy, for the member's return view.
type BorrowedBook struct {
	CopyID       int64     `json:"copy_id"`
	BookID       int64     `json:"book_id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Category     string    `json:"category"`
	BorrowedDate time.Time `json:"borrowed_date"`
	DueDate      time.Time `json:"due_date"`
	IsOverdue    bool      `json:"is_overdue"`
}

// PendingBorrow is the admin view of one pending request, joined with the
// requester and the book (with its live available-copy count).
type PendingBorrow struct {
	TxnID        int64             `json:"id"`
	TxnULID      string            `json:"txn_ulid"`
	MemberID     int64             `json:"member_id"`
	CopyID       int64             `json:"copy_id"`
	DueDate      time.Time         `json:"due_date"`
	Status       catalog.TxnStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    *time.Time        `json:"updated_at,omitempty"`
	AdminID      *int64            `json:"admin_id,omitempty"`
	AdminComment *string           `json:"admin_comment,omitempty"`
	Member       RequesterInfo     `json:"member"`
	Book         catalog.BookInfo  `json:"book"`
}

type RequesterInfo struct {
	MemberID int64   `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone,omitempty"`
	RoleName string  `json:"role_name"`
}
