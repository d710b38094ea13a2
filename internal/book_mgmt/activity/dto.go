package activity

import "time"

// ===== Responses =====

// Event is one row of the merged recent-activity feed. Ids are composed from
// the event kind and the underlying row id ("borrow_12"), so every event can
// be traced back to a persisted transaction.
type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // "borrow" | "donation" | "return" | "member"
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
	MemberName  *string   `json:"member_name,omitempty"`
	BookTitle   *string   `json:"book_title,omitempty"`
}

// BorrowRecord is one borrow transaction in a member's history, with its
// display status computed from live state.
type BorrowRecord struct {
	TxnID        int64      `json:"id"`
	BookTitle    string     `json:"book_title"`
	BookAuthor   string     `json:"book_author"`
	BookCategory string     `json:"book_category"`
	CopyID       int64      `json:"copy_id"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Status       string     `json:"status"` // Current / Returned / Pending / Rejected / Overdue
	IsOverdue    bool       `json:"is_overdue"`
	AdminComment *string    `json:"admin_comment,omitempty"`
}

type DonationRecord struct {
	TxnID        int64     `json:"id"`
	BookTitle    string    `json:"book_title"`
	BookAuthor   string    `json:"book_author"`
	BookCategory string    `json:"book_category"`
	DonationDate time.Time `json:"donation_date"`
	Status       string    `json:"status"` // Approved / Pending / Rejected
	CopiesAdded  int       `json:"copies_added"`
	AdminComment *string   `json:"admin_comment,omitempty"`
}

// Statistics aggregates a member's full borrow/donation history. All
// counters are recomputed from the transaction rows on every call.
type Statistics struct {
	BorrowedBooks           []BorrowRecord   `json:"borrowed_books"`
	DonatedBooks            []DonationRecord `json:"donated_books"`
	TotalBorrowed           int              `json:"total_borrowed"`
	TotalDonated            int              `json:"total_donated"`
	CurrentBorrowed         int              `json:"current_borrowed"`
	OverdueBooks            int              `json:"overdue_books"`
	PendingBorrowRequests   int              `json:"pending_borrow_requests"`
	PendingDonationRequests int              `json:"pending_donation_requests"`
	RejectedBorrowRequests  int              `json:"rejected_borrow_requests"`
	RejectedDonationRequests int             `json:"rejected_donation_requests"`
}
