package donations

import (
	"time"

	"boiadda-backend/internal/book_mgmt/borrows"
	"boiadda-backend/internal/book_mgmt/catalog"
)

// ===== Requests =====

// NewBookRequest donates a title the library does not know yet.
type NewBookRequest struct {
	Title       string  `json:"title" binding:"required"`
	Author      string  `json:"author" binding:"required"`
	Description *string `json:"description,omitempty"`
	CoverImg    *string `json:"cover_img,omitempty"`
	Category    *string `json:"category,omitempty"` // 未指定なら「সাধারণ」
}

type AdminDecisionRequest struct {
	Comment *string `json:"comment,omitempty"`
}

// ===== Responses =====

type DonationCreatedResponse struct {
	Message string `json:"message"`
	BookID  int64  `json:"book_id"`
	TxnID   int64  `json:"donation_txn_id"`
	TxnULID string `json:"donation_txn_ulid"`
}

type DecisionResponse struct {
	Message string `json:"message"`
}

// PendingDonation is the admin view of one pending donation.
type PendingDonation struct {
	TxnID        int64                 `json:"id"`
	TxnULID      string                `json:"txn_ulid"`
	MemberID     int64                 `json:"member_id"`
	BookID       int64                 `json:"book_id"`
	Status       catalog.TxnStatus     `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    *time.Time            `json:"updated_at,omitempty"`
	AdminID      *int64                `json:"admin_id,omitempty"`
	AdminComment *string               `json:"admin_comment,omitempty"`
	Member       borrows.RequesterInfo `json:"member"`
	Book         catalog.BookInfo      `json:"book"`
}
