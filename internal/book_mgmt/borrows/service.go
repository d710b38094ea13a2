package borrows

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

// 貸出期間（承認ではなく申請時点から数える）
const borrowPeriod = 14 * 24 * time.Hour

// ---- Clock & ID ----

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewULID(t time.Time) string }

type ulidGen struct{}

func (ulidGen) NewULID(t time.Time) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// ---- Service ----

type Service struct {
	db      *sql.DB
	store   *Store
	alloc   Allocator
	catalog *catalog.Store
	members *members.Store
	guard   *members.Guard
	clock   Clock
	id      IDGen
}

func NewService(conn *sql.DB, guard *members.Guard) *Service {
	return &Service{
		db:      conn,
		store:   NewStore(),
		catalog: catalog.NewStore(),
		members: members.NewStore(),
		guard:   guard,
		clock:   realClock{},
		id:      ulidGen{},
	}
}

// RequestBorrow creates a pending borrow transaction bound to an available
// copy. The copy itself stays available until an admin approves; binding is
// re-validated against live copy state at approval time.
func (s *Service) RequestBorrow(ctx context.Context, memberID, bookID int64) (*BorrowCreatedResponse, error) {
	if memberID <= 0 {
		return nil, apperr.ErrInvalid("member_id must be > 0")
	}
	if bookID <= 0 {
		return nil, apperr.ErrInvalid("book_id must be > 0")
	}

	var resp *BorrowCreatedResponse
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.members.MemberExists(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrNotFound("member not found")
		}

		if _, err := s.catalog.GetBook(ctx, tx, bookID); err != nil {
			return err
		}

		// 同一会員×同一書籍は open/pending 合わせて1件まで
		busy, err := s.catalog.HasOpenOrPendingBorrow(ctx, tx, memberID, bookID)
		if err != nil {
			return err
		}
		if busy {
			return apperr.ErrDuplicateRequest("member already holds or has requested this book")
		}

		copy, err := s.alloc.FindAvailable(ctx, tx, bookID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		txn := &BorrowTxn{
			TxnULID:   s.id.NewULID(now),
			CopyID:    copy.CopyID,
			MemberID:  memberID,
			Status:    catalog.TxnPending,
			DueDate:   now.Add(borrowPeriod),
			CreatedAt: now,
		}
		if err := s.store.InsertBorrow(ctx, tx, txn); err != nil {
			return err
		}

		resp = &BorrowCreatedResponse{
			Message: "Borrow request submitted",
			TxnID:   txn.TxnID,
			TxnULID: txn.TxnULID,
			CopyID:  txn.CopyID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ApproveBorrow resolves a pending request. The bound copy is reserved with a
// compare-and-set against its live state inside the same transaction; losing
// the race fails the approval with COPY_UNAVAILABLE and rolls everything
// back. The request is never silently rebound to another copy.
func (s *Service) ApproveBorrow(ctx context.Context, txnID, adminID int64, comment *string) (*DecisionResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.guard.AuthorizeAdmin(ctx, tx, adminID); err != nil {
			return err
		}

		txn, err := s.store.GetBorrow(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != catalog.TxnPending {
			return apperr.ErrInvalidState("transaction already handled")
		}

		if err := s.alloc.Reserve(ctx, tx, txn.CopyID, txn.MemberID); err != nil {
			return err
		}
		return s.store.MarkDecided(ctx, tx, txnID, catalog.TxnSuccess, adminID, comment, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return &DecisionResponse{Message: "Borrow request approved."}, nil
}

func (s *Service) RejectBorrow(ctx context.Context, txnID, adminID int64, comment *string) (*DecisionResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.guard.AuthorizeAdmin(ctx, tx, adminID); err != nil {
			return err
		}

		txn, err := s.store.GetBorrow(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != catalog.TxnPending {
			return apperr.ErrInvalidState("transaction already handled")
		}
		// 却下ではコピーに一切触れない
		return s.store.MarkDecided(ctx, tx, txnID, catalog.TxnFailed, adminID, comment, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return &DecisionResponse{Message: "Borrow request rejected."}, nil
}

// ReturnCopy closes the member's open borrow and releases the copy. Without a
// copy id the earliest-created open borrow is returned.
func (s *Service) ReturnCopy(ctx context.Context, memberID int64, copyID *int64) (*ReturnedResponse, error) {
	if memberID <= 0 {
		return nil, apperr.ErrInvalid("member_id must be > 0")
	}

	var resp *ReturnedResponse
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.members.MemberExists(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrNotFound("member not found")
		}

		txn, err := s.store.FindOpenBorrow(ctx, tx, memberID, copyID)
		if err != nil {
			return err
		}

		if err := s.store.SetReturned(ctx, tx, txn.TxnID, s.clock.Now()); err != nil {
			return err
		}
		if err := s.alloc.Release(ctx, tx, txn.CopyID); err != nil {
			return err
		}

		resp = &ReturnedResponse{
			Message: fmt.Sprintf("Book copy %d returned.", txn.CopyID),
			CopyID:  txn.CopyID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ListPending is the admin queue.
func (s *Service) ListPending(ctx context.Context) ([]PendingBorrow, error) {
	return s.store.ListPending(ctx, s.db)
}

// ListBorrowedBooks lists the member's currently-held copies.
func (s *Service) ListBorrowedBooks(ctx context.Context, memberID int64) ([]BorrowedBook, error) {
	ok, err := s.members.MemberExists(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound("member not found")
	}
	return s.store.ListBorrowedBooks(ctx, s.db, memberID, s.clock.Now())
}
