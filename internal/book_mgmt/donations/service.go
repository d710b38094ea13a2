package donations

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

// 寄贈書籍のデフォルトカテゴリ（元データに合わせる）
const defaultCategory = "সাধারণ"

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

// DonateNewBook registers an unknown title and a pending donation for it.
// The new book starts with zero copies; nothing is borrowable until an admin
// approves the donation.
func (s *Service) DonateNewBook(ctx context.Context, memberID int64, req NewBookRequest) (*DonationCreatedResponse, error) {
	if memberID <= 0 {
		return nil, apperr.ErrInvalid("member_id must be > 0")
	}

	var resp *DonationCreatedResponse
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		ok, err := s.members.MemberExists(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.ErrNotFound("member not found")
		}

		now := s.clock.Now()
		txnULID := s.id.NewULID(now)

		category := defaultCategory
		if req.Category != nil && *req.Category != "" {
			category = *req.Category
		}

		book := &catalog.Book{
			Title:    req.Title,
			Author:   req.Author,
			ISBN:     "DONATED-" + txnULID[:8],
			Category: category,
			DonorID:  sql.NullInt64{Int64: memberID, Valid: true},
		}
		if req.Description != nil && *req.Description != "" {
			book.Description = sql.NullString{String: *req.Description, Valid: true}
		}
		if req.CoverImg != nil && *req.CoverImg != "" {
			book.CoverImg = sql.NullString{String: *req.CoverImg, Valid: true}
		}
		if err := s.store.InsertBook(ctx, tx, book); err != nil {
			return err
		}

		txn := &DonationTxn{
			TxnULID:   txnULID,
			BookID:    book.BookID,
			MemberID:  memberID,
			Status:    catalog.TxnPending,
			CreatedAt: now,
		}
		if err := s.store.InsertDonation(ctx, tx, txn); err != nil {
			return err
		}

		resp = &DonationCreatedResponse{
			Message: "Book donation submitted",
			BookID:  book.BookID,
			TxnID:   txn.TxnID,
			TxnULID: txn.TxnULID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DonateExistingBook files a pending donation of another physical copy of a
// title the library already has.
func (s *Service) DonateExistingBook(ctx context.Context, memberID, bookID int64) (*DonationCreatedResponse, error) {
	if memberID <= 0 {
		return nil, apperr.ErrInvalid("member_id must be > 0")
	}
	if bookID <= 0 {
		return nil, apperr.ErrInvalid("book_id must be > 0")
	}

	var resp *DonationCreatedResponse
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

		now := s.clock.Now()
		txn := &DonationTxn{
			TxnULID:   s.id.NewULID(now),
			BookID:    bookID,
			MemberID:  memberID,
			Status:    catalog.TxnPending,
			CreatedAt: now,
		}
		if err := s.store.InsertDonation(ctx, tx, txn); err != nil {
			return err
		}

		resp = &DonationCreatedResponse{
			Message: "Donation request submitted",
			BookID:  bookID,
			TxnID:   txn.TxnID,
			TxnULID: txn.TxnULID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ApproveDonation resolves a pending donation and materializes exactly one
// new available copy. This is the only path that grows total inventory.
func (s *Service) ApproveDonation(ctx context.Context, txnID, adminID int64, comment *string) (*DecisionResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.guard.AuthorizeAdmin(ctx, tx, adminID); err != nil {
			return err
		}

		txn, err := s.store.GetDonation(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != catalog.TxnPending {
			return apperr.ErrInvalidState("donation already handled")
		}

		if err := s.store.MarkDecided(ctx, tx, txnID, catalog.TxnSuccess, adminID, comment, s.clock.Now()); err != nil {
			return err
		}
		_, err = s.store.InsertCopy(ctx, tx, txn.BookID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &DecisionResponse{Message: "Donation approved and new copy added."}, nil
}

func (s *Service) RejectDonation(ctx context.Context, txnID, adminID int64, comment *string) (*DecisionResponse, error) {
	err := db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := s.guard.AuthorizeAdmin(ctx, tx, adminID); err != nil {
			return err
		}

		txn, err := s.store.GetDonation(ctx, tx, txnID)
		if err != nil {
			return err
		}
		if txn.Status != catalog.TxnPending {
			return apperr.ErrInvalidState("donation already handled")
		}
		// 却下ではコピーを作らない
		return s.store.MarkDecided(ctx, tx, txnID, catalog.TxnFailed, adminID, comment, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}
	return &DecisionResponse{Message: "Donation rejected."}, nil
}

func (s *Service) ListPending(ctx context.Context) ([]PendingDonation, error) {
	return s.store.ListPending(ctx, s.db)
}
