package activity

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 50
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type Service struct {
	db      *sql.DB
	store   *Store
	members *members.Store
	clock   Clock
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn, store: NewStore(), members: members.NewStore(), clock: realClock{}}
}

// RecentActivities merges approved borrows, approved donations, returns and
// new member registrations into one time-descending feed, capped to limit.
// Pure read-side composition; every event maps to a persisted row.
func (s *Service) RecentActivities(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultFeedLimit
	}
	if limit > maxFeedLimit {
		limit = maxFeedLimit
	}

	var events []Event

	borrows, err := s.store.RecentBorrows(ctx, s.db, limit/2)
	if err != nil {
		return nil, err
	}
	for _, r := range borrows {
		events = append(events, feedEvent("borrow", r, fmt.Sprintf("%s borrowed %q", r.MemberName, r.BookTitle)))
	}

	donations, err := s.store.RecentDonations(ctx, s.db, limit/2)
	if err != nil {
		return nil, err
	}
	for _, r := range donations {
		events = append(events, feedEvent("donation", r, fmt.Sprintf("%s donated %q", r.MemberName, r.BookTitle)))
	}

	returns, err := s.store.RecentReturns(ctx, s.db, limit/4)
	if err != nil {
		return nil, err
	}
	for _, r := range returns {
		events = append(events, feedEvent("return", r, fmt.Sprintf("%s returned %q", r.MemberName, r.BookTitle)))
	}

	newMembers, err := s.store.RecentMembers(ctx, s.db, limit/4)
	if err != nil {
		return nil, err
	}
	for _, r := range newMembers {
		ev := Event{
			ID:          fmt.Sprintf("member_%d", r.RowID),
			Type:        "member",
			Description: fmt.Sprintf("%s joined as a new member", r.MemberName),
			Timestamp:   r.At,
		}
		name := r.MemberName
		ev.MemberName = &name
		events = append(events, ev)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func feedEvent(kind string, r feedRow, desc string) Event {
	ev := Event{
		ID:          fmt.Sprintf("%s_%d", kind, r.RowID),
		Type:        kind,
		Description: desc,
		Timestamp:   r.At,
	}
	name, title := r.MemberName, r.BookTitle
	ev.MemberName = &name
	ev.BookTitle = &title
	return ev
}

// MemberStatistics builds a member's full borrow/donation history with
// display statuses and aggregate counters, all derived from live rows.
func (s *Service) MemberStatistics(ctx context.Context, memberID int64) (*Statistics, error) {
	ok, err := s.members.MemberExists(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrNotFound("member not found")
	}

	now := s.clock.Now()
	stats := &Statistics{
		BorrowedBooks: []BorrowRecord{},
		DonatedBooks:  []DonationRecord{},
	}

	borrowRows, err := s.store.BorrowHistory(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	for _, r := range borrowRows {
		rec := BorrowRecord{
			TxnID:        r.TxnID,
			BookTitle:    r.Title,
			BookAuthor:   r.Author,
			BookCategory: r.Category,
			CopyID:       r.CopyID,
			BorrowedDate: r.CreatedAt,
		}
		if r.AdminComment.Valid {
			v := r.AdminComment.String
			rec.AdminComment = &v
		}
		if r.ReturnDate.Valid {
			v := r.ReturnDate.Time
			rec.ReturnDate = &v
		}

		isCurrent := r.Status == catalog.TxnSuccess && !r.ReturnDate.Valid
		// 返却済みなら期限超過とは見なさない
		rec.IsOverdue = isCurrent && now.After(r.DueDate)

		switch r.Status {
		case catalog.TxnSuccess:
			stats.TotalBorrowed++
			due := r.DueDate
			rec.DueDate = &due
			if isCurrent {
				stats.CurrentBorrowed++
				rec.Status = "Current"
			} else {
				rec.Status = "Returned"
			}
		case catalog.TxnPending:
			stats.PendingBorrowRequests++
			rec.Status = "Pending"
		case catalog.TxnFailed:
			stats.RejectedBorrowRequests++
			rec.Status = "Rejected"
		}
		if rec.IsOverdue {
			stats.OverdueBooks++
			rec.Status = "Overdue"
		}

		stats.BorrowedBooks = append(stats.BorrowedBooks, rec)
	}

	donationRows, err := s.store.DonationHistory(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	for _, r := range donationRows {
		rec := DonationRecord{
			TxnID:        r.TxnID,
			BookTitle:    r.Title,
			BookAuthor:   r.Author,
			BookCategory: r.Category,
			DonationDate: r.CreatedAt,
		}
		if r.AdminComment.Valid {
			v := r.AdminComment.String
			rec.AdminComment = &v
		}

		switch r.Status {
		case catalog.TxnSuccess:
			stats.TotalDonated++
			rec.Status = "Approved"
			rec.CopiesAdded = 1
		case catalog.TxnPending:
			stats.PendingDonationRequests++
			rec.Status = "Pending"
		case catalog.TxnFailed:
			stats.RejectedDonationRequests++
			rec.Status = "Rejected"
		}

		stats.DonatedBooks = append(stats.DonatedBooks, rec)
	}

	return stats, nil
}
