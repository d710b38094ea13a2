package borrows

import (
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db/dbtest"
)

type stubClock struct{ now time.Time }

func (c *stubClock) Now() time.Time { return c.now }

func (c *stubClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	conn    *sql.DB
	svc     *Service
	clock   *stubClock
	adminID int64
	userID  int64
	otherID int64
	bookID  int64
	copyIDs []int64
}

func newFixture(t *testing.T, copies int) *fixture {
	t.Helper()
	conn := dbtest.Open(t)

	adminRole := dbtest.InsertRole(t, conn, "admin", "Administrator")
	userRole := dbtest.InsertRole(t, conn, "user", "Regular User")

	f := &fixture{
		conn:    conn,
		clock:   &stubClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		adminID: dbtest.InsertMember(t, conn, "Admin", "admin@example.com", adminRole),
		userID:  dbtest.InsertMember(t, conn, "Rahim", "rahim@example.com", userRole),
		otherID: dbtest.InsertMember(t, conn, "Tanvir", "tanvir@example.com", userRole),
		bookID:  dbtest.InsertBook(t, conn, "Himu", "Humayun Ahmed", "9789848000002"),
	}
	for i := 0; i < copies; i++ {
		f.copyIDs = append(f.copyIDs, dbtest.InsertCopy(t, conn, f.bookID, "available"))
	}

	f.svc = NewService(conn, members.NewGuard())
	f.svc.clock = f.clock
	return f
}

// borrowedMatchesOpenTxns cross-checks the copy table against the transaction
// log: every borrowed copy has exactly one open success transaction.
func borrowedMatchesOpenTxns(t *testing.T, conn *sql.DB) {
	t.Helper()
	var borrowed, open int
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM book_copies WHERE status = 'borrowed'`).Scan(&borrowed))
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM borrow_transactions WHERE status = 'success' AND return_date IS NULL`).Scan(&open))
	assert.Equal(t, borrowed, open, "borrowed copies must match open success transactions")
}

func TestRequestBorrowCreatesPendingWithoutTouchingCopy(t *testing.T) {
	f := newFixture(t, 2)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	assert.NotZero(t, resp.TxnID)
	assert.Len(t, resp.TxnULID, 26)
	assert.Equal(t, f.copyIDs[0], resp.CopyID, "lowest copy id wins")

	status, holder := dbtest.CopyState(t, f.conn, resp.CopyID)
	assert.Equal(t, "available", status, "copy must stay available while pending")
	assert.False(t, holder.Valid)

	txn, err := f.svc.store.GetBorrow(ctx, f.conn, resp.TxnID)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(txn.Status))
	assert.WithinDuration(t, f.clock.now.Add(14*24*time.Hour), txn.DueDate, time.Second)
	borrowedMatchesOpenTxns(t, f.conn)
}

func TestRequestBorrowRejectsDuplicate(t *testing.T) {
	f := newFixture(t, 2)
	ctx := dbtest.Ctx(t)

	_, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	_, err = f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	assert.Equal(t, apperr.CodeDuplicateRequest, apperr.CodeOf(err))
}

func TestRequestBorrowNoAvailableCopy(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	// 唯一のコピーを貸出中にする
	_, err := f.conn.Exec(`UPDATE book_copies SET status = 'borrowed', holder_id = ? WHERE copy_id = ?`,
		f.otherID, f.copyIDs[0])
	require.NoError(t, err)

	_, err = f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	assert.Equal(t, apperr.CodeNoAvailableCopy, apperr.CodeOf(err))
}

func TestRequestBorrowUnknownMemberAndBook(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	_, err := f.svc.RequestBorrow(ctx, 9999, f.bookID)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))

	_, err = f.svc.RequestBorrow(ctx, f.userID, 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestApproveBorrowReservesCopy(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	comment := "enjoy"
	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.adminID, &comment)
	require.NoError(t, err)

	status, holder := dbtest.CopyState(t, f.conn, resp.CopyID)
	assert.Equal(t, "borrowed", status)
	require.True(t, holder.Valid)
	assert.Equal(t, f.userID, holder.Int64)

	txn, err := f.svc.store.GetBorrow(ctx, f.conn, resp.TxnID)
	require.NoError(t, err)
	assert.Equal(t, "success", string(txn.Status))
	require.True(t, txn.AdminID.Valid)
	assert.Equal(t, f.adminID, txn.AdminID.Int64)
	require.True(t, txn.AdminComment.Valid)
	assert.Equal(t, "enjoy", txn.AdminComment.String)
	borrowedMatchesOpenTxns(t, f.conn)
}

func TestApproveBorrowRequiresAdminRole(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.otherID, nil)
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

	// ロールバックされているので pending のまま
	txn, err := f.svc.store.GetBorrow(ctx, f.conn, resp.TxnID)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(txn.Status))
}

func TestDecideTwiceIsInvalidState(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.adminID, nil)
	require.NoError(t, err)

	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.adminID, nil)
	assert.Equal(t, apperr.CodeInvalidState, apperr.CodeOf(err))

	_, err = f.svc.RejectBorrow(ctx, resp.TxnID, f.adminID, nil)
	assert.Equal(t, apperr.CodeInvalidState, apperr.CodeOf(err))
}

func TestRejectBorrowLeavesCopyUntouched(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	comment := "out of rotation"
	_, err = f.svc.RejectBorrow(ctx, resp.TxnID, f.adminID, &comment)
	require.NoError(t, err)

	status, holder := dbtest.CopyState(t, f.conn, resp.CopyID)
	assert.Equal(t, "available", status)
	assert.False(t, holder.Valid)

	txn, err := f.svc.store.GetBorrow(ctx, f.conn, resp.TxnID)
	require.NoError(t, err)
	assert.Equal(t, "failed", string(txn.Status))

	// 却下後は同じ本をまた申請できる
	_, err = f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	assert.NoError(t, err)
}

func TestApproveLoserGetsCopyUnavailable(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	// 2人の会員が同じ唯一のコピーに pending で紐づく
	first, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	second, err := f.svc.RequestBorrow(ctx, f.otherID, f.bookID)
	require.NoError(t, err)
	require.Equal(t, first.CopyID, second.CopyID)

	_, err = f.svc.ApproveBorrow(ctx, first.TxnID, f.adminID, nil)
	require.NoError(t, err)

	_, err = f.svc.ApproveBorrow(ctx, second.TxnID, f.adminID, nil)
	assert.Equal(t, apperr.CodeCopyUnavailable, apperr.CodeOf(err))

	// 負けた方はロールバックされて pending のまま、却下はできる
	txn, err := f.svc.store.GetBorrow(ctx, f.conn, second.TxnID)
	require.NoError(t, err)
	assert.Equal(t, "pending", string(txn.Status))

	_, err = f.svc.RejectBorrow(ctx, second.TxnID, f.adminID, nil)
	assert.NoError(t, err)
	borrowedMatchesOpenTxns(t, f.conn)
}

func TestConcurrentApprovalsExactlyOneWins(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	first, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	second, err := f.svc.RequestBorrow(ctx, f.otherID, f.bookID)
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	for i, id := range []int64{first.TxnID, second.TxnID} {
		go func(i int, txnID int64) {
			defer wg.Done()
			_, errs[i] = f.svc.ApproveBorrow(ctx, txnID, f.adminID, nil)
		}(i, id)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperr.CodeOf(err) == apperr.CodeCopyUnavailable:
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
	borrowedMatchesOpenTxns(t, f.conn)
}

func TestReturnRoundTrip(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.adminID, nil)
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	ret, err := f.svc.ReturnCopy(ctx, f.userID, &resp.CopyID)
	require.NoError(t, err)
	assert.Equal(t, resp.CopyID, ret.CopyID)

	status, holder := dbtest.CopyState(t, f.conn, resp.CopyID)
	assert.Equal(t, "available", status)
	assert.False(t, holder.Valid)

	txn, err := f.svc.store.GetBorrow(ctx, f.conn, resp.TxnID)
	require.NoError(t, err)
	require.True(t, txn.ReturnDate.Valid)

	// 返却後は再び借りられる
	_, err = f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	assert.NoError(t, err)
	borrowedMatchesOpenTxns(t, f.conn)
}

func TestReturnWithoutCopyPicksEarliest(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)
	secondBook := dbtest.InsertBook(t, f.conn, "Ajob Dunia", "Zafar Iqbal", "9789848000001")
	secondCopy := dbtest.InsertCopy(t, f.conn, secondBook, "available")

	first, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	_, err = f.svc.ApproveBorrow(ctx, first.TxnID, f.adminID, nil)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	second, err := f.svc.RequestBorrow(ctx, f.userID, secondBook)
	require.NoError(t, err)
	require.Equal(t, secondCopy, second.CopyID)
	_, err = f.svc.ApproveBorrow(ctx, second.TxnID, f.adminID, nil)
	require.NoError(t, err)

	ret, err := f.svc.ReturnCopy(ctx, f.userID, nil)
	require.NoError(t, err)
	assert.Equal(t, first.CopyID, ret.CopyID, "earliest open borrow is returned first")
}

func TestReturnWithNothingOpen(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	_, err := f.svc.ReturnCopy(ctx, f.userID, nil)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}

func TestListPendingIncludesRequesterAndBook(t *testing.T) {
	f := newFixture(t, 2)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	p := pending[0]
	assert.Equal(t, resp.TxnID, p.TxnID)
	assert.Equal(t, "Rahim", p.Member.Name)
	assert.Equal(t, "Himu", p.Book.Title)
	assert.Equal(t, 2, p.Book.AvailableCopies)
}

func TestListBorrowedBooksOverdueFlag(t *testing.T) {
	f := newFixture(t, 1)
	ctx := dbtest.Ctx(t)

	resp, err := f.svc.RequestBorrow(ctx, f.userID, f.bookID)
	require.NoError(t, err)
	_, err = f.svc.ApproveBorrow(ctx, resp.TxnID, f.adminID, nil)
	require.NoError(t, err)

	books, err := f.svc.ListBorrowedBooks(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.False(t, books[0].IsOverdue)

	f.clock.Advance(15 * 24 * time.Hour)
	books, err = f.svc.ListBorrowedBooks(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.True(t, books[0].IsOverdue)
}
