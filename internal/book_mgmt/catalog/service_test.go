package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiadda-backend/internal/book_mgmt/borrows"
	"boiadda-backend/internal/book_mgmt/catalog"
	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db/dbtest"
)

func TestListBooksCountsOnlyAvailableCopies(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := dbtest.Ctx(t)
	svc := catalog.NewService(conn)

	userRole := dbtest.InsertRole(t, conn, "user", "Regular User")
	holder := dbtest.InsertMember(t, conn, "Rahim", "rahim@example.com", userRole)

	bookID := dbtest.InsertBook(t, conn, "Himu", "Humayun Ahmed", "9789848000002")
	dbtest.InsertCopy(t, conn, bookID, "available")
	borrowedCopy := dbtest.InsertCopy(t, conn, bookID, "borrowed")
	dbtest.InsertCopy(t, conn, bookID, "lost")
	_, err := conn.Exec(`UPDATE book_copies SET holder_id = ? WHERE copy_id = ?`, holder, borrowedCopy)
	require.NoError(t, err)

	emptyBook := dbtest.InsertBook(t, conn, "Chander Alo", "Anisuzzaman", "9789848000004")

	infos, err := svc.ListBooks(ctx, nil)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, bookID, infos[0].BookID)
	assert.Equal(t, 1, infos[0].AvailableCopies, "borrowed and lost copies do not count")
	assert.True(t, infos[0].CanBorrow)

	assert.Equal(t, emptyBook, infos[1].BookID)
	assert.Equal(t, 0, infos[1].AvailableCopies)
}

func TestListBooksCanBorrowReflectsOpenAndPending(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := dbtest.Ctx(t)
	svc := catalog.NewService(conn)

	adminRole := dbtest.InsertRole(t, conn, "admin", "Administrator")
	userRole := dbtest.InsertRole(t, conn, "user", "Regular User")
	adminID := dbtest.InsertMember(t, conn, "Admin", "admin@example.com", adminRole)
	userID := dbtest.InsertMember(t, conn, "Rahim", "rahim@example.com", userRole)

	bookID := dbtest.InsertBook(t, conn, "Himu", "Humayun Ahmed", "9789848000002")
	dbtest.InsertCopy(t, conn, bookID, "available")
	dbtest.InsertCopy(t, conn, bookID, "available")

	borrowSvc := borrows.NewService(conn, members.NewGuard())

	// pending の時点で can_borrow は false になる
	created, err := borrowSvc.RequestBorrow(ctx, userID, bookID)
	require.NoError(t, err)

	infos, err := svc.ListBooks(ctx, &userID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.False(t, infos[0].CanBorrow)
	assert.Equal(t, 2, infos[0].AvailableCopies, "pending does not consume a copy")

	// 他の会員からは借りられるように見える
	infos, err = svc.ListBooks(ctx, &adminID)
	require.NoError(t, err)
	assert.True(t, infos[0].CanBorrow)

	// 承認後も false のまま、返却で true に戻る
	_, err = borrowSvc.ApproveBorrow(ctx, created.TxnID, adminID, nil)
	require.NoError(t, err)

	infos, err = svc.ListBooks(ctx, &userID)
	require.NoError(t, err)
	assert.False(t, infos[0].CanBorrow)
	assert.Equal(t, 1, infos[0].AvailableCopies)

	_, err = borrowSvc.ReturnCopy(ctx, userID, nil)
	require.NoError(t, err)

	infos, err = svc.ListBooks(ctx, &userID)
	require.NoError(t, err)
	assert.True(t, infos[0].CanBorrow)
	assert.Equal(t, 2, infos[0].AvailableCopies)
}

func TestGetBookNotFound(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := dbtest.Ctx(t)
	svc := catalog.NewService(conn)

	_, err := svc.GetBook(ctx, 42)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
