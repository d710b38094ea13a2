package seed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiadda-backend/internal/platform/db/dbtest"
)

func TestRunSeedsConsistentDemoData(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := dbtest.Ctx(t)

	require.NoError(t, Run(ctx, conn))

	var roles, memberCount, books, copies int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&roles))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&memberCount))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&books))
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM book_copies`).Scan(&copies))
	assert.Equal(t, 3, roles)
	assert.Equal(t, 7, memberCount)
	assert.Equal(t, 6, books)
	assert.Equal(t, 13, copies)

	// 貸出中コピーは必ず open な success トランザクションと対になる
	var borrowed, open int
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM book_copies WHERE status = 'borrowed'`).Scan(&borrowed))
	require.NoError(t, conn.QueryRow(
		`SELECT COUNT(*) FROM borrow_transactions WHERE status = 'success' AND return_date IS NULL`).Scan(&open))
	assert.Equal(t, 3, borrowed)
	assert.Equal(t, borrowed, open)

	var mismatched int
	require.NoError(t, conn.QueryRow(`
		SELECT COUNT(*) FROM book_copies c
		WHERE c.status = 'borrowed' AND NOT EXISTS (
			SELECT 1 FROM borrow_transactions t
			WHERE t.copy_id = c.copy_id AND t.member_id = c.holder_id
			  AND t.status = 'success' AND t.return_date IS NULL
		)`).Scan(&mismatched))
	assert.Zero(t, mismatched)
}

func TestRunIsIdempotent(t *testing.T) {
	conn := dbtest.Open(t)
	ctx := dbtest.Ctx(t)

	require.NoError(t, Run(ctx, conn))
	require.NoError(t, Run(ctx, conn))

	var memberCount int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM members`).Scan(&memberCount))
	assert.Equal(t, 7, memberCount)
}
