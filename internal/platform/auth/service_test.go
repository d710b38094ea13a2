package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db/dbtest"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn := dbtest.Open(t)
	dbtest.InsertRole(t, conn, "admin", "Administrator")
	dbtest.InsertRole(t, conn, "user", "Moderator")
	dbtest.InsertRole(t, conn, "user", "Regular User")
	return NewService(conn, testSecret, time.Hour)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now().UTC()
	raw, err := NewToken(testSecret, 42, "admin", time.Hour, now)
	require.NoError(t, err)

	claims, err := parseToken(testSecret, raw)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, err = parseToken([]byte("wrong-secret"), raw)
	assert.Error(t, err)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	past := time.Now().UTC().Add(-2 * time.Hour)
	raw, err := NewToken(testSecret, 42, "user", time.Hour, past)
	require.NoError(t, err)

	_, err = parseToken(testSecret, raw)
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := dbtest.Ctx(t)

	phone := "01722220002"
	resp, err := svc.Register(ctx, RegisterRequest{
		Name:     "Rahim",
		Email:    "rahim@example.com",
		Phone:    &phone,
		Password: "userpass1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "user", resp.User.RoleName, "registrations get the regular user role")

	// パスワードは平文で保存されない
	var hash string
	require.NoError(t, svc.db.QueryRow(
		`SELECT password_hash FROM members WHERE email = ?`, "rahim@example.com").Scan(&hash))
	assert.NotEqual(t, "userpass1", hash)

	login, err := svc.Login(ctx, LoginRequest{Email: "rahim@example.com", Password: "userpass1"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.MemberID, login.User.MemberID)

	claims, err := parseToken(testSecret, login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user", claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := dbtest.Ctx(t)

	req := RegisterRequest{Name: "Rahim", Email: "rahim@example.com", Password: "userpass1"}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := dbtest.Ctx(t)

	_, err := svc.Register(ctx, RegisterRequest{Name: "Rahim", Email: "rahim@example.com", Password: "userpass1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "rahim@example.com", Password: "nope"})
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))

	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "userpass1"})
	assert.Equal(t, apperr.CodeUnauthorized, apperr.CodeOf(err))
}

func TestMe(t *testing.T) {
	svc := newTestService(t)
	ctx := dbtest.Ctx(t)

	resp, err := svc.Register(ctx, RegisterRequest{Name: "Rahim", Email: "rahim@example.com", Password: "userpass1"})
	require.NoError(t, err)

	info, err := svc.Me(ctx, resp.User.MemberID)
	require.NoError(t, err)
	assert.Equal(t, "Rahim", info.Name)
	assert.Equal(t, "rahim@example.com", info.Email)

	_, err = svc.Me(ctx, 9999)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
}
