package members

import (
	"database/sql"
	"time"
)

// RoleTag is the closed set of member roles.
type RoleTag string

const (
	RoleAdmin RoleTag = "admin"
	RoleUser  RoleTag = "user"
)

// Member は members テーブルの1行（ロール名をJOIN済み）
type Member struct {
	MemberID     int64
	Name         string
	Email        string
	Phone        sql.NullString
	PasswordHash string
	RoleID       int64
	RoleName     RoleTag
	CreatedAt    time.Time
}
