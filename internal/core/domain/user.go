package domain

import (
	"strings"
	"time"
)

// RolePrefix is prepended to every role before it is stored on a credential
// record or embedded in a token.
const RolePrefix = "ROLE_"

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
)

// User is a credential record. PasswordHash is always a bcrypt hash.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Authority returns role with RolePrefix, adding the prefix only when missing.
//
//	Authority("ADMIN")      == "ROLE_ADMIN"
//	Authority("ROLE_ADMIN") == "ROLE_ADMIN"
func Authority(role string) string {
	role = strings.TrimSpace(role)
	if role == "" || strings.HasPrefix(role, RolePrefix) {
		return role
	}
	return RolePrefix + role
}

// HasRole reports whether the authority held by a user or a token claim
// grants role.
func HasRole(claim, role string) bool {
	if claim == "" || role == "" {
		return false
	}
	return Authority(claim) == Authority(role)
}
