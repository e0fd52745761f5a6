package identity

import "time"

const (
	// RoleNormal is a regular account.
	RoleNormal = "normal"
	// RoleAdmin can manage other accounts and inspect the full ledger.
	RoleAdmin = "admin"
)

// User represents a registered wallet owner.
type User struct {
	ID                string
	Username          string
	FullName          string
	Email             string
	Phone             string
	PasswordHash      []byte
	Role              string
	GeneratedPassword bool
	CreatedAt         time.Time
}
