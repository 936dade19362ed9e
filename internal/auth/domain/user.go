package domain

import "time"

// Role is the access profile assigned to a user at registration.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleClinician Role = "clinician"
	RoleStaff     Role = "staff"
)

// Valid reports whether the role is one of the known profiles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClinician, RoleStaff:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID               string
	Name             string
	Email            string // stored lowercase
	PasswordHash     string // argon2 encoded
	Role             Role
	CRM              *string // professional registration number (nullable, unique)
	Phone            *string
	TwoFactorEnabled bool
	TwoFactorSecret  *string // TOTP secret (nullable, base32 encoded)
	IsActive         bool
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TwoFactorState derives the enrollment state from the secret and enabled
// flag. A stored secret with the flag off means enrollment is pending
// verification.
type TwoFactorState string

const (
	TwoFactorDisabled TwoFactorState = "disabled"
	TwoFactorPending  TwoFactorState = "pending_verification"
	TwoFactorEnabled  TwoFactorState = "enabled"
)

func (u *User) TwoFactorState() TwoFactorState {
	switch {
	case u.TwoFactorEnabled:
		return TwoFactorEnabled
	case u.TwoFactorSecret != nil:
		return TwoFactorPending
	default:
		return TwoFactorDisabled
	}
}
