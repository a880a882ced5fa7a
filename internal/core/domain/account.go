package domain

import "time"

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Account is a person able to authenticate against the API.
type Account struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
	Verified     bool   `json:"verified"`

	ResetTokenHash        string     `json:"-"`
	ResetExpiresAt        *time.Time `json:"-"`
	VerificationTokenHash string     `json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Identity returns the authenticated view of the account.
func (a *Account) Identity() Identity {
	return Identity{AccountID: a.ID, Email: a.Email, Role: a.Role}
}

// Identity is the caller resolved from a verified bearer token.
type Identity struct {
	AccountID string
	Email     string
	Role      Role
}

// IsZero reports whether the identity is anonymous.
func (i Identity) IsZero() bool {
	return i.AccountID == ""
}

// CanManage reports whether the caller may mutate a resource created by ownerID.
func (i Identity) CanManage(ownerID string) bool {
	return i.Role == RoleAdmin || (ownerID != "" && i.AccountID == ownerID)
}
