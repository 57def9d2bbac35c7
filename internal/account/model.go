package account

import "time"

// Role is the coarse permission tag carried by an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account represents a row in the users table.
type Account struct {
	ID             int64
	Email          string
	Name           *string
	PasswordHash   *string // nil for federated-only accounts
	Role           Role
	Image          *string // URL or data: URI
	EmailVerified  *time.Time
	ImageUpdatedAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DisplayName returns the account name or an empty string.
func (a *Account) DisplayName() string {
	if a.Name == nil {
		return ""
	}
	return *a.Name
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// ProfileUpdate holds the mutable profile fields. A nil Image leaves the stored avatar untouched.
type ProfileUpdate struct {
	Name  string
	Image *string
}
