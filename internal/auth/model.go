package auth

import (
	"fmt"
	"time"

	"github.com/kopiteras/cafe/internal/account"
)

// Snapshot is the minimal account view produced by a successful login. It never
// carries avatar data so that the session token built from it stays small.
type Snapshot struct {
	ID    int64
	Email string
	Name  string
	Role  account.Role
}

// Identity is the authorization decision stored in the request context after
// the session token has been resolved.
type Identity struct {
	AccountID   int64
	Email       string
	Name        string
	Role        account.Role
	ImageMarker int64 // avatar cache-busting marker, unix millis
	TokenID     string // jti of the token the identity was parsed from
	ExpiresAt   time.Time
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == account.RoleAdmin
}

// Snapshot returns the identity fields needed to re-issue a session.
func (i *Identity) Snapshot() Snapshot {
	return Snapshot{ID: i.AccountID, Email: i.Email, Name: i.Name, Role: i.Role}
}

// AvatarURL is the authenticated avatar endpoint, versioned by the image marker.
func (i *Identity) AvatarURL() string {
	return fmt.Sprintf("/api/profile/image?t=%d", i.ImageMarker)
}

// Session is a freshly issued session token together with the identity it encodes.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Identity  *Identity
}

// Profile is a normalized identity asserted by a federated provider.
type Profile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// SignUpRequest holds the fields accepted when creating a password account.
type SignUpRequest struct {
	Email    string
	Password string
	Name     string
}
