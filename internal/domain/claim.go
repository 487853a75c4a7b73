package domain

import "time"

// IdentityClaim is the unverified set of facts decoded from a credential token.
type IdentityClaim struct {
	SubjectID string    `json:"id"`
	Role      Role      `json:"role"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the claim carries an expiry that is not after now.
// A claim without an expiry never expires on the client.
func (c IdentityClaim) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Session is the client's view of who is signed in.
// Ready flips to true once the initial load attempt has finished.
type Session struct {
	Claim *IdentityClaim
	Ready bool
}

// Authenticated reports whether the session is ready and holds a claim.
func (s Session) Authenticated() bool {
	return s.Ready && s.Claim != nil
}

// HasRole reports whether the session is authenticated as one of roles.
func (s Session) HasRole(roles ...Role) bool {
	return s.Authenticated() && s.Claim.Role.In(roles...)
}
