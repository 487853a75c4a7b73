// Package credential reads identity claims out of credential tokens issued by
// the portal API. It never verifies signatures: the client has no secret, so
// every decision made from a decoded claim is advisory and is enforced again
// by the server.
package credential

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"medunit-portal/internal/domain"
)

// payload is the subset of the token body the portal understands.
// Older issuers put the subject under "_id".
type payload struct {
	ID     string  `json:"id"`
	AltID  string  `json:"_id"`
	Role   string  `json:"role"`
	Email  string  `json:"email"`
	Expiry float64 `json:"exp"`
}

var parser = jwt.NewParser(jwt.WithPaddingAllowed())

// Decode extracts the identity claim from token. It reports false for any
// token that cannot be read: fewer than two segments, a payload that is not
// base64url, a payload that is not JSON, a missing subject or a role outside
// the known set. Decode has no side effects.
func Decode(token string) (*domain.IdentityClaim, bool) {
	return DecodeWithRole(token, "")
}

// DecodeWithRole is Decode with the role taken from role when it is valid.
// The payload role is only consulted otherwise, so a payload without a role
// is readable as long as role is set.
func DecodeWithRole(token string, role domain.Role) (*domain.IdentityClaim, bool) {
	segments := strings.Split(strings.TrimSpace(token), ".")
	if len(segments) < 2 {
		return nil, false
	}

	raw, err := parser.DecodeSegment(segments[1])
	if err != nil {
		return nil, false
	}

	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}

	subject := p.ID
	if subject == "" {
		subject = p.AltID
	}
	if !role.Valid() {
		var ok bool
		if role, ok = domain.ParseRole(p.Role); !ok {
			return nil, false
		}
	}
	if subject == "" {
		return nil, false
	}

	claim := &domain.IdentityClaim{
		SubjectID: subject,
		Role:      role,
		Email:     p.Email,
	}
	if p.Expiry > 0 {
		claim.ExpiresAt = time.Unix(int64(p.Expiry), 0)
	}
	return claim, true
}
