package apiclient

import (
	"context"
	"net/http"

	"medunit-portal/internal/domain"
	"medunit-portal/internal/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string          `json:"token"`
	Role  string          `json:"role"`
	User  *domain.Profile `json:"user,omitempty"`
}

// Login exchanges credentials for a token. The returned role is whatever the
// service reported, possibly empty.
func (c *Client) Login(ctx context.Context, email, password string) (session.LoginResult, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return session.LoginResult{}, err
	}
	role, ok := domain.ParseRole(out.Role)
	if !ok && out.User != nil {
		role = out.User.Role
	}
	return session.LoginResult{Token: out.Token, Role: role}, nil
}

var _ session.Authenticator = (*Client)(nil)

// Register creates an account. It does not sign in.
func (c *Client) Register(ctx context.Context, payload session.RegisterPayload) error {
	return c.do(ctx, http.MethodPost, "/auth/register", payload, nil)
}

// ResetTicket is what forgot-password returns outside production.
type ResetTicket struct {
	ResetToken string `json:"resetToken,omitempty" yaml:"resetToken,omitempty"`
	ResetURL   string `json:"resetUrl,omitempty" yaml:"resetUrl,omitempty"`
}

type forgotPasswordRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// ForgotPassword asks for a reset token for the account with email and role.
// An empty role means patient.
func (c *Client) ForgotPassword(ctx context.Context, email string, role domain.Role) (ResetTicket, error) {
	if role == "" {
		role = domain.RolePatient
	}
	var out ResetTicket
	err := c.do(ctx, http.MethodPost, "/auth/forgot-password", forgotPasswordRequest{Email: email, Role: role}, &out)
	return out, err
}

// ResetPassword completes a reset. The payload is validated first.
func (c *Client) ResetPassword(ctx context.Context, payload session.ResetPasswordPayload) error {
	if err := session.Validate(payload); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/auth/reset-password", payload, nil)
}

// Profile fetches the signed-in account.
func (c *Client) Profile(ctx context.Context) (domain.Profile, error) {
	var out domain.Profile
	err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out)
	return out, err
}

// ProfileOrClaim fetches the profile and falls back to the basic facts of
// claim when the endpoint fails. The bool is false on fallback.
func (c *Client) ProfileOrClaim(ctx context.Context, claim domain.IdentityClaim) (domain.Profile, bool) {
	p, err := c.Profile(ctx)
	if err == nil {
		return p, true
	}
	c.log.Warn().Err(err).Msg("profile endpoint unavailable, using basic info")
	return domain.Profile{
		ID:    claim.SubjectID,
		Name:  claim.Email,
		Email: claim.Email,
		Role:  claim.Role,
	}, false
}

// AdminStats returns the admin counters.
func (c *Client) AdminStats(ctx context.Context) (domain.Stats, error) {
	var out domain.Stats
	err := c.do(ctx, http.MethodGet, "/admin/stats", nil, &out)
	return out, err
}
