// Package session owns the portal's notion of who is signed in. A Store is the
// only writer of the session; the access gate and the views only read
// snapshots of it.
package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medunit-portal/internal/credential"
	"medunit-portal/internal/domain"
)

// LoginResult is what the credential issuer hands back on a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	Role  domain.Role `json:"role,omitempty"`
}

// Authenticator is the remote side of login and registration.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (LoginResult, error)
	Register(ctx context.Context, payload RegisterPayload) error
}

// Store holds the current identity claim and the readiness flag.
type Store struct {
	tokens TokenStore
	auth   Authenticator
	now    func() time.Time
	log    zerolog.Logger

	initOnce sync.Once

	mu    sync.RWMutex
	claim *domain.IdentityClaim
	token string
	ready bool
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(tokens TokenStore, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		tokens: tokens,
		auth:   auth,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted token once per process. A token that cannot
// be decoded, or whose expiry has passed, is removed from storage. The store
// is ready when Initialize returns, whatever the outcome; the returned error
// only reports storage trouble.
func (s *Store) Initialize(ctx context.Context) error {
	var err error
	s.initOnce.Do(func() {
		err = s.load()
	})
	return err
}

func (s *Store) load() error {
	defer func() {
		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
	}()

	token, ok, err := s.tokens.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("could not read stored credential")
		return err
	}
	if !ok {
		return nil
	}

	claim, valid := credential.Decode(token)
	if valid && claim.Expired(s.now()) {
		s.log.Debug().Str("subject", claim.SubjectID).Msg("stored credential expired")
		valid = false
	}
	if !valid {
		if err := s.tokens.Delete(); err != nil {
			s.log.Warn().Err(err).Msg("could not remove unreadable credential")
			return err
		}
		return nil
	}

	s.mu.Lock()
	s.claim = claim
	s.token = token
	s.mu.Unlock()
	s.log.Debug().Str("subject", claim.SubjectID).Str("role", string(claim.Role)).Msg("session restored")
	return nil
}

// Login asks the issuer for a credential, persists it and replaces the
// current claim. On any failure the session is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) (*domain.IdentityClaim, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, &domain.AuthError{Reason: "email and password are required"}
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, &domain.AuthError{Reason: "login failed", Err: err}
	}

	claim, ok := credential.DecodeWithRole(res.Token, res.Role)
	if !ok {
		return nil, &domain.AuthError{Reason: "issuer returned an unreadable credential"}
	}
	if claim.Email == "" {
		claim.Email = email
	}

	if err := s.tokens.Save(res.Token); err != nil {
		return nil, &domain.AuthError{Reason: "could not persist credential", Err: err}
	}

	s.mu.Lock()
	s.claim = claim
	s.token = res.Token
	s.mu.Unlock()

	s.log.Info().Str("subject", claim.SubjectID).Str("role", string(claim.Role)).Msg("logged in")
	c := *claim
	return &c, nil
}

// Logout forgets the credential. Calling it again is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.claim = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.tokens.Delete(); err != nil {
		s.log.Warn().Err(err).Msg("could not remove stored credential")
		return err
	}
	return nil
}

// Register creates an account. It does not sign the new account in.
func (s *Store) Register(ctx context.Context, payload RegisterPayload) error {
	if err := Validate(payload); err != nil {
		return err
	}
	return s.auth.Register(ctx, payload)
}

// Session returns a snapshot of the current state.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := domain.Session{Ready: s.ready}
	if s.claim != nil {
		c := *s.claim
		out.Claim = &c
	}
	return out
}

// Token returns the raw credential for authenticating remote calls, or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
