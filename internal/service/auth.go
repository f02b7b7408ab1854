package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/inkpost/inkpost/internal/core"
	domainauth "github.com/inkpost/inkpost/internal/domain/auth"
	"github.com/inkpost/inkpost/internal/domain/model"
	"github.com/inkpost/inkpost/internal/ports"
)

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Provider ports.AuthProvider
	Sessions ports.SessionStore
	Users    core.UserRepository

	// SessionTTL bounds session lifetime when the provider identity carries
	// no usable expiry. Defaults to 24h when zero.
	SessionTTL time.Duration
}

// AuthService orchestrates authentication flows by coordinating the identity
// provider, the user directory, and session persistence.
type AuthService struct {
	provider   ports.AuthProvider
	sessions   ports.SessionStore
	users      core.UserRepository
	sessionTTL time.Duration
}

// ErrSessionExpired reports a session past its expiry; callers treat it the
// same as a missing session.
var ErrSessionExpired = errors.New("session expired")

const defaultSessionTTL = 24 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &AuthService{
		provider:   opts.Provider,
		sessions:   opts.Sessions,
		users:      opts.Users,
		sessionTTL: ttl,
	}
}

// BeginLoginResult contains the result of beginning a login flow.
type BeginLoginResult struct {
	AuthURL string
	State   string
	Nonce   string
}

// BeginLogin initiates an authentication flow and returns the provider auth URL with state and nonce.
func (s *AuthService) BeginLogin(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if redirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	input := ports.BeginInput{RedirectURL: redirectURL}
	authURL, state, nonce, err := s.provider.Begin(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}

	return &BeginLoginResult{
		AuthURL: authURL,
		State:   state,
		Nonce:   nonce,
	}, nil
}

// CompleteLoginInput groups parameters for completing a login flow.
type CompleteLoginInput struct {
	Code  string
	State string
	Nonce string
}

// CompleteLoginResult contains the result of completing a login flow.
type CompleteLoginResult struct {
	Session domainauth.Session
	User    *model.User
}

// CompleteLogin completes an authentication flow: it exchanges the code for a
// verified identity, finds or creates the matching user record, and persists
// a session keyed to that user.
func (s *AuthService) CompleteLogin(ctx context.Context, input CompleteLoginInput) (*CompleteLoginResult, error) {
	if input.Code == "" {
		return nil, errors.New("authorization code is required")
	}
	if input.State == "" {
		return nil, errors.New("state parameter is required")
	}
	if input.Nonce == "" {
		return nil, errors.New("nonce parameter is required")
	}

	// Exchange authorization code for identity
	exchangeInput := ports.ExchangeInput{
		Code:  input.Code,
		State: input.State,
		Nonce: input.Nonce,
	}
	identity, err := s.provider.Exchange(ctx, exchangeInput)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	user, err := s.users.FindOrCreate(ctx, userRequestFromIdentity(identity))
	if err != nil {
		return nil, fmt.Errorf("find or create user: %w", err)
	}

	session := domainauth.Session{
		ID:        generateSessionID(),
		UserID:    user.ID,
		ExpiresAt: s.sessionExpiry(identity, time.Now()),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	return &CompleteLoginResult{
		Session: session,
		User:    user,
	}, nil
}

// GetSession retrieves a session by ID, evicting it when expired.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Expired(time.Now()) {
		// Clean up expired session
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, errors.Join(ErrSessionExpired, fmt.Errorf("delete session: %w", deleteErr))
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

// CurrentUser resolves the session's owning user record.
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve session user: %w", err)
	}
	return user, nil
}

// Logout removes a session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil // Nothing to logout
	}

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// sessionExpiry prefers the identity's own expiry, falling back to the
// configured TTL when the provider reported none or one already in the past.
func (s *AuthService) sessionExpiry(identity domainauth.Identity, now time.Time) time.Time {
	if !identity.ExpiresAt.IsZero() && identity.ExpiresAt.After(now) {
		return identity.ExpiresAt
	}
	return now.Add(s.sessionTTL)
}

func userRequestFromIdentity(identity domainauth.Identity) *model.NewUserRequest {
	req := &model.NewUserRequest{
		ExternalID: identity.Subject,
		Email:      identity.Email,
		Name:       identity.Name,
	}
	if req.Name == "" {
		req.Name = identity.Email
	}
	if identity.AvatarURL != "" {
		avatar := identity.AvatarURL
		req.AvatarURL = &avatar
	}
	return req
}

// generateSessionID creates a cryptographically secure random session ID.
func generateSessionID() string {
	// Use UUID for session ID - it's URL-safe and has good entropy
	id := uuid.New()
	return id.String()
}
