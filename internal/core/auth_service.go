package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/collex/internal/identity"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
	"github.com/example/collex/pkg/mailer"
)

// AuthObserver counts auth events by kind.
type AuthObserver interface {
	ObserveAuth(event string)
}

// AuthConfig holds the auth policy.
type AuthConfig struct {
	AllowedDomain string
	SessionTTL    time.Duration
}

// authService implements the AuthService interface.
type authService struct {
	provider IdentityProvider
	sessions SessionStore
	events   AuthEventPublisher
	mailer   mailer.Mailer
	observer AuthObserver
	cfg      AuthConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new AuthService instance. observer may be nil.
func NewAuthService(
	provider IdentityProvider,
	sessions SessionStore,
	events AuthEventPublisher,
	m mailer.Mailer,
	observer AuthObserver,
	cfg AuthConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		provider: provider,
		sessions: sessions,
		events:   events,
		mailer:   m,
		observer: observer,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SignUp creates an account for an allowed email and mails the
// verification link. Form errors are reported before the provider is called.
func (s *authService) SignUp(ctx context.Context, req models.SignUpRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateSignUp(req, s.cfg.AllowedDomain); err != nil {
		return err
	}

	user, err := s.provider.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return fmt.Errorf("%w: %v", ErrEmailRegistered, err)
		}
		return fmt.Errorf("sign up failed: %w", err)
	}
	s.logger.Info("Account created", zap.String("userID", user.ID))
	s.observe("signup")

	link, err := s.provider.EmailVerificationLink(ctx, req.Email)
	if err != nil {
		s.logger.Warn("Failed to generate verification link", zap.String("userID", user.ID), zap.Error(err))
		return nil
	}
	err = s.mailer.Send(ctx, mailer.Message{
		To:      req.Email,
		Subject: "Confirm your Collex account",
		Body:    "Confirm your email address to start using Collex:\n\n" + link,
	})
	if err != nil {
		s.logger.Warn("Failed to send verification mail", zap.String("userID", user.ID), zap.Error(err))
	}
	return nil
}

// SignIn verifies the password, stores a session for sessionID and publishes
// SIGNED_IN. The session is not stored if ctx ends before the provider replies.
func (s *authService) SignIn(ctx context.Context, sessionID string, req models.SignInRequest) error {
	email := strings.TrimSpace(req.Email)
	if !EmailAllowed(email, s.cfg.AllowedDomain) {
		return &DomainError{Domain: s.cfg.AllowedDomain}
	}

	creds, err := s.provider.SignIn(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.observe("signin_failed")
			return ErrInvalidCredentials
		}
		return fmt.Errorf("sign in failed: %w", err)
	}
	cookie, err := s.provider.CreateSessionCookie(ctx, creds.IDToken, s.cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	user := creds.User
	sess := &models.Session{
		ID:            sessionID,
		User:          user,
		SessionCookie: cookie,
		ExpiresAt:     s.now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.logger.Info("User signed in", zap.String("userID", user.ID))
	s.observe(string(session.EventSignedIn))
	return s.events.Publish(ctx, session.Event{
		Kind: session.EventSignedIn, SessionID: sessionID, User: &user, ExpiresAt: sess.ExpiresAt,
	})
}

// SignOut revokes the session's tokens, forgets the session and publishes
// SIGNED_OUT. Signing out without a session still publishes the event.
func (s *authService) SignOut(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	switch {
	case err == nil:
		if err := s.provider.RevokeSessions(ctx, sess.User.ID); err != nil {
			s.logger.Warn("Failed to revoke tokens", zap.String("userID", sess.User.ID), zap.Error(err))
		}
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		s.logger.Info("User signed out", zap.String("userID", sess.User.ID))
	case errors.Is(err, session.ErrNoSession):
	default:
		return fmt.Errorf("failed to load session: %w", err)
	}

	s.observe(string(session.EventSignedOut))
	return s.events.Publish(ctx, session.Event{Kind: session.EventSignedOut, SessionID: sessionID})
}

// Refresh re-verifies the stored session cookie. A valid cookie publishes
// TOKEN_REFRESHED; an invalid one ends the session with SIGNED_OUT. A
// provider outage leaves the session alone.
func (s *authService) Refresh(ctx context.Context, sessionID string) error {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	user, err := s.provider.VerifySessionCookie(ctx, sess.SessionCookie)
	if err != nil && !errors.Is(err, identity.ErrInvalidSession) {
		return fmt.Errorf("failed to verify session: %w", err)
	}
	if err != nil {
		s.logger.Info("Session no longer valid", zap.String("userID", sess.User.ID), zap.Error(err))
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
			s.logger.Warn("Failed to delete session", zap.Error(delErr))
		}
		s.observe(string(session.EventSignedOut))
		if pubErr := s.events.Publish(ctx, session.Event{Kind: session.EventSignedOut, SessionID: sessionID}); pubErr != nil {
			return pubErr
		}
		return ErrSessionNotFound
	}

	s.observe(string(session.EventTokenRefreshed))
	return s.events.Publish(ctx, session.Event{
		Kind: session.EventTokenRefreshed, SessionID: sessionID, User: user, ExpiresAt: sess.ExpiresAt,
	})
}

// Current returns the session of sessionID with its user re-verified, or
// nil when there is no valid session. Provider outages are returned as errors.
func (s *authService) Current(ctx context.Context, sessionID string) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, nil
		}
		return nil, err
	}
	user, err := s.provider.VerifySessionCookie(ctx, sess.SessionCookie)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidSession) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify session: %w", err)
	}
	sess.User = *user
	return sess, nil
}

// VerifyIDToken authenticates an API client presenting a bearer token.
func (s *authService) VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error) {
	user, err := s.provider.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	return user, nil
}

func (s *authService) observe(event string) {
	if s.observer != nil {
		s.observer.ObserveAuth(event)
	}
}
