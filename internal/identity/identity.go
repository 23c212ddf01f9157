// Package identity adapts Firebase Authentication to the account operations
// the service needs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/example/collex/internal/models"
)

var (
	// ErrInvalidCredentials is returned for a wrong email or password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists is returned when signing up with a registered email.
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidSession is returned for expired, revoked or malformed tokens.
	ErrInvalidSession = errors.New("invalid or expired session")
)

// Credentials are returned by a successful password sign-in.
type Credentials struct {
	User    models.AuthUser
	IDToken string
}

// FirebaseProvider implements account operations on Firebase Authentication.
// Password sign-in goes through the Identity Toolkit REST API because the
// Admin SDK cannot verify passwords.
type FirebaseProvider struct {
	auth    *auth.Client
	toolkit *identitytoolkit.RelyingpartyService
}

// NewFirebaseProvider creates a FirebaseProvider using the project's web API key.
func NewFirebaseProvider(ctx context.Context, authClient *auth.Client, webAPIKey string) (*FirebaseProvider, error) {
	if authClient == nil {
		return nil, errors.New("firebase auth client is not initialized")
	}
	svc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(webAPIKey))
	if err != nil {
		return nil, fmt.Errorf("identitytoolkit.NewService: %w", err)
	}
	return &FirebaseProvider{auth: authClient, toolkit: svc.Relyingparty}, nil
}

// SignUp creates an email/password account.
func (p *FirebaseProvider) SignUp(ctx context.Context, email, password string) (*models.AuthUser, error) {
	rec, err := p.auth.CreateUser(ctx, (&auth.UserToCreate{}).Email(email).Password(password))
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &models.AuthUser{ID: rec.UID, Email: rec.Email, DisplayName: rec.DisplayName}, nil
}

// EmailVerificationLink generates the confirmation link mailed after sign-up.
func (p *FirebaseProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	link, err := p.auth.EmailVerificationLink(ctx, email)
	if err != nil {
		return "", fmt.Errorf("email verification link: %w", err)
	}
	return link, nil
}

// SignIn verifies an email and password.
func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusBadRequest && isCredentialError(gerr.Message) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify password: %w", err)
	}
	return &Credentials{
		User:    models.AuthUser{ID: resp.LocalId, Email: resp.Email, DisplayName: resp.DisplayName},
		IDToken: resp.IdToken,
	}, nil
}

func isCredentialError(msg string) bool {
	for _, code := range []string{"INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL"} {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}

// CreateSessionCookie exchanges a fresh ID token for a session cookie.
func (p *FirebaseProvider) CreateSessionCookie(ctx context.Context, idToken string, ttl time.Duration) (string, error) {
	cookie, err := p.auth.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		return "", fmt.Errorf("create session cookie: %w", err)
	}
	return cookie, nil
}

// VerifySessionCookie checks a session cookie, including revocation.
func (p *FirebaseProvider) VerifySessionCookie(ctx context.Context, cookie string) (*models.AuthUser, error) {
	tok, err := p.auth.VerifySessionCookieAndCheckRevoked(ctx, cookie)
	if err != nil {
		return nil, sessionCookieError(err)
	}
	return userFromToken(tok), nil
}

// sessionCookieError maps rejections of the cookie itself to
// ErrInvalidSession and leaves lookup failures as plain errors.
func sessionCookieError(err error) error {
	if auth.IsSessionCookieInvalid(err) || auth.IsSessionCookieRevoked(err) || auth.IsUserDisabled(err) {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	return fmt.Errorf("verify session cookie: %w", err)
}

// VerifyIDToken checks a bearer ID token.
func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (*models.AuthUser, error) {
	tok, err := p.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		if auth.IsIDTokenInvalid(err) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
		}
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return userFromToken(tok), nil
}

// RevokeSessions revokes every refresh token and session cookie of a user.
func (p *FirebaseProvider) RevokeSessions(ctx context.Context, uid string) error {
	if err := p.auth.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func userFromToken(tok *auth.Token) *models.AuthUser {
	u := &models.AuthUser{ID: tok.UID}
	if email, ok := tok.Claims["email"].(string); ok {
		u.Email = email
	}
	if name, ok := tok.Claims["name"].(string); ok {
		u.DisplayName = name
	}
	return u
}
