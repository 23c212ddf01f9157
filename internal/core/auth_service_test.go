package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/collex/internal/identity"
	"github.com/example/collex/internal/models"
	"github.com/example/collex/internal/session"
	"github.com/example/collex/pkg/cache"
	"github.com/example/collex/pkg/mailer"
)

const testTTL = 24 * time.Hour

type authFixture struct {
	svc      AuthService
	provider *MockIdentityProvider
	mailer   *MockMailer
	sessions *session.Store
	events   *recordingPublisher
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		provider: new(MockIdentityProvider),
		mailer:   new(MockMailer),
		sessions: session.NewStore(cache.NewMemoryCache()),
		events:   &recordingPublisher{},
	}
	f.svc = NewAuthService(f.provider, f.sessions, f.events, f.mailer, nil,
		AuthConfig{AllowedDomain: "iiitdmj.ac.in", SessionTTL: testTTL}, zap.NewNop())
	return f
}

func TestSignUp_ForeignDomainRejectedWithoutProviderCall(t *testing.T) {
	f := newAuthFixture()

	err := f.svc.SignUp(context.Background(), models.SignUpRequest{
		Email: "student@gmail.com", Password: "secret1", ConfirmPassword: "secret1",
	})
	require.ErrorIs(t, err, ErrEmailDomain)
	assert.Equal(t, "Only @iiitdmj.ac.in emails are allowed", err.Error())
	f.provider.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything)
}

func TestSignUp_SendsVerificationLink(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	email := "22bcs001@iiitdmj.ac.in"

	f.provider.On("SignUp", ctx, email, "secret1").Return(&models.AuthUser{ID: "uid-1", Email: email}, nil)
	f.provider.On("EmailVerificationLink", ctx, email).Return("https://verify/abc", nil)
	f.mailer.On("Send", ctx, mock.MatchedBy(func(m mailer.Message) bool {
		return m.To == email && strings.Contains(m.Body, "https://verify/abc")
	})).Return(nil)

	err := f.svc.SignUp(ctx, models.SignUpRequest{Email: email, Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)
	f.provider.AssertExpectations(t)
	f.mailer.AssertExpectations(t)
}

func TestSignUp_ExistingEmail(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	email := "a@iiitdmj.ac.in"
	f.provider.On("SignUp", ctx, email, "secret1").Return(nil, identity.ErrEmailExists)

	err := f.svc.SignUp(ctx, models.SignUpRequest{Email: email, Password: "secret1", ConfirmPassword: "secret1"})
	assert.ErrorIs(t, err, ErrEmailRegistered)
}

func TestSignIn_StoresSessionAndPublishes(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := models.AuthUser{ID: "uid-1", Email: "a@iiitdmj.ac.in"}

	f.provider.On("SignIn", ctx, user.Email, "pw").Return(&identity.Credentials{User: user, IDToken: "id-tok"}, nil)
	f.provider.On("CreateSessionCookie", ctx, "id-tok", testTTL).Return("cookie", nil)

	require.NoError(t, f.svc.SignIn(ctx, "sid", models.SignInRequest{Email: user.Email, Password: "pw"}))

	sess, err := f.sessions.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "cookie", sess.SessionCookie)
	assert.Equal(t, user, sess.User)
	assert.Equal(t, []session.EventKind{session.EventSignedIn}, f.events.kinds())
	assert.Equal(t, sess.ExpiresAt, f.events.events[0].ExpiresAt)
}

func TestSignIn_Errors(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	err := f.svc.SignIn(ctx, "sid", models.SignInRequest{Email: "a@gmail.com", Password: "pw"})
	require.ErrorIs(t, err, ErrEmailDomain)

	f.provider.On("SignIn", ctx, "a@iiitdmj.ac.in", "bad").Return(nil, identity.ErrInvalidCredentials)
	err = f.svc.SignIn(ctx, "sid", models.SignInRequest{Email: "a@iiitdmj.ac.in", Password: "bad"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	assert.Empty(t, f.events.kinds())
	_, err = f.sessions.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSignIn_CancelledRequestStoresNothing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newAuthFixture()
	user := models.AuthUser{ID: "uid-1", Email: "a@iiitdmj.ac.in"}

	f.provider.On("SignIn", ctx, user.Email, "pw").Return(&identity.Credentials{User: user, IDToken: "id-tok"}, nil)
	f.provider.On("CreateSessionCookie", ctx, "id-tok", testTTL).Return("cookie", nil).Run(func(mock.Arguments) { cancel() })

	err := f.svc.SignIn(ctx, "sid", models.SignInRequest{Email: user.Email, Password: "pw"})
	require.ErrorIs(t, err, context.Canceled)

	_, err = f.sessions.Get(context.Background(), "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Empty(t, f.events.kinds())
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	require.NoError(t, f.sessions.Put(ctx, &models.Session{
		ID: "sid", User: models.AuthUser{ID: "uid-1"}, SessionCookie: "cookie", ExpiresAt: time.Now().Add(time.Hour),
	}))
	f.provider.On("RevokeSessions", ctx, "uid-1").Return(errors.New("network"))

	require.NoError(t, f.svc.SignOut(ctx, "sid"))
	_, err := f.sessions.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, f.svc.SignOut(ctx, "sid"))
	assert.Equal(t, []session.EventKind{session.EventSignedOut, session.EventSignedOut}, f.events.kinds())
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	user := &models.AuthUser{ID: "uid-1"}
	put := func(cookie string) {
		require.NoError(t, f.sessions.Put(ctx, &models.Session{
			ID: "sid", User: *user, SessionCookie: cookie, ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	require.ErrorIs(t, f.svc.Refresh(ctx, "sid"), ErrSessionNotFound)

	put("good")
	f.provider.On("VerifySessionCookie", ctx, "good").Return(user, nil)
	require.NoError(t, f.svc.Refresh(ctx, "sid"))

	put("revoked")
	f.provider.On("VerifySessionCookie", ctx, "revoked").Return(nil, identity.ErrInvalidSession)
	require.ErrorIs(t, f.svc.Refresh(ctx, "sid"), ErrSessionNotFound)

	_, err := f.sessions.Get(ctx, "sid")
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.Equal(t, []session.EventKind{session.EventTokenRefreshed, session.EventSignedOut}, f.events.kinds())
}

func TestRefresh_ProviderOutageKeepsSession(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()
	require.NoError(t, f.sessions.Put(ctx, &models.Session{
		ID: "sid", User: models.AuthUser{ID: "uid-1"}, SessionCookie: "c", ExpiresAt: time.Now().Add(time.Hour),
	}))
	f.provider.On("VerifySessionCookie", ctx, "c").Return(nil, errors.New("connection refused"))

	err := f.svc.Refresh(ctx, "sid")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	_, err = f.sessions.Get(ctx, "sid")
	assert.NoError(t, err)
	assert.Empty(t, f.events.kinds())
}

func TestCurrent(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture()

	sess, err := f.svc.Current(ctx, "none")
	require.NoError(t, err)
	assert.Nil(t, sess)

	expires := time.Now().Add(time.Hour)
	require.NoError(t, f.sessions.Put(ctx, &models.Session{
		ID: "sid", User: models.AuthUser{ID: "uid-1"}, SessionCookie: "c", ExpiresAt: expires,
	}))
	f.provider.On("VerifySessionCookie", ctx, "c").Return(&models.AuthUser{ID: "uid-1", Email: "a@iiitdmj.ac.in"}, nil).Once()
	sess, err = f.svc.Current(ctx, "sid")
	require.NoError(t, err)
	assert.Equal(t, "a@iiitdmj.ac.in", sess.User.Email)
	assert.True(t, expires.Equal(sess.ExpiresAt))

	f.provider.On("VerifySessionCookie", ctx, "c").Return(nil, identity.ErrInvalidSession).Once()
	sess, err = f.svc.Current(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, sess)

	f.provider.On("VerifySessionCookie", ctx, "c").Return(nil, errors.New("connection refused")).Once()
	sess, err = f.svc.Current(ctx, "sid")
	assert.Error(t, err)
	assert.Nil(t, sess)
}
