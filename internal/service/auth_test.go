package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penblog/penblog/internal/auth"
	"github.com/penblog/penblog/internal/metrics"
	"github.com/penblog/penblog/internal/validation"
)

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	cache    *fakeIdentityCache
	tokens   *auth.TokenService
	recorder *metrics.InMemoryRecorder
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "test-secret", Issuer: "penblog", TTL: time.Hour})
	require.NoError(t, err)

	f := &authFixture{
		users:    newFakeUsers(),
		cache:    newFakeIdentityCache(),
		tokens:   tokens,
		recorder: metrics.NewInMemory(),
	}
	f.svc = NewAuthService(AuthServiceConfig{
		Users:    f.users,
		Tokens:   tokens,
		Cache:    f.cache,
		CacheTTL: 5 * time.Minute,
		Metrics:  f.recorder,
	})
	return f
}

func validSignup() SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "correct horse battery staple",
	}
}

func TestSignup(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.NotEqual(t, "correct horse battery staple", res.User.PasswordHash)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, uint64(1), f.recorder.Snapshot().Signups)

	_, err = f.svc.Signup(ctx, validSignup())
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignup_Validation(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.Signup(context.Background(), SignupInput{Email: "not-an-email"})
	require.ErrorIs(t, err, ErrValidation)

	var fe *validation.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Fields, "first_name")
	assert.Contains(t, fe.Fields, "last_name")
	assert.Contains(t, fe.Fields, "password")
	assert.Equal(t, "email must be a valid email address", fe.Fields["email"])
}

func TestLogin(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, LoginInput{Email: "ADA@example.com", Password: "correct horse battery staple"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, err = f.svc.Login(ctx, LoginInput{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, LoginInput{})
	assert.ErrorIs(t, err, ErrValidation)

	snap := f.recorder.Snapshot()
	assert.Equal(t, uint64(1), snap.LoginsByStatus["success"])
	assert.Equal(t, uint64(2), snap.LoginsByStatus["failure"])
}

func TestResolveIdentity(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, validSignup())
	require.NoError(t, err)
	before := f.users.lookups()

	identity, err := f.svc.ResolveIdentity(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.UserID)
	assert.Equal(t, before+1, f.users.lookups())

	hash := auth.QuickHash(res.Token)
	assert.Equal(t, 5*time.Minute, f.cache.ttls[hash])

	again, err := f.svc.ResolveIdentity(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, identity, again)
	assert.Equal(t, before+1, f.users.lookups(), "second resolve should hit the cache")
}

func TestResolveIdentity_Rejects(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.ResolveIdentity(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	orphan, err := f.tokens.Issue(grace.Identity())
	require.NoError(t, err)
	_, err = f.svc.ResolveIdentity(ctx, orphan)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolveIdentity_CacheTTLBoundedByToken(t *testing.T) {
	t.Parallel()

	tokens, err := auth.NewTokenService(auth.TokenConfig{Secret: "s", TTL: time.Minute})
	require.NoError(t, err)
	users := newFakeUsers(ada)
	idCache := newFakeIdentityCache()
	svc := NewAuthService(AuthServiceConfig{Users: users, Tokens: tokens, Cache: idCache, CacheTTL: time.Hour})

	token, err := tokens.Issue(ada.Identity())
	require.NoError(t, err)

	_, err = svc.ResolveIdentity(context.Background(), token)
	require.NoError(t, err)
	ttl := idCache.ttls[auth.QuickHash(token)]
	assert.LessOrEqual(t, ttl, time.Minute)
	assert.Greater(t, ttl, time.Duration(0))
}
