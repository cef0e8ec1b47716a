package session_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripway/tripway/internal/session"
)

const testSigningKey = "test-signing-key"

func newProvider() *session.Provider {
	return session.NewProvider(session.ProviderConfig{
		SigningKey: testSigningKey,
		Issuer:     "tripway-test",
		Logger:     zerolog.Nop(),
	})
}

func TestProvider_SignUpAndCurrentIdentity(t *testing.T) {
	p := newProvider()

	_, ok := p.CurrentIdentity()
	assert.False(t, ok)

	id, err := p.SignUp(context.Background(), "Traveler@Example.com", "secret", "Traveler")
	require.NoError(t, err)
	assert.NotEmpty(t, id.ID)
	assert.Equal(t, "traveler@example.com", id.Email)

	current, ok := p.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, id.ID, current.ID)
}

func TestProvider_SignUpDuplicateEmail(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "traveler@example.com", "secret", "")
	require.NoError(t, err)

	_, err = p.SignUp(ctx, "traveler@example.com", "other", "")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)
}

func TestProvider_SignIn(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "traveler@example.com", "secret", "")
	require.NoError(t, err)
	p.SignOut()

	_, err = p.SignIn(ctx, "traveler@example.com", "wrong")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.com", "secret")
	assert.ErrorIs(t, err, session.ErrInvalidCredentials)

	id, err := p.SignIn(ctx, "traveler@example.com", "secret")
	require.NoError(t, err)

	current, ok := p.CurrentIdentity()
	require.True(t, ok)
	assert.Equal(t, id.ID, current.ID)
}

func TestProvider_MintCredentialRequiresSession(t *testing.T) {
	p := newProvider()

	_, err := p.MintCredential(context.Background(), false)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestProvider_MintCredential(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	id, err := p.SignUp(ctx, "traveler@example.com", "secret", "")
	require.NoError(t, err)

	token, err := p.MintCredential(ctx, false)
	require.NoError(t, err)

	subject, err := session.ParseSubject(token, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, id.ID, subject)

	// Without forceRefresh the cached token is reused.
	again, err := p.MintCredential(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, token, again)

	// forceRefresh bypasses the cache and mints a fresh token.
	fresh, err := p.MintCredential(ctx, true)
	require.NoError(t, err)
	assert.NotEqual(t, token, fresh)

	subject, err = session.ParseSubject(fresh, testSigningKey)
	require.NoError(t, err)
	assert.Equal(t, id.ID, subject)
}

func TestProvider_SignOutDropsTokens(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "traveler@example.com", "secret", "")
	require.NoError(t, err)
	_, err = p.MintCredential(ctx, false)
	require.NoError(t, err)

	p.SignOut()

	_, ok := p.CurrentIdentity()
	assert.False(t, ok)
	_, err = p.MintCredential(ctx, false)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestParseSubject_RejectsTampered(t *testing.T) {
	p := newProvider()
	ctx := context.Background()

	_, err := p.SignUp(ctx, "traveler@example.com", "secret", "")
	require.NoError(t, err)
	token, err := p.MintCredential(ctx, false)
	require.NoError(t, err)

	_, err = session.ParseSubject(token, "wrong-key")
	assert.Error(t, err)

	_, err = session.ParseSubject("not-a-token", testSigningKey)
	assert.Error(t, err)
}
