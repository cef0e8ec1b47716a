package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// tokenCacheMargin keeps cached tokens from being handed out right before
// they expire on the server side.
const tokenCacheMargin = 5 * time.Minute

// Provider is an explicit session object threaded through the remote
// clients instead of an ambient current-user singleton, so tests can inject
// fakes. It holds registered accounts in memory, tracks the current
// identity and mints short-lived bearer tokens on demand.
type Provider struct {
	minter *tokenMinter
	tokens *gocache.Cache
	logger zerolog.Logger

	mu       sync.RWMutex
	accounts map[string]*account // keyed by lowercased email
	current  *Identity
}

type account struct {
	identity     Identity
	passwordHash []byte
}

// ProviderConfig holds configuration for the session provider.
type ProviderConfig struct {
	// SigningKey signs minted bearer tokens.
	SigningKey string

	// Issuer is the issuer claim for minted tokens.
	Issuer string

	// TokenTTL is the bearer token lifetime (default: DefaultTokenTTL).
	TokenTTL time.Duration

	// Logger for provider operations.
	Logger zerolog.Logger
}

// NewProvider creates a session provider with no signed-in identity.
func NewProvider(cfg ProviderConfig) *Provider {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	cacheTTL := ttl - tokenCacheMargin
	if cacheTTL <= 0 {
		cacheTTL = ttl / 2
	}

	return &Provider{
		minter:   newTokenMinter(cfg.SigningKey, cfg.Issuer, ttl),
		tokens:   gocache.New(cacheTTL, 10*time.Minute),
		logger:   cfg.Logger,
		accounts: make(map[string]*account),
	}
}

// SignUp registers a new account and makes it the current identity.
// Registering an email that already exists fails with ErrInvalidCredentials.
func (p *Provider) SignUp(ctx context.Context, email, password, displayName string) (*Identity, error) {
	key := normalizeEmail(email)
	if key == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[key]; exists {
		return nil, ErrInvalidCredentials
	}

	id := Identity{
		ID:          uuid.NewString(),
		Email:       key,
		DisplayName: displayName,
		CreatedAt:   time.Now(),
	}
	p.accounts[key] = &account{identity: id, passwordHash: hash}
	p.current = &id

	p.logger.Info().Str("user_id", id.ID).Msg("account created")
	return &id, nil
}

// SignIn verifies credentials and makes the matching identity current.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	key := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.accounts[key]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	id := acct.identity
	p.current = &id
	p.logger.Info().Str("user_id", id.ID).Msg("signed in")
	return &id, nil
}

// SignOut clears the current identity and drops any cached tokens.
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	p.tokens.Flush()
}

// CurrentIdentity returns the signed-in identity, synchronously from
// cached session state.
func (p *Provider) CurrentIdentity() (*Identity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil, false
	}
	id := *p.current
	return &id, true
}

// MintCredential returns a bearer token for the current identity. When
// forceRefresh is true any cached token is bypassed and a fresh one is
// minted. Fails with ErrNoSession when nobody is signed in.
func (p *Provider) MintCredential(ctx context.Context, forceRefresh bool) (string, error) {
	id, ok := p.CurrentIdentity()
	if !ok {
		return "", ErrNoSession
	}

	if !forceRefresh {
		if cached, found := p.tokens.Get(id.ID); found {
			return cached.(string), nil
		}
	}

	token, expiresAt, err := p.minter.mint(id)
	if err != nil {
		return "", err
	}

	cacheFor := time.Until(expiresAt) - tokenCacheMargin
	if cacheFor > 0 {
		p.tokens.Set(id.ID, token, cacheFor)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
