package shopclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNoSession means nobody is signed in
var ErrNoSession = errors.New("shopclient: not signed in")

// Session supplies the bearer token for authenticated calls
type Session interface {
	AccessToken(ctx context.Context) (string, error)
}

// TokenRefresher exchanges a refresh token for a new pair
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// StoreSession keeps the token pair in the local store. Only tokens are
// persisted, never credentials. With a refresher attached an expired
// access token is rotated through the stored refresh token.
type StoreSession struct {
	store     *Store
	refresher TokenRefresher
	now       func() time.Time
	mu        sync.Mutex
}

// NewStoreSession returns a session backed by store
func NewStoreSession(store *Store) *StoreSession {
	return &StoreSession{store: store, now: time.Now}
}

// SetRefresher attaches the client used to rotate expired access tokens
func (s *StoreSession) SetRefresher(r TokenRefresher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresher = r
}

// AccessToken returns the stored access token while it is unexpired, and
// otherwise a freshly rotated one when a refresh token is held
func (s *StoreSession) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens, err := s.Tokens()
	if err != nil {
		return "", err
	}
	if tokens.AccessToken == "" {
		return "", ErrNoSession
	}
	if !expired(tokens.AccessTokenExpiresAt, s.now()) {
		return tokens.AccessToken, nil
	}
	return s.rotate(ctx, tokens)
}

func (s *StoreSession) rotate(ctx context.Context, tokens *TokenPair) (string, error) {
	if s.refresher == nil || tokens.RefreshToken == "" || expired(tokens.RefreshTokenExpiresAt, s.now()) {
		return "", ErrNoSession
	}
	fresh, err := s.refresher.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		// a rejected refresh token is spent for good
		if status := StatusOf(err); status >= 400 && status < 500 {
			if cerr := s.Clear(); cerr != nil {
				return "", cerr
			}
			return "", ErrNoSession
		}
		return "", fmt.Errorf("refreshing session: %w", err)
	}
	if fresh.AccessToken == "" {
		return "", fmt.Errorf("%w: refresh returned no access token", ErrMalformedEnvelope)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = tokens.RefreshToken
		fresh.RefreshTokenExpiresAt = tokens.RefreshTokenExpiresAt
	}
	if err := s.Save(fresh); err != nil {
		return "", err
	}
	return fresh.AccessToken, nil
}

func expired(at, now time.Time) bool {
	return !at.IsZero() && !now.Before(at)
}

// Tokens returns the stored pair, or ErrNoSession
func (s *StoreSession) Tokens() (*TokenPair, error) {
	var tokens TokenPair
	found, err := s.store.Get(KeyAuthToken, &tokens)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSession
	}
	return &tokens, nil
}

// Save replaces the stored pair
func (s *StoreSession) Save(tokens *TokenPair) error {
	return s.store.Set(KeyAuthToken, tokens)
}

// Clear signs out locally
func (s *StoreSession) Clear() error {
	return s.store.Delete(KeyAuthToken)
}

// StaticSession always returns the same token
type StaticSession string

// AccessToken implements Session
func (s StaticSession) AccessToken(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoSession
	}
	return string(s), nil
}
