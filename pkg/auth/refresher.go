package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	MinRefreshInterval = 30 * time.Second
	refreshedMemory    = 5
)

var (
	ErrNoSession        = errors.New("no active session")
	ErrRefreshThrottled = errors.New("token refresh not allowed yet")
	ErrSessionExpired   = errors.New("session expired, please log in again")
)

type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type RefreshFunc func(ctx context.Context, refreshToken string) (*Tokens, error)

// Refresher hands out a valid access token, refreshing it at most once per
// token and never more often than MinRefreshInterval. Concurrent callers
// share a single in-flight refresh.
type Refresher struct {
	mu          sync.Mutex
	current     Tokens
	refresh     RefreshFunc
	group       singleflight.Group
	lastAttempt time.Time
	refreshed   []string
	now         func() time.Time
}

func NewRefresher(initial Tokens, refresh RefreshFunc) *Refresher {
	return &Refresher{
		current: initial,
		refresh: refresh,
		now:     time.Now,
	}
}

func (r *Refresher) Current() Tokens {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Refresher) SetTokens(t Tokens) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = t
}

// Token matches client.TokenSource.
func (r *Refresher) Token(ctx context.Context) (string, error) {
	cur := r.Current()
	if cur.AccessToken == "" {
		return "", ErrNoSession
	}
	if IsTokenValid(cur.AccessToken, r.now()) {
		return cur.AccessToken, nil
	}

	v, err, _ := r.group.Do(cur.AccessToken, func() (any, error) {
		return r.refreshToken(ctx, cur)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (r *Refresher) refreshToken(ctx context.Context, stale Tokens) (string, error) {
	r.mu.Lock()
	if r.current.AccessToken != stale.AccessToken {
		token := r.current.AccessToken
		r.mu.Unlock()
		return token, nil
	}
	now := r.now()
	if r.wasRefreshed(stale.AccessToken) {
		r.mu.Unlock()
		return "", ErrSessionExpired
	}
	if now.Sub(r.lastAttempt) <= MinRefreshInterval {
		r.mu.Unlock()
		return "", ErrRefreshThrottled
	}
	r.lastAttempt = now
	r.remember(stale.AccessToken)
	r.mu.Unlock()

	fresh, err := r.refresh(ctx, stale.RefreshToken)
	if err != nil {
		return "", errors.Join(ErrSessionExpired, err)
	}
	if fresh == nil || fresh.AccessToken == "" {
		return "", ErrSessionExpired
	}

	r.SetTokens(*fresh)
	return fresh.AccessToken, nil
}

func (r *Refresher) wasRefreshed(token string) bool {
	for _, t := range r.refreshed {
		if t == token {
			return true
		}
	}
	return false
}

func (r *Refresher) remember(token string) {
	r.refreshed = append(r.refreshed, token)
	if len(r.refreshed) > refreshedMemory {
		r.refreshed = r.refreshed[len(r.refreshed)-refreshedMemory:]
	}
}
