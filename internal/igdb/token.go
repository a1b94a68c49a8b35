package igdb

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// FetchFunc obtains a fresh provider token.
type FetchFunc func(ctx context.Context) (*oauth2.Token, error)

// ClientCredentials fetches app tokens with the client-credentials grant.
// The provider expects the credentials as form params, not basic auth.
func ClientCredentials(clientID, clientSecret, tokenURL string) FetchFunc {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
	return cfg.Token
}

const (
	// tokens are refreshed this long before they actually expire
	expiryLeeway = time.Minute
	// used when the provider omits expires_in
	defaultTokenTTL = time.Hour
	// bounds a shared refresh, which outlives any single caller's context
	refreshTimeout = 15 * time.Second
)

// TokenCache holds one access token and its expiry. Concurrent callers that
// find it missing or expired share a single refresh.
type TokenCache struct {
	fetch FetchFunc
	now   func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time

	group singleflight.Group
}

func NewTokenCache(fetch FetchFunc) *TokenCache {
	return &TokenCache{fetch: fetch, now: time.Now}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == "" || !c.now().Add(expiryLeeway).Before(c.expiry) {
		return "", false
	}
	return c.token, true
}

// Token returns a valid access token, refreshing it when needed.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if tok, ok := c.cached(); ok {
		return tok, nil
	}

	ch := c.group.DoChan("token", func() (interface{}, error) {
		if tok, ok := c.cached(); ok {
			return tok, nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		t, err := c.fetch(fetchCtx)
		if err != nil {
			return "", err
		}
		if t.AccessToken == "" {
			return "", errors.New("igdb: empty access token")
		}
		expiry := t.Expiry
		if expiry.IsZero() {
			expiry = c.now().Add(defaultTokenTTL)
		}

		c.mu.Lock()
		c.token, c.expiry = t.AccessToken, expiry
		c.mu.Unlock()
		return t.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call refreshes it.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token, c.expiry = "", time.Time{}
	c.mu.Unlock()
}

// Expiry reports when the cached token stops being used.
func (c *TokenCache) Expiry() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiry
}
