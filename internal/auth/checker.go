package auth

import (
	"context"
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fittrack/pkg"
)

var _ Checker = (*LoginChecker)(nil)

type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}

type userGetter interface {
	GetUser(ctx context.Context, accessToken string) pkg.Result[User]
}

// LoginChecker validates bearer tokens with the auth service and caches
// positive answers until the token expires, at most for maxTTL.
type LoginChecker struct {
	api    userGetter
	cache  *freecache.Cache
	maxTTL time.Duration
	now    func() time.Time
}

const loginCacheSize = 1024 * 1024

func NewLoginChecker(api userGetter, maxTTL time.Duration) *LoginChecker {
	return &LoginChecker{
		api:    api,
		cache:  freecache.NewCache(loginCacheSize),
		maxTTL: maxTTL,
		now:    time.Now,
	}
}

func (c *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	key := []byte(token)
	if _, err := c.cache.Get(key); err == nil {
		return true, nil
	} else if !isCacheMiss(err) {
		log.Warnf("login cache get: %s", err)
	}

	claims, err := ParseClaims(token)
	if err != nil {
		return false, nil
	}
	now := c.now()
	if claims.Expired(now) {
		return false, nil
	}

	user, err := c.api.GetUser(ctx, token).Unwrap()
	if err != nil {
		if isTokenRejected(err) {
			return false, nil
		}
		return false, err
	}

	ttl := c.maxTTL
	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Sub(now) < ttl {
		ttl = claims.ExpiresAt.Sub(now)
	}
	if ttl >= time.Second {
		if err := c.cache.Set(key, []byte(user.ID), int(ttl.Seconds())); err != nil {
			log.Warnf("cache login of user %s: %s", user.ID, err)
		}
	}

	return true, nil
}

// Forget drops a cached token, used on sign out.
func (c *LoginChecker) Forget(token string) {
	if token == "" {
		return
	}
	c.cache.Del([]byte(token))
}

func isCacheMiss(err error) bool {
	return errors.Is(err, freecache.ErrNotFound)
}
