package app

import (
	"time"

	"github.com/Mathew1327/Construction-tracker/internal/auth"
	"github.com/Mathew1327/Construction-tracker/internal/cache"
	"github.com/Mathew1327/Construction-tracker/internal/services"
)

const (
	defaultLoginAttempts = 5
	defaultLoginWindow   = 15 * time.Minute
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// SessionServiceConfig converts AuthConfig into SessionService parameters.
func (c AuthConfig) SessionServiceConfig() auth.SessionConfig {
	ttl := c.Session.RefreshTTL
	if ttl <= 0 {
		ttl = auth.DefaultRefreshTokenTTL
	}

	length := c.Session.RefreshLength
	if length <= 0 {
		length = 48
	}

	return auth.SessionConfig{
		RefreshTokenTTL: ttl,
		RefreshLength:   length,
	}
}

// LoginThrottle converts the login settings into the throttle used by AuthService.
// A negative attempt budget disables throttling.
func (c AuthConfig) LoginThrottle(store cache.Store) services.LoginThrottle {
	attempts := c.Login.MaxAttempts
	if attempts == 0 {
		attempts = defaultLoginAttempts
	}
	if attempts < 0 {
		return services.LoginThrottle{}
	}

	window := c.Login.Window
	if window <= 0 {
		window = defaultLoginWindow
	}

	return services.LoginThrottle{
		Store:       store,
		MaxAttempts: attempts,
		Window:      window,
	}
}
