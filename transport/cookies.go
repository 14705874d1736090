// Package transport binds the token pair to secure http-only cookies. The
// cookies are pure transport: no state of their own, written from the token
// pair and read back verbatim.
package transport

import (
	"net/http"
	"strings"
	"time"
)

// Cookie names, shared with the browser client.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Config holds the cookie attributes resolved once at startup. Secure and
// SameSite are environment-dependent (see shopguard.Config.Cookies); the
// rest is fixed.
type Config struct {
	Secure        bool
	SameSite      http.SameSite
	Domain        string
	Path          string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// Binder writes, clears, and reads the cookie pair.
type Binder struct {
	config Config
}

// NewBinder returns a Binder for the given attributes. Path defaults to "/";
// a narrower path would orphan cookies set by earlier deployments.
func NewBinder(cfg Config) *Binder {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &Binder{config: cfg}
}

func (b *Binder) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     b.config.Path,
		Domain:   b.config.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   b.config.Secure,
		SameSite: b.config.SameSite,
	}
}

// WritePair sets both cookies: access with the short lifetime, refresh with
// the long one.
func (b *Binder) WritePair(w http.ResponseWriter, accessToken, refreshToken string) {
	http.SetCookie(w, b.cookie(AccessCookie, accessToken, b.config.AccessMaxAge))
	http.SetCookie(w, b.cookie(RefreshCookie, refreshToken, b.config.RefreshMaxAge))
}

// WriteAccess updates only the access cookie. Used after a refresh, which
// never reissues the refresh token.
func (b *Binder) WriteAccess(w http.ResponseWriter, accessToken string) {
	http.SetCookie(w, b.cookie(AccessCookie, accessToken, b.config.AccessMaxAge))
}

// Clear expires both cookies. The attributes must match the ones they were
// set with exactly; conforming clients silently keep a cookie whose clearing
// Set-Cookie differs in path or domain. Clearing twice is a no-op.
func (b *Binder) Clear(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		expired := b.cookie(name, "", 0)
		expired.MaxAge = -1
		expired.Expires = time.Unix(0, 0)
		http.SetCookie(w, expired)
	}
}

// ReadAccess extracts the access token, preferring the cookie and falling
// back to an Authorization: Bearer header for non-browser clients.
func (b *Binder) ReadAccess(r *http.Request) (string, bool) {
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && token != "" {
		return token, true
	}
	return "", false
}

// ReadRefresh extracts the refresh token. Cookie only: the refresh token is
// never accepted from a header.
func (b *Binder) ReadRefresh(r *http.Request) (string, bool) {
	if c, err := r.Cookie(RefreshCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
