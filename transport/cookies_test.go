package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() Config {
	return Config{
		Secure:        false,
		SameSite:      http.SameSiteLaxMode,
		AccessMaxAge:  15 * time.Minute,
		RefreshMaxAge: 7 * 24 * time.Hour,
	}
}

func cookieByName(t *testing.T, cookies []*http.Cookie, name string) *http.Cookie {
	t.Helper()
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestWritePairAttributes(t *testing.T) {
	binder := NewBinder(devConfig())
	rec := httptest.NewRecorder()

	binder.WritePair(rec, "access-value", "refresh-value")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	access := cookieByName(t, cookies, AccessCookie)
	assert.Equal(t, "access-value", access.Value)
	assert.True(t, access.HttpOnly)
	assert.False(t, access.Secure)
	assert.Equal(t, "/", access.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), access.MaxAge)

	refresh := cookieByName(t, cookies, RefreshCookie)
	assert.Equal(t, "refresh-value", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.Equal(t, "/", refresh.Path)
	assert.Equal(t, int((7 * 24 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestProductionAttributes(t *testing.T) {
	cfg := devConfig()
	cfg.Secure = true
	cfg.SameSite = http.SameSiteNoneMode
	binder := NewBinder(cfg)
	rec := httptest.NewRecorder()

	binder.WritePair(rec, "a", "r")

	for _, c := range rec.Result().Cookies() {
		assert.True(t, c.Secure, "cookie %s must be Secure in production", c.Name)
		assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	}
}

func TestWriteAccessOnly(t *testing.T) {
	binder := NewBinder(devConfig())
	rec := httptest.NewRecorder()

	binder.WriteAccess(rec, "new-access")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, AccessCookie, cookies[0].Name)
}

func TestClearMatchesWriteAttributes(t *testing.T) {
	binder := NewBinder(devConfig())

	written := httptest.NewRecorder()
	binder.WritePair(written, "a", "r")

	cleared := httptest.NewRecorder()
	binder.Clear(cleared)

	wrote := written.Result().Cookies()
	clrd := cleared.Result().Cookies()
	require.Len(t, clrd, 2)

	for i, c := range clrd {
		// A clearing Set-Cookie with a different path or domain silently
		// fails to remove the original cookie.
		assert.Equal(t, wrote[i].Name, c.Name)
		assert.Equal(t, wrote[i].Path, c.Path)
		assert.Equal(t, wrote[i].Domain, c.Domain)
		assert.Equal(t, wrote[i].HttpOnly, c.HttpOnly)
		assert.Equal(t, wrote[i].Secure, c.Secure)
		assert.Less(t, c.MaxAge, 0)
		assert.Empty(t, c.Value)
	}
}

func TestClearIdempotent(t *testing.T) {
	binder := NewBinder(devConfig())

	first := httptest.NewRecorder()
	binder.Clear(first)
	second := httptest.NewRecorder()
	binder.Clear(second)

	assert.Equal(t, first.Header().Values("Set-Cookie"), second.Header().Values("Set-Cookie"))
}

func TestReadAccessPrefersCookie(t *testing.T) {
	binder := NewBinder(devConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "from-cookie"})
	r.Header.Set("Authorization", "Bearer from-header")

	token, ok := binder.ReadAccess(r)
	require.True(t, ok)
	assert.Equal(t, "from-cookie", token)
}

func TestReadAccessBearerFallback(t *testing.T) {
	binder := NewBinder(devConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer from-header")

	token, ok := binder.ReadAccess(r)
	require.True(t, ok)
	assert.Equal(t, "from-header", token)
}

func TestReadAccessAbsent(t *testing.T) {
	binder := NewBinder(devConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := binder.ReadAccess(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	_, ok = binder.ReadAccess(r)
	assert.False(t, ok)
}

func TestReadRefreshCookieOnly(t *testing.T) {
	binder := NewBinder(devConfig())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer not-a-refresh")
	_, ok := binder.ReadRefresh(r)
	assert.False(t, ok, "refresh token must never come from a header")

	r.AddCookie(&http.Cookie{Name: RefreshCookie, Value: "refresh-value"})
	token, ok := binder.ReadRefresh(r)
	require.True(t, ok)
	assert.Equal(t, "refresh-value", token)
}
