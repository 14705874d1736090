package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shopguard "github.com/calebrossi/shopguard"
	"github.com/calebrossi/shopguard/httpapi"
	"github.com/calebrossi/shopguard/password"
	"github.com/calebrossi/shopguard/transport"
	"github.com/calebrossi/shopguard/userstore/memory"
)

type apiFixture struct {
	router *mux.Router
	redis  *miniredis.Miniredis
	users  *memory.Store
}

func newAPIFixture(t *testing.T, mutate func(*shopguard.Config)) *apiFixture {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := shopguard.DefaultConfig()
	cfg.App.Env = "test"
	cfg.JWT.AccessSecret = "test-access-secret-0123456789abcdef"
	cfg.JWT.RefreshSecret = "test-refresh-secret-0123456789abcdef"
	cfg.JWT.Leeway = 0
	cfg.Redis.Addr = mr.Addr()
	// Cheapest parameters the hasher accepts; this is a test, not a KDF
	// benchmark.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	if mutate != nil {
		mutate(&cfg)
	}

	users := memory.New()
	engine, err := shopguard.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		Build()
	require.NoError(t, err)

	hasher, err := password.NewArgon2(cfg.Password)
	require.NoError(t, err)

	handler := httpapi.NewHandler(engine, users, hasher, transport.NewBinder(cfg.Cookies()), zap.NewNop())
	return &apiFixture{router: handler.Router(), redis: mr, users: users}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, r)
	return rec
}

func (f *apiFixture) signup(t *testing.T) []*http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSignupSetsCookiePair(t *testing.T) {
	f := newAPIFixture(t, nil)
	cookies := f.signup(t)
	require.Len(t, cookies, 2)

	access := cookieByName(cookies, transport.AccessCookie)
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)
	assert.InDelta(t, 15*60, access.MaxAge, 5)

	refresh := cookieByName(cookies, transport.RefreshCookie)
	require.NotNil(t, refresh)
	assert.True(t, refresh.HttpOnly)
	assert.InDelta(t, 7*24*3600, refresh.MaxAge, 5)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.signup(t)

	rec := f.do(t, http.MethodPost, "/api/auth/signup",
		`{"name":"Alice","email":"alice@example.com","password":"correct-horse"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.signup(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var identity shopguard.Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&identity))
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, shopguard.RoleUser, identity.Role)
	assert.Len(t, rec.Result().Cookies(), 2)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.signup(t)

	rec := f.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"wrong-horse"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"nobody@example.com","password":"correct-horse"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code,
		"unknown email must be indistinguishable from wrong password")
}

func TestProfileWithAccessCookie(t *testing.T) {
	f := newAPIFixture(t, nil)
	cookies := f.signup(t)
	access := cookieByName(cookies, transport.AccessCookie)

	rec := f.do(t, http.MethodGet, "/api/auth/profile", "", []*http.Cookie{access})
	require.Equal(t, http.StatusOK, rec.Code)

	var identity shopguard.Identity
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&identity))
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestProfileWithoutToken(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "no token provided", body["message"])
}

func TestExpiredAccessRecoveredByRefresh(t *testing.T) {
	f := newAPIFixture(t, func(cfg *shopguard.Config) {
		cfg.JWT.AccessTTL = 20 * time.Millisecond
	})
	cookies := f.signup(t)
	access := cookieByName(cookies, transport.AccessCookie)
	refresh := cookieByName(cookies, transport.RefreshCookie)

	time.Sleep(50 * time.Millisecond)

	// Access token has expired, refresh is intact: the gate rejects, the
	// explicit refresh path succeeds.
	rec := f.do(t, http.MethodGet, "/api/auth/profile", "", []*http.Cookie{access})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "token expired", body["message"])

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	newAccess := cookieByName(rec.Result().Cookies(), transport.AccessCookie)
	require.NotNil(t, newAccess)
	require.NotEqual(t, access.Value, newAccess.Value)

	rec = f.do(t, http.MethodGet, "/api/auth/profile", "", []*http.Cookie{newAccess})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshLeavesRefreshCookieAlone(t *testing.T) {
	f := newAPIFixture(t, nil)
	cookies := f.signup(t)
	refresh := cookieByName(cookies, transport.RefreshCookie)

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", "", []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Nil(t, cookieByName(rec.Result().Cookies(), transport.RefreshCookie),
		"refresh must update only the access cookie")
}

func TestLogoutClearsAndRevokes(t *testing.T) {
	f := newAPIFixture(t, nil)
	cookies := f.signup(t)
	refresh := cookieByName(cookies, transport.RefreshCookie)

	rec := f.do(t, http.MethodPost, "/api/auth/logout", "", []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Less(t, c.MaxAge, 0)
	}

	// The revoked refresh token no longer refreshes.
	rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", []*http.Cookie{refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logging out again is a no-op, not an error.
	rec = f.do(t, http.MethodPost, "/api/auth/logout", "", []*http.Cookie{refresh})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSecondLoginInvalidatesFirstSession(t *testing.T) {
	f := newAPIFixture(t, nil)
	first := f.signup(t)
	firstRefresh := cookieByName(first, transport.RefreshCookie)

	rec := f.do(t, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"correct-horse"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/auth/refresh", "", []*http.Cookie{firstRefresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code,
		"a superseded refresh token must be rejected")
}

func TestRefreshStoreDown(t *testing.T) {
	f := newAPIFixture(t, nil)
	cookies := f.signup(t)
	refresh := cookieByName(cookies, transport.RefreshCookie)

	f.redis.Close()

	rec := f.do(t, http.MethodPost, "/api/auth/refresh", "", []*http.Cookie{refresh})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
