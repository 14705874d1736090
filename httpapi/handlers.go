// Package httpapi exposes the authentication routes over HTTP. Everything
// else in the backend (catalog, cart, payment) mounts alongside this router
// and reuses the gate for protected routes.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	shopguard "github.com/calebrossi/shopguard"
	"github.com/calebrossi/shopguard/jwt"
	"github.com/calebrossi/shopguard/middleware"
	"github.com/calebrossi/shopguard/password"
	"github.com/calebrossi/shopguard/session"
	"github.com/calebrossi/shopguard/transport"
)

// Handler carries the auth route dependencies.
type Handler struct {
	engine *shopguard.Engine
	users  shopguard.UserProvider
	hasher *password.Argon2
	binder *transport.Binder
	gate   *middleware.Gate
	log    *zap.Logger
}

// NewHandler wires the auth handlers.
func NewHandler(
	engine *shopguard.Engine,
	users shopguard.UserProvider,
	hasher *password.Argon2,
	binder *transport.Binder,
	log *zap.Logger,
) *Handler {
	return &Handler{
		engine: engine,
		users:  users,
		hasher: hasher,
		binder: binder,
		gate:   middleware.NewGate(engine, binder),
		log:    log,
	}
}

// Gate exposes the identity gate so other route groups can guard themselves.
func (h *Handler) Gate() *middleware.Gate { return h.gate }

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates the account, issues the token pair, and sets both cookies.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	identity, err := h.users.Create(r.Context(), shopguard.CreateUserInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, shopguard.ErrAccountExists) {
			respondMessage(w, http.StatusBadRequest, "user already exists")
			return
		}
		h.log.Error("signup: create user", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	pair, err := h.engine.IssuePair(r.Context(), identity.ID)
	if err != nil {
		h.log.Error("signup: issue pair", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.binder.WritePair(w, pair.Access, pair.Refresh)
	respondJSON(w, http.StatusCreated, map[string]any{
		"user":    identity,
		"message": "user created successfully",
	})
}

// Login verifies credentials, issues the pair, and sets both cookies. Wrong
// email and wrong password are indistinguishable in the response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}

	cred, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, shopguard.ErrUserNotFound) {
			respondMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error("login: lookup", zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	ok, err := h.hasher.Verify(req.Password, cred.PasswordHash)
	if err != nil || !ok {
		respondMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	pair, err := h.engine.IssuePair(r.Context(), cred.ID)
	if err != nil {
		h.log.Error("login: issue pair", zap.String("subject", cred.ID), zap.Error(err))
		respondMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.binder.WritePair(w, pair.Access, pair.Refresh)
	respondJSON(w, http.StatusOK, cred.Identity)
}

// Logout revokes the session behind the refresh cookie and clears both
// cookies. A missing or dead refresh token still clears cookies and
// succeeds; logging out twice is a no-op.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := h.binder.ReadRefresh(r); ok {
		if err := h.engine.Revoke(r.Context(), token); err != nil {
			h.log.Error("logout: revoke", zap.Error(err))
			respondMessage(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	h.binder.Clear(w)
	respondMessage(w, http.StatusOK, "logged out successfully")
}

// Refresh mints a new access token from the refresh cookie and updates only
// the access cookie. The refresh token is left as is.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := h.binder.ReadRefresh(r)
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "no refresh token provided")
		return
	}

	access, err := h.engine.RefreshAccess(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrExpired),
			errors.Is(err, jwt.ErrMalformed),
			errors.Is(err, jwt.ErrSignatureInvalid),
			errors.Is(err, shopguard.ErrSessionMismatch):
			respondMessage(w, http.StatusUnauthorized, "invalid or expired refresh token")
		case errors.Is(err, session.ErrUnavailable):
			h.log.Error("refresh: session store", zap.Error(err))
			respondMessage(w, http.StatusInternalServerError, "internal server error")
		default:
			h.log.Error("refresh", zap.Error(err))
			respondMessage(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.binder.WriteAccess(w, access)
	respondJSON(w, http.StatusOK, map[string]string{
		"message":     "token refreshed successfully",
		"accessToken": access,
	})
}

// Profile returns the identity the gate attached to the request.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		respondMessage(w, http.StatusUnauthorized, "no token provided")
		return
	}
	respondJSON(w, http.StatusOK, identity)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
