package shopguard

import (
	"context"
	"crypto/subtle"
	"errors"

	"go.uber.org/zap"

	"github.com/calebrossi/shopguard/jwt"
	"github.com/calebrossi/shopguard/session"
)

// Engine orchestrates the token lifecycle: issuance on signup/login,
// verification on every authenticated request, access-token reissue on
// refresh, revocation on logout. It enforces consistency between signed
// token claims and the session store.
//
// Per-subject session state machine: no session → active (IssuePair) →
// active (RefreshAccess, no transition) → no session (Revoke or natural
// store expiry). Issuing a new pair for a subject overwrites the prior
// record, so the most recent login wins and earlier sessions are implicitly
// invalidated.
type Engine struct {
	config   Config
	codec    *jwt.Codec
	sessions *session.Store
	users    UserProvider
	log      *zap.Logger
}

// IssuePair mints an access/refresh token pair for subjectID and records the
// refresh token as the subject's single active session. A store failure
// fails the whole operation: handing out an access token without a persisted
// refresh token would strand the subject with a session that can never be
// refreshed.
func (e *Engine) IssuePair(ctx context.Context, subjectID string) (TokenPair, error) {
	if e == nil || e.codec == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	access, err := e.codec.Issue(jwt.DomainAccess, subjectID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.codec.Issue(jwt.DomainRefresh, subjectID)
	if err != nil {
		return TokenPair{}, err
	}

	if err := e.sessions.Put(ctx, subjectID, refresh, e.config.JWT.RefreshTTL); err != nil {
		e.log.Error("session record write failed", zap.String("subject", subjectID), zap.Error(err))
		return TokenPair{}, err
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// RefreshAccess verifies refreshToken, checks it against the store's current
// record for its subject, and on success mints a new access token. The
// refresh token itself is never reissued here: its original expiry is a hard
// session ceiling, and a stolen refresh token stays valid for its full
// lifetime. That trade-off is inherited, not an oversight.
//
// Returns jwt.ErrExpired / jwt.ErrSignatureInvalid / jwt.ErrMalformed when
// the token fails verification, ErrSessionMismatch when it is no longer the
// active one, and session.ErrUnavailable on store trouble.
func (e *Engine) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	if e == nil || e.codec == nil {
		return "", ErrEngineNotReady
	}

	subjectID, err := e.codec.Verify(jwt.DomainRefresh, refreshToken)
	if err != nil {
		return "", err
	}

	stored, err := e.sessions.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", ErrSessionMismatch
		}
		e.log.Warn("session record read failed", zap.String("subject", subjectID), zap.Error(err))
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(refreshToken)) != 1 {
		return "", ErrSessionMismatch
	}

	return e.codec.Issue(jwt.DomainAccess, subjectID)
}

// Revoke ends the session the refresh token belongs to. Verification failure
// is treated as success: an expired or garbled refresh token already cannot
// start a session, which is the state Revoke exists to reach. A store
// failure during the delete does surface, since the session would otherwise
// silently stay alive.
func (e *Engine) Revoke(ctx context.Context, refreshToken string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	subjectID, err := e.codec.Verify(jwt.DomainRefresh, refreshToken)
	if err != nil {
		e.log.Debug("revoke skipped for unverifiable refresh token", zap.Error(err))
		return nil
	}

	if err := e.sessions.Delete(ctx, subjectID); err != nil {
		e.log.Warn("session record delete failed", zap.String("subject", subjectID), zap.Error(err))
		return err
	}
	return nil
}

// Authenticate verifies an access token and resolves the full identity from
// the user store. A deleted account holding a still-valid token yields
// ErrUserNotFound.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	if e == nil || e.codec == nil {
		return nil, ErrEngineNotReady
	}

	subjectID, err := e.codec.Verify(jwt.DomainAccess, accessToken)
	if err != nil {
		return nil, err
	}

	identity, err := e.users.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		e.log.Warn("identity lookup failed", zap.String("subject", subjectID), zap.Error(err))
		return nil, err
	}
	return identity, nil
}

// Sessions exposes the store for health checks.
func (e *Engine) Sessions() *session.Store { return e.sessions }
