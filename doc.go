// Package shopguard implements the authentication core of the storefront
// backend: paired short-lived access / long-lived refresh JWTs, a
// Redis-backed single-session-per-subject record, cookie transport, and a
// request identity gate.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build]. All cross-request state lives in Redis and the user store;
// the Engine itself holds no mutable state.
//
// Typical wiring:
//
//	engine, err := shopguard.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithUserProvider(users).
//		WithLogger(logger).
//		Build()
//
// See the jwt, session, transport, and middleware subpackages for the
// individual building blocks, and httpapi for the HTTP surface.
package shopguard
