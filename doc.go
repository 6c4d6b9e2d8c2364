// Package shopauth is the client-side authentication and session core for a
// storefront REST API: token storage, expiry detection, silent single-flight
// refresh, and a request pipeline that retries exactly once after a refresh.
//
// The package is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (Credentials, AuthState, SessionEvent, MetricsSnapshot).
// Application code talks to [Engine]; everything else is plumbing under the
// sub-packages and internal/.
//
// # Architecture boundaries
//
// The session store is the sole owner of persisted state and is mutated only
// by the engine and the refresh coordinator. The transport pipeline and
// application code read tokens, never write them. Role predicates and state
// queries are pure reads with no network I/O.
//
// # What this package must NOT do
//
//   - Render UI or perform navigation. "Redirect to login" surfaces as the
//     OnUnauthenticated callback and a session_expired event; acting on them
//     is the application's job.
//   - Issue more than one concurrent refresh request, ever.
//   - Retry a request more than once after an authorization failure.
package shopauth
