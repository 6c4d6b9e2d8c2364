// Package session owns the locally cached authenticated identity: the user
// record, the access/refresh token pair, and the store that persists them
// through an injected storage capability.
//
// # Architecture boundaries
//
// [Store] is the single writer of session state. The engine and the refresh
// coordinator mutate it; the request pipeline and application code only read.
// The token pair is one unit: SetTokens replaces both values and ClearAll
// removes both together with the cached user and dependent caches.
//
// # What this package must NOT do
//
//   - Perform network I/O or decide when a token is expired.
//   - Import shopauth or the transport/refresh packages.
package session
