// Package refresh owns the single-flight token refresh protocol.
//
// # Design
//
// At most one refresh request is ever in flight per [Coordinator]. The first
// caller to observe a missing or expiring access token becomes the winner and
// performs the network call; every caller that arrives while the refresh is
// in flight joins a FIFO waiter queue and blocks until the refresh settles.
//
// Settlement is asymmetric on purpose: a successful refresh broadcasts the
// new access token to all waiters in enqueue order, but a failed refresh
// reports the underlying cause only to the winner. Waiters observe a bare
// [ErrRefreshFailed]; their owning requests then fail independently at the
// pipeline layer, which is safe because any retried request would itself be
// rejected by the server. Tests assert this asymmetry; do not "fix" it into a
// symmetric broadcast.
//
// # What this package must NOT do
//
//   - Issue a second refresh while one is in flight.
//   - Leave a waiter blocked after the refresh settles.
//   - Keep any token state of its own; the session store is the only owner.
package refresh
