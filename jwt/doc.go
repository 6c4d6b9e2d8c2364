// Package jwt inspects bearer tokens on the client side. The only question it
// answers is "should this token still be sent", using the embedded expiry
// claim and a safety margin.
//
// # Design
//
// The client never holds the server's verification keys, so tokens are
// decoded without signature verification; the server stays the authority on
// validity. Decoding is fail-closed: an empty, malformed, or claimless token
// is always reported as expired, never as usable.
//
// # What this package must NOT do
//
//   - Perform I/O or mutate any state; [Inspector.IsExpired] is pure.
//   - Accept a token as valid because verification was skipped.
package jwt
