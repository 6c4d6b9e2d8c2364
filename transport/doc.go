// Package transport is the authenticated request pipeline between the client
// and the storefront API.
//
// # Design
//
// Every outbound call gets a bearer token from the token source before send
// and a correlation id for logging. A 401 response triggers exactly one
// forced refresh and one resend of the original request; a request that has
// already been retried propagates the failure instead of looping. All error
// responses are translated into the uniform [APIError] shape.
//
// # What this package must NOT do
//
//   - Mutate session state; it only reads tokens through the token source.
//   - Retry non-auth failures; transient errors are the caller's decision.
//   - Retry an auth failure more than once per request.
package transport
