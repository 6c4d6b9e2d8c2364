// Package storage defines the key-value capability the session layer persists
// through, plus the bundled implementations (in-memory, JSON file, Redis).
//
// # Architecture boundaries
//
// This package owns durable key naming and raw string persistence. It knows
// nothing about tokens, users, or serialization formats; those belong to the
// session package, which is the only intended consumer of [KV].
//
// # What this package must NOT do
//
//   - Interpret stored values (no JSON decoding, no token parsing).
//   - Import shopauth or any sibling package.
//   - Treat a missing key as an error; absence is (value="", ok=false).
package storage
