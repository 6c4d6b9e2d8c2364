// Package flows contains the session facade's orchestration logic: login,
// register, logout, and session initialization, written against injected
// dependency functions so each flow is testable without the engine.
//
// # Architecture boundaries
//
// Flows decide ordering and failure classification. They do not own HTTP
// details (the deps' Post func does) and do not own persistence (the deps'
// store funcs do). The root package maps failure kinds to sentinel errors.
//
// # What this package must NOT do
//
//   - Import the root shopauth package or the transport package.
//   - Mutate stored state on a rejected login or register.
package flows
