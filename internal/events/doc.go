// Package events carries session lifecycle notifications (login, refresh,
// logout, session cleared/expired) from the engine to application code.
//
// # Design
//
// Emission is asynchronous through a buffered [Dispatcher] so a slow sink can
// never stall the request path. When the buffer is full and DropIfFull is
// set, events are counted as dropped instead of blocking.
//
// # What this package must NOT do
//
//   - Perform network I/O of its own.
//   - Import shopauth or any sibling package.
package events
