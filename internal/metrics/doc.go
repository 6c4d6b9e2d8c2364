// Package metrics provides lock-free counters for shopauth observability.
//
// # Design
//
// Counters are stored in a fixed array of cache-line-padded uint64 slots and
// incremented atomically. The write path is allocation-free; [Metrics.Snapshot]
// copies the counters into a map for callers.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import shopauth or any sibling package.
//   - Expose global metric registries.
package metrics
