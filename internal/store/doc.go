// Package store keeps a SQLite history of test runs.
//
// Each run is one row in runs, keyed by a UUIDv7 so ids sort by creation
// time. Its cases live in cases, keyed by (run_id, idx) in fixture order.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: cases are deleted with their run
//
// Timestamps are stored as RFC 3339 UTC text.
package store
