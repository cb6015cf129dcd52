// Package store keeps the history of audit runs in SQLite.
//
// Each run stores its summary counts plus one row per validated record with
// the record's content digest, so later runs can tell which records changed.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: results cascade with their run
//
// Queries order deterministically: runs by started_at then id, results by
// kind then position.
package store
