// Package store provides the SQLite-backed run journal.
//
// Every scenario run can be journaled: one row per run and one row per
// executed step, holding the rendered output as canonical JSON and its
// snapshot hash. Journals drive the trace and replay commands.
//
// # Critical Patterns
//
// Logical time:
//   - runs and steps are ordered by seq INTEGER, never by timestamps
//   - run seq is assigned by the store; step seq is the step's position
//
// Deterministic queries:
//   - every listing includes ORDER BY seq ASC, id ASC COLLATE BINARY
//
// Idempotent writes:
//   - rewriting a run or step with the same key is silently ignored
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
