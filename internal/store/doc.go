// Package store provides SQLite-backed persistence for the job service.
//
// Each submitted circuit becomes one row in the jobs table. Rows move
// through the same lifecycle the polling client observes:
//
//	QUEUED -> RUNNING -> DONE | ERROR
//	QUEUED | RUNNING  -> CANCELLED
//
// Transitions are guarded in SQL (UPDATE ... WHERE status = ?) so a job can
// never leave a terminal state, and ClaimNext hands each queued job to
// exactly one worker.
//
// # Ordering
//
// Queue order uses the seq column (AUTOINCREMENT), never timestamps.
// Every list query is ORDER BY seq ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Circuits are stored as canonical JSON next to their fingerprint
// (circuit.Fingerprint) so identical submissions are easy to spot.
package store
