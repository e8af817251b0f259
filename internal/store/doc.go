// Package store provides SQLite-backed persistent storage for catalog records.
//
// The store holds one table, stores, with one row per restaurant or place.
// It implements the Backend interface consumed by the import reconciler, the
// export serializer and the catalog service:
//   - Records: add, partial update, delete, clear, get, list, first-by-name
//   - RunAtomic: a group of Records operations applied as one transaction
//
// # Critical Patterns
//
// Identity is owned by the store
//   - id is INTEGER PRIMARY KEY AUTOINCREMENT; ids are never reused after delete/clear
//   - Add ignores any id on the incoming record
//
// Deterministic ordering
//   - List returns rows ORDER BY id ASC
//   - FindFirstByName returns the lowest id among rows sharing a name
//
// Invariants enforced by the schema
//   - name is non-blank (CHECK)
//   - delivery_threshold is NULL (unknown) or >= 0 (CHECK)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection: a RunAtomic body must only use the Records it is given
//
// The schema version is fixed at 1. Opening a database written by a newer
// schema fails rather than guessing at a downgrade.
package store
