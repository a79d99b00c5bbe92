// Package store provides the two storage backends for the POS: a SQLite
// database for normal operation and an in-memory stand-in for environments
// without a writable disk.
//
// Both backends implement catalog.Store and invoice.Store. The invoice save
// path is the one multi-step operation in the system and is strictly
// atomic: header insert, item inserts and stock decrements either all apply
// or none do.
//
// # Database configuration (SQLite backend)
//
//   - WAL mode: readers do not block the commit path
//   - synchronous=NORMAL: durability/performance balance
//   - busy_timeout=5000: lock contention tolerance
//   - foreign_keys=ON: invoice items must reference live rows
//   - one connection: SQLite has a single writer; a second connection only
//     buys SQLITE_BUSY errors
//
// Money columns are TEXT and round-trip through shopspring/decimal. REAL
// columns would reintroduce binary-float drift into totals.
package store
