// Package store provides SQLite-backed durable storage for local payloads,
// the small keyed documents the cart hands to later steps (the checkout
// selection in particular).
//
// Writes are upserts: writing an existing key replaces its value and bumps
// its revision. Each write is stamped with a UUIDv7 write id and a UTC
// timestamp.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
