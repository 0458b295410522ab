// Package session holds the materialized [Session] model, its compact binary encoding,
// and the [Store] capability the client persists sessions through.
//
// # Stores
//
// [Store] is the only contract the exchange core depends on. Adapters shipped here:
//
//   - [MemoryStore]: process-local, for tests and short-lived tools.
//   - [RedisStore]: Redis keys with TTL plus an account index set.
//   - [FileStore]: one encrypted file per account (XChaCha20-Poly1305, Argon2id key).
//   - [PostgresStore]: a single upserted row per account.
//
// Stores that need setup implement [Opener]; the client builder opens them once before
// first use. No store is reachable through package-level state.
//
// # Binary encoding
//
// [Encode] and [Decode] produce a versioned, length-prefixed record used by the Redis and
// file stores. New versions may append fields but never reinterpret old ones.
//
// # What this package must NOT do
//
//   - Import goAuthClient or codec (no upward imports).
//   - Decide whether a token is valid; it only stores what it is given.
package session
