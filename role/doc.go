// Package role provides the closed role enumeration granted by the identity endpoint
// and a bitmask role set used by sessions.
//
// # Wire names
//
// Roles travel as upper-case strings ("ADMIN", "MANAGER", "USER"). [ParseSet] is the
// single boundary where wire strings become typed roles; values outside the enumeration
// are dropped there and reported back to the caller, never carried into a [Set].
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import goAuthClient, codec, or session.
package role
