// Package stubserver is an in-process identity endpoint speaking the client's wire
// format. The CLI's serve-stub command, the minimal example and end-to-end tests use it.
//
// Passwords are kept as Argon2id keys, and issued tokens are HS256 JWTs carrying sub,
// iat and exp.
package stubserver
