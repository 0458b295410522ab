// Package jwt inspects bearer tokens returned by the identity endpoint.
//
// The endpoint's tokens are opaque to the exchange protocol. When a token happens to be
// a JWT, its registered claims (expiry, subject, issue time) tell the client how long the
// materialized session stays useful. Signature verification is optional and only happens
// when a verification key is configured.
package jwt
