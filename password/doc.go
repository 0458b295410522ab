// Package password derives symmetric keys from user passphrases with Argon2id.
//
// Session stores that keep tokens on disk use a derived key to encrypt each record.
// Parameters are validated against conservative minimums at construction time.
//
// # What this package must NOT do
//
//   - Store or retrieve passphrases or derived keys.
//   - Import any other goAuthClient package.
//   - Log passphrases or key material.
package password
