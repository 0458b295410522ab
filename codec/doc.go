// Package codec translates between credentials and the identity endpoint's JSON wire
// format.
//
// Decoding is the boundary where raw responses become typed [Outcome] values: every
// (status, body) pair maps to exactly one of [Success], [FieldError], [GenericError] or
// [TransportFailure]. Nothing downstream inspects raw server strings.
//
// # Wire format
//
//	request:  {"username": "...", "password": "..."}
//	201:      {"token": "...", "roles": ["ADMIN", ...]}
//	other:    {"error": "USERNAME_ERROR" | "PASSWORD_ERROR" | ..., "message": "..."}
package codec
