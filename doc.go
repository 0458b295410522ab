// Package goAuthClient exchanges user credentials for an authenticated session against a
// remote identity endpoint and materializes the result locally.
//
// A [Client] is assembled once with [Builder.Build] and hands out a [Submitter] per form
// (login or signup). Submitter.Attempt validates the credentials, guarantees at most one
// exchange in flight, decodes the response into a typed outcome, routes errors to the
// right input or to a general notification, and persists successful sessions through the
// injected [session.Store]. Progress is reported to a [Listener] as [Signal] values.
//
// # Architecture boundaries
//
// The root package orchestrates. Wire formats live in codec, roles in role, the network
// in transport, persistence in session. Sub-packages never import the root package.
//
// # What this package must NOT do
//
//   - Log or audit passwords or tokens.
//   - Retry an exchange or queue attempts; one attempt yields one outcome.
//   - Block Attempt on the network.
package goAuthClient
