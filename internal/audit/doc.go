// Package audit implements async event dispatching for credential exchanges and session
// changes.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, slog, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full or block-if-full semantics.
//   - [Event]: structured audit record with timestamp, type, attempt, account and outcome.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the submitter and client do.
//
// # What this package must NOT do
//
//   - Carry credentials or tokens in events.
//   - Import goAuthClient or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
