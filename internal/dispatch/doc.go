// Package dispatch runs callbacks one at a time, in posting order, on a dedicated goroutine.
//
// A [Queue] is the control context of a submitter: every listener signal is posted to it,
// so listeners observe signals serially and in emission order. The queue is unbounded, so
// a callback may post further work (directly, or by starting a new attempt) without
// deadlocking the goroutine that runs it.
//
// # What this package must NOT do
//
//   - Know about signals, outcomes or sessions.
//   - Drop or reorder posted work before Close.
package dispatch
