// Package worker runs the counter transaction lifecycle.
//
// A Counter serializes actions: at most one build, simulate, sign, submit,
// confirm and resolve cycle is in flight, a second action is rejected with
// chain.ErrOperationInProgress. Each action returns a Completion and its
// outcome is published to subscribers and kept in a bounded history.
//
// Cancelling the context of an action only stops waiting for confirmation.
// A transaction that was already submitted may still be applied on ledger,
// the next refresh observes it.
package worker
