// Package store provides the generic observable state container every
// commerce store is built on.
//
// # Overview
//
// A Store[T] owns one value. Readers get copies; writers go through Update,
// which applies a pure function to the previous state:
//
//	err := s.Update(func(prev Cart) (Cart, error) {
//		if full(prev) {
//			return prev, ErrFull      // rejected, nothing changes
//		}
//		if !changes(prev) {
//			return prev, store.ErrUnchanged // no-op, nothing notified or saved
//		}
//		return next(prev), nil
//	})
//
// A successful update runs three steps in order, all before Update returns:
//
//  1. commit the new value in memory
//  2. call every subscriber synchronously, in registration order
//  3. save through the Persister
//
// # Concurrency Model
//
// Update holds a per-store mutex for the whole commit → notify → save cycle,
// so updates on one store are applied in call order and no reader ever sees a
// half-applied state. State takes a read lock and may be called from
// listeners; Update may not (the listener would wait on itself).
//
// # Persistence Failures
//
// A failed save never rolls back the commit. The error is logged, kept for
// LastPersistError, and passed to the handler set with
// WithPersistErrorHandler. The next successful save clears it.
//
// # Copying
//
// Stores holding slices or maps must pass WithClone so snapshots handed to
// callers and listeners cannot alias internal state.
package store
