package tryrw

import (
	"fmt"
)

// TryRWLock is a non-blocking Reader-Writer lock that owns the value it
// protects.
//
// It grants either shared access to any number of readers or exclusive access
// to a single writer. Acquisition never waits: TryRead and TryWrite return
// false when the requested mode is not available right now, and the caller
// decides whether and how to retry.
//
// Properties:
//   - Lock-free: every operation is a bounded number of atomic steps.
//   - No fairness: a steady stream of readers can keep a writer out.
//   - Not re-entrant: a goroutine holding a guard must release it before
//     asking for another mode (use TryUpgrade/Downgrade to switch).
//
// The value is reachable only through a live guard, or through GetMut and
// IntoInner when the caller owns the lock outright.
//
// The zero value is an unlocked lock wrapping the zero T.
// A TryRWLock must not be copied after first use.
//
// Size: 8 bytes (plus T).
type TryRWLock[T any] struct {
	_     noCopy
	state rwState
	data  T
}

// New creates an unlocked TryRWLock wrapping data.
func New[T any](data T) *TryRWLock[T] {
	return &TryRWLock[T]{data: data}
}

// TryRead attempts to take shared read access.
//
// It fails if the lock is held by a writer, or if the reader count has
// saturated the counter.
func (l *TryRWLock[T]) TryRead() (*ReadGuard[T], bool) {
	if !l.state.tryRLock() {
		return nil, false
	}
	return &ReadGuard[T]{lock: l}, true
}

// TryWrite attempts to take exclusive write access.
//
// It fails if the lock is held by anyone, reader or writer.
func (l *TryRWLock[T]) TryWrite() (*WriteGuard[T], bool) {
	if !l.state.tryLock() {
		return nil, false
	}
	return &WriteGuard[T]{lock: l}, true
}

// GetMut returns a pointer to the protected value without locking.
//
// The caller must own the lock exclusively: no guards outstanding and no
// other goroutine able to reach l.
func (l *TryRWLock[T]) GetMut() *T {
	return &l.data
}

// IntoInner reclaims the protected value and retires the lock.
//
// A retired lock rejects every later TryRead and TryWrite. IntoInner panics
// if any guard is still outstanding.
func (l *TryRWLock[T]) IntoInner() T {
	if !l.state.tryLock() {
		fatal("IntoInner with outstanding guards")
	}
	v := l.data
	var zero T
	l.data = zero
	return v
}

// String renders the protected value if a read can be taken right now,
// otherwise a <locked> placeholder.
func (l *TryRWLock[T]) String() string {
	g, ok := l.TryRead()
	if !ok {
		return "TryRWLock{data: <locked>}"
	}
	defer g.Release()
	return fmt.Sprintf("TryRWLock{data: %v}", g.lock.data)
}
