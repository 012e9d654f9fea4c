package tryrw

import (
	"fmt"
)

// ReadGuard holds shared read access to a TryRWLock.
//
// Release it exactly when the critical section ends, normally with
// defer g.Release(). Release is idempotent; any other method called after
// release (or after a successful TryUpgrade) panics.
//
// A guard belongs to the goroutine that acquired it. Other goroutines that
// want to read must take their own guard.
type ReadGuard[T any] struct {
	lock *TryRWLock[T]
}

// live returns the guarded lock, or panics if g was retired.
func (g *ReadGuard[T]) live() *TryRWLock[T] {
	if g == nil || g.lock == nil {
		fatal("use of released ReadGuard")
	}
	return g.lock
}

// Value returns a copy of the protected value.
func (g *ReadGuard[T]) Value() T {
	return g.live().data
}

// Ptr returns a pointer to the protected value.
// The pointee must not be modified and the pointer must not outlive g.
func (g *ReadGuard[T]) Ptr() *T {
	return &g.live().data
}

// Release gives up shared access.
func (g *ReadGuard[T]) Release() {
	if g == nil || g.lock == nil {
		return
	}
	l := g.lock
	g.lock = nil
	l.state.rUnlock()
}

// TryUpgrade converts g into exclusive write access.
//
// It succeeds only when g is the sole reader. On success g is consumed (its
// release obligation moves to the returned WriteGuard). On failure g is left
// untouched and still holds shared access.
func (g *ReadGuard[T]) TryUpgrade() (*WriteGuard[T], bool) {
	l := g.live()
	if !l.state.tryUpgrade() {
		return nil, false
	}
	g.lock = nil
	return &WriteGuard[T]{lock: l}, true
}

// String renders the protected value.
func (g *ReadGuard[T]) String() string {
	return fmt.Sprint(g.live().data)
}

// WriteGuard holds exclusive write access to a TryRWLock.
//
// The same release rules as ReadGuard apply.
type WriteGuard[T any] struct {
	lock *TryRWLock[T]
}

func (g *WriteGuard[T]) live() *TryRWLock[T] {
	if g == nil || g.lock == nil {
		fatal("use of released WriteGuard")
	}
	return g.lock
}

// Value returns a copy of the protected value.
func (g *WriteGuard[T]) Value() T {
	return g.live().data
}

// Ptr returns a pointer to the protected value for in-place mutation.
// The pointer must not outlive g.
func (g *WriteGuard[T]) Ptr() *T {
	return &g.live().data
}

// Store replaces the protected value.
func (g *WriteGuard[T]) Store(v T) {
	g.live().data = v
}

// Release gives up exclusive access, leaving the lock free.
func (g *WriteGuard[T]) Release() {
	if g == nil || g.lock == nil {
		return
	}
	l := g.lock
	g.lock = nil
	l.state.unlock()
}

// Downgrade converts g into shared read access without a window in which the
// lock is free. It always succeeds and consumes g.
func (g *WriteGuard[T]) Downgrade() *ReadGuard[T] {
	l := g.live()
	g.lock = nil
	l.state.downgrade()
	return &ReadGuard[T]{lock: l}
}

// String renders the protected value.
func (g *WriteGuard[T]) String() string {
	return fmt.Sprint(g.live().data)
}
