package tryrw

import (
	"github.com/llxisdsh/pb"

	. "github.com/llxisdsh/tryrw/internal/opt" // nolint:staticcheck
)

// TryRWLockGroup allows non-blocking Reader-Writer locking on arbitrary keys.
// It matches TryRWLock's acquisition rules but guards no value: callers
// coordinate access to whatever the key names.
//
// Features:
//   - TryRLock/RUnlock for shared read access.
//   - TryLock/Unlock for exclusive write access.
//   - TryUpgrade/Downgrade to switch modes without releasing.
//   - Infinite Keys & Auto-Cleanup: a key's entry exists only while held.
//
// Usage:
//
//	var group TryRWLockGroup[string]
//
//	if group.TryRLock("config") {
//		read(config)
//		group.RUnlock("config")
//	}
//
//	if group.TryLock("config") {
//		write(config)
//		group.Unlock("config")
//	}
//
// Releasing a key that is not held is a no-op.
type TryRWLockGroup[K comparable] struct {
	_ noCopy
	m pb.MapOf[K, *groupEntry]
}

// groupEntry leads with the pad so a disabled (zero-size) LinePad_ adds no
// trailing padding.
type groupEntry struct {
	_     LinePad_
	state rwState
}

// acquire runs try against the key's state, creating the entry on demand and
// dropping it again if the attempt left the key free.
func (g *TryRWLockGroup[K]) acquire(k K, try func(s *rwState) bool) bool {
	_, ok := g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil {
				e := &groupEntry{}
				if !try(&e.state) {
					return nil, nil, false
				}
				return &pb.EntryOf[K, *groupEntry]{Value: e}, e, true
			}
			return l, l.Value, try(&l.Value.state)
		},
	)
	return ok
}

// release runs rel against a held key and removes the entry once free.
func (g *TryRWLockGroup[K]) release(k K, held func(s *rwState) bool, rel func(s *rwState)) {
	_, _ = g.m.ProcessEntry(
		k,
		func(l *pb.EntryOf[K, *groupEntry]) (*pb.EntryOf[K, *groupEntry], *groupEntry, bool) {
			if l == nil || !held(&l.Value.state) {
				return l, nil, false
			}
			rel(&l.Value.state)
			if l.Value.state.load() == 0 {
				return nil, nil, true
			}
			return l, l.Value, true
		},
	)
}

// TryRLock attempts to take shared access on k.
func (g *TryRWLockGroup[K]) TryRLock(k K) bool {
	return g.acquire(k, (*rwState).tryRLock)
}

// TryLock attempts to take exclusive access on k.
func (g *TryRWLockGroup[K]) TryLock(k K) bool {
	return g.acquire(k, (*rwState).tryLock)
}

// RUnlock releases one shared hold on k.
func (g *TryRWLockGroup[K]) RUnlock(k K) {
	g.release(k, (*rwState).isReading, (*rwState).rUnlock)
}

// Unlock releases the exclusive hold on k.
func (g *TryRWLockGroup[K]) Unlock(k K) {
	g.release(k, (*rwState).isWriting, (*rwState).unlock)
}

// TryUpgrade converts the caller's shared hold on k into exclusive access.
// It succeeds only when the caller is k's sole reader; on failure the
// shared hold is kept.
func (g *TryRWLockGroup[K]) TryUpgrade(k K) bool {
	v, _ := g.m.Load(k)
	return v != nil && v.state.tryUpgrade()
}

// Downgrade converts the caller's exclusive hold on k into a shared hold.
func (g *TryRWLockGroup[K]) Downgrade(k K) {
	if v, _ := g.m.Load(k); v != nil && v.state.isWriting() {
		v.state.downgrade()
	}
}

// Len returns the number of keys currently held.
func (g *TryRWLockGroup[K]) Len() int {
	return g.m.Size()
}
