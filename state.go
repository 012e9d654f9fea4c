package tryrw

import (
	"sync/atomic"
)

// rwWriting is the counter value that marks exclusive access.
// It doubles as the saturation point for readers: once MAX readers are
// registered the lock is indistinguishable from being written and further
// readers are rejected until one of them leaves.
const rwWriting = ^uintptr(0)

// rwState is the non-blocking Reader-Writer state machine backed by a single
// uintptr.
//
// States:
//   - 0:          free
//   - 1..MAX-1:   that many readers
//   - MAX:        one writer (or MAX readers)
//
// Every transition is a single atomic load, CAS or store. Nothing spins
// waiting for another holder: a contended request simply reports false.
type rwState struct {
	readers atomic.Uintptr
}

// tryRLock registers one more reader.
// It retries only while the count keeps moving under it; an observed
// writer (or saturation) fails immediately.
func (s *rwState) tryRLock() bool {
	r := s.readers.Load()
	for r != rwWriting {
		if s.readers.CompareAndSwap(r, r+1) {
			return true
		}
		r = s.readers.Load()
	}
	return false
}

// tryLock takes exclusive access. A writer never retries.
func (s *rwState) tryLock() bool {
	return s.readers.CompareAndSwap(0, rwWriting)
}

func (s *rwState) rUnlock() {
	s.readers.Add(^uintptr(0))
}

func (s *rwState) unlock() {
	s.readers.Store(0)
}

// tryUpgrade converts the caller's read hold into a write hold.
// Only succeeds when the caller is the sole reader.
func (s *rwState) tryUpgrade() bool {
	return s.readers.CompareAndSwap(1, rwWriting)
}

// downgrade converts the caller's write hold into a single read hold.
// The caller is exclusive, so a plain store is enough.
func (s *rwState) downgrade() {
	s.readers.Store(1)
}

func (s *rwState) isReading() bool {
	r := s.readers.Load()
	return r != 0 && r != rwWriting
}

func (s *rwState) isWriting() bool {
	return s.readers.Load() == rwWriting
}

func (s *rwState) load() uintptr {
	return s.readers.Load()
}
