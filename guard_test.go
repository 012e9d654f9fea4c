package tryrw

import (
	"errors"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"

	. "github.com/llxisdsh/tryrw/internal/opt" // nolint:staticcheck
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s did not panic", name)
		}
	}()
	fn()
}

func TestGuard_ReleaseIsIdempotent(t *testing.T) {
	lock := New(0)

	g1, _ := lock.TryRead()
	g2, _ := lock.TryRead()
	g1.Release()
	g1.Release()
	if n := lock.state.load(); n != 1 {
		t.Fatalf("readers=%d after double release, want 1", n)
	}
	g2.Release()

	w, _ := lock.TryWrite()
	w.Release()
	w.Release()
	if n := lock.state.load(); n != 0 {
		t.Fatalf("readers=%d after double write release, want 0", n)
	}

	var nilRead *ReadGuard[int]
	nilRead.Release()
	var nilWrite *WriteGuard[int]
	nilWrite.Release()
}

func TestGuard_UseAfterRelease(t *testing.T) {
	lock := New(0)

	g, _ := lock.TryRead()
	g.Release()
	mustPanic(t, "ReadGuard.Value", func() { g.Value() })
	mustPanic(t, "ReadGuard.TryUpgrade", func() { g.TryUpgrade() })

	w, _ := lock.TryWrite()
	w.Release()
	mustPanic(t, "WriteGuard.Store", func() { w.Store(1) })
	mustPanic(t, "WriteGuard.Downgrade", func() { w.Downgrade() })
}

func TestGuard_ConversionsRetireSource(t *testing.T) {
	lock := New(0)

	r, _ := lock.TryRead()
	w, ok := r.TryUpgrade()
	if !ok {
		t.Fatal("upgrade failed as sole reader")
	}
	// The consumed read guard must not decrement the writer sentinel.
	r.Release()
	if !lock.state.isWriting() {
		t.Fatalf("readers=%d, want writing", lock.state.load())
	}
	mustPanic(t, "consumed ReadGuard.Value", func() { r.Value() })

	r = w.Downgrade()
	// Nor may the consumed write guard free the lock under the new reader.
	w.Release()
	if n := lock.state.load(); n != 1 {
		t.Fatalf("readers=%d after downgrade, want 1", n)
	}
	r.Release()
	if n := lock.state.load(); n != 0 {
		t.Fatalf("readers=%d, want free", n)
	}
}

func TestGuard_DowngradeSeesOwnWrite(t *testing.T) {
	lock := New("Hello World!")
	w, _ := lock.TryWrite()
	w.Store("Foo")
	r := w.Downgrade()
	defer r.Release()
	if r.Value() != "Foo" {
		t.Fatalf("downgraded guard saw %q", r.Value())
	}
	if *r.Ptr() != "Foo" {
		t.Fatalf("downgraded guard pointer saw %q", *r.Ptr())
	}
	if _, ok := lock.TryWrite(); ok {
		t.Fatal("writer admitted after downgrade")
	}
}

func TestGuard_ReleaseRestoresState(t *testing.T) {
	lock := New(0)

	const n = 5
	guards := make([]*ReadGuard[int], 0, n)
	for range n {
		g, ok := lock.TryRead()
		if !ok {
			t.Fatal("reader rejected")
		}
		guards = append(guards, g)
	}
	for i, g := range guards {
		g.Release()
		if got, want := lock.state.load(), uintptr(n-i-1); got != want {
			t.Fatalf("readers=%d, want %d", got, want)
		}
	}
	w, ok := lock.TryWrite()
	if !ok {
		t.Fatal("writer rejected after last reader left")
	}
	w.Release()
	w, ok = lock.TryWrite()
	if !ok {
		t.Fatal("writer rejected after writer left")
	}
	w.Release()
}

var errExclusion = errors.New("exclusion violated")

func TestGuard_ReadersAndWriters(t *testing.T) {
	type pair struct{ a, b int }
	lock := New(pair{})

	loops := 20000
	if Race_ {
		loops = 2000
	}

	var writers, readers atomic.Int32
	var g errgroup.Group
	for range 4 {
		g.Go(func() error {
			for range loops {
				r, ok := lock.TryRead()
				if !ok {
					continue
				}
				readers.Add(1)
				v := r.Value()
				bad := writers.Load() != 0 || v.a != v.b
				readers.Add(-1)
				r.Release()
				if bad {
					return errExclusion
				}
			}
			return nil
		})
	}
	for range 2 {
		g.Go(func() error {
			for range loops {
				w, ok := lock.TryWrite()
				if !ok {
					continue
				}
				if writers.Add(1) != 1 || readers.Load() != 0 {
					w.Release()
					return errExclusion
				}
				p := w.Ptr()
				p.a++
				p.b++
				writers.Add(-1)
				w.Release()
			}
			return nil
		})
	}
	g.Go(func() error {
		for range loops {
			r, ok := lock.TryRead()
			if !ok {
				continue
			}
			w, ok := r.TryUpgrade()
			if !ok {
				r.Release()
				continue
			}
			if writers.Add(1) != 1 || readers.Load() != 0 {
				w.Release()
				return errExclusion
			}
			w.Ptr().a++
			w.Ptr().b++
			writers.Add(-1)
			w.Downgrade().Release()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if n := lock.state.load(); n != 0 {
		t.Fatalf("readers=%d after all guards released, want 0", n)
	}
	v := lock.IntoInner()
	if v.a != v.b {
		t.Fatalf("torn value %+v", v)
	}
}

func TestGuard_ConcurrentWritersOneWins(t *testing.T) {
	lock := New(0)
	const n = 16

	var wins atomic.Int32
	start := make(chan struct{})
	held := make(chan *WriteGuard[int], n)
	var g errgroup.Group
	for range n {
		g.Go(func() error {
			<-start
			if w, ok := lock.TryWrite(); ok {
				wins.Add(1)
				held <- w
			}
			return nil
		})
	}
	close(start)
	_ = g.Wait()
	close(held)
	if got := wins.Load(); got != 1 {
		t.Fatalf("%d writers won, want exactly 1", got)
	}
	for w := range held {
		w.Release()
	}
}
