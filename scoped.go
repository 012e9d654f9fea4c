package tryrw

// TryReadFunc runs fn with shared access if it can be taken right now.
// It reports whether fn ran. Access is released when fn returns or panics.
//
// v must not be modified and must not escape fn.
func (l *TryRWLock[T]) TryReadFunc(fn func(v *T)) bool {
	g, ok := l.TryRead()
	if !ok {
		return false
	}
	defer g.Release()
	fn(&l.data)
	return true
}

// TryWriteFunc runs fn with exclusive access if it can be taken right now.
// It reports whether fn ran. Access is released when fn returns or panics.
//
// v must not escape fn.
func (l *TryRWLock[T]) TryWriteFunc(fn func(v *T)) bool {
	g, ok := l.TryWrite()
	if !ok {
		return false
	}
	defer g.Release()
	fn(&l.data)
	return true
}
