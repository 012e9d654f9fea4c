//go:build (!(amd64 || 386 || arm || mips || mipsle || wasm) || tryrw_enable_padding) && !tryrw_disable_padding

package opt

import (
	"unsafe"
)

// Padding_ reports whether LinePad_ occupies the rest of a cache line.
const Padding_ = true

// LinePad_ fills the remainder of a cache line after one word-sized counter.
// Padding is automatically enabled for architectures that are NOT:
// - amd64 (x86_64): Hardware optimizations often make padding less critical
// - 32-bit architectures (386, arm, mips, mipsle, wasm): Smaller cache lines/memory constraints
//
// Enabled for: arm64, s390x, ppc64, ppc64le, riscv64, loong64, mips64, mips64le, etc.
// Use: go build -tags=tryrw_enable_padding to force it on anywhere.
type LinePad_ [(CacheLineSize_ - unsafe.Sizeof(uintptr(0))%CacheLineSize_) % CacheLineSize_]byte
