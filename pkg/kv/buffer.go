package kv

import (
	"runtime"
	"sync/atomic"
	"unicode/utf8"

	"github.com/rzbill/kvbind/internal/engine"
)

// Buffer owns a value the engine allocated. Bytes borrows from it; the
// engine memory is returned by Release, which should be called once the
// caller is done reading. Release is idempotent; reading after it panics.
// A Buffer that becomes unreachable without Release is released by the
// garbage collector, so the Buffer must stay reachable while its bytes are in
// use.
type Buffer struct {
	slice    engine.Slice
	released atomic.Bool
}

func newBuffer(s engine.Slice) *Buffer {
	b := &Buffer{slice: s}
	runtime.SetFinalizer(b, (*Buffer).Release)
	return b
}

// Bytes returns the value. The slice is valid until Release and must not be
// retained past it.
func (b *Buffer) Bytes() []byte {
	if b.released.Load() {
		panic("kv: Buffer used after Release")
	}
	data := b.slice.Data()
	runtime.KeepAlive(b)
	return data
}

// UTF8 returns the value as text, or false when it is not valid UTF-8. The
// string is a copy and outlives the buffer.
func (b *Buffer) UTF8() (string, bool) {
	data := b.Bytes()
	defer runtime.KeepAlive(b)
	if !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

// Len is the value's length in bytes.
func (b *Buffer) Len() int { return len(b.Bytes()) }

// Release hands the memory back to the engine. Only the first call frees.
func (b *Buffer) Release() {
	if b.released.CompareAndSwap(false, true) {
		runtime.SetFinalizer(b, nil)
		b.slice.Free()
	}
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool { return b.released.Load() }
