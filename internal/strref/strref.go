// Package strref implements a small reference-counted, copy-on-write text
// buffer for text that is shared across many holders without being
// mutated. The lexer and the macro engine do not use it; they keep token
// text in plain Go strings.
//
// No ecosystem library expresses "reference-counted immutable string" for
// Go; the garbage collector already reclaims unreferenced strings, so the
// refcount here exists purely to let callers eagerly release large
// temporary buffers (e.g. a fully macro-expanded line) without waiting for
// a GC cycle, per spec.md's distinct "String / byte-buffer" component.
package strref

import "sync/atomic"

// Ref is an immutable, reference-counted view over a byte slice. The zero
// Ref is not valid; use New or Builder.Ref.
type Ref struct {
	data  []byte
	count *atomic.Int32
}

// New wraps data in a Ref with an initial reference count of 1. data is
// not copied; callers must not mutate it afterwards.
func New(data []byte) Ref {
	count := &atomic.Int32{}
	count.Store(1)
	return Ref{data: data, count: count}
}

// NewString wraps s in a Ref.
func NewString(s string) Ref {
	return New([]byte(s))
}

// Retain increments the reference count and returns the same Ref, so
// callers can chain it: stored := original.Retain().
func (r Ref) Retain() Ref {
	if r.count != nil {
		r.count.Add(1)
	}
	return r
}

// Release decrements the reference count. It returns true when this was
// the last live reference; callers may use that signal to pool or discard
// the backing array, though Go's GC reclaims it regardless.
func (r Ref) Release() bool {
	if r.count == nil {
		return true
	}
	return r.count.Add(-1) == 0
}

// Count returns the current reference count.
func (r Ref) Count() int32 {
	if r.count == nil {
		return 0
	}
	return r.count.Load()
}

// Bytes returns the underlying bytes. Callers must not mutate the
// returned slice.
func (r Ref) Bytes() []byte { return r.data }

// String returns the underlying bytes as a string.
func (r Ref) String() string { return string(r.data) }

// Len returns the length of the underlying data in bytes.
func (r Ref) Len() int { return len(r.data) }

// Builder is an append-only scratch buffer whose contents are frozen into
// a Ref.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder, optionally preallocating capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) {
	b.buf = append(b.buf, c)
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteBytes appends data.
func (b *Builder) WriteBytes(data []byte) {
	b.buf = append(b.buf, data...)
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return len(b.buf) }

// Reset empties the builder for reuse.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

// String returns the buffered content as a string without freezing it.
func (b *Builder) String() string { return string(b.buf) }

// Ref freezes the buffer's current contents into a new Ref with refcount
// 1, copying the bytes so the Builder can keep being reused.
func (b *Builder) Ref() Ref {
	frozen := make([]byte, len(b.buf))
	copy(frozen, b.buf)
	return New(frozen)
}
