package buffer

import (
	"errors"
	"fmt"
)

var (
	ErrAllocation = errors.New("buffer: allocation failed")
	ErrNegative   = errors.New("buffer: negative size")
)

// growPadding is added on top of the requested size when the doubled
// capacity would not be enough.
const growPadding = 8

// Buffer is a growable byte buffer. Its logical content is always
// data[:len(data)], the spare capacity is the free space.
type Buffer struct {
	data  []byte
	limit int
}

// New returns an empty buffer with the given free capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, 0, capacity)}
}

// NewExact returns a buffer holding a copy of p with no free capacity.
func NewExact(p []byte) *Buffer {
	data := make([]byte, len(p))
	copy(data, p)
	return &Buffer{data: data}
}

// NewExactSize returns a buffer of length n with no free capacity, its
// content zeroed. Callers fill it through Bytes.
func NewExactSize(n int) *Buffer {
	if n < 0 {
		n = 0
	}
	return &Buffer{data: make([]byte, n)}
}

// SetLimit caps the length the buffer may reach and the capacity it may
// grow to. Zero removes the cap.
func (b *Buffer) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	b.limit = limit
}

func (b *Buffer) Limit() int {
	return b.limit
}

func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) Cap() int {
	return cap(b.data)
}

// Available reports the free capacity.
func (b *Buffer) Available() int {
	return cap(b.data) - len(b.data)
}

// Bytes returns the logical content. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

func (b *Buffer) String() string {
	return string(b.data)
}

// EnsureFree makes room for n more bytes without changing the length.
func (b *Buffer) EnsureFree(n int) error {
	if n < 0 {
		return ErrNegative
	}
	if b.limit > 0 && len(b.data)+n > b.limit {
		return ErrAllocation
	}
	if b.Available() >= n {
		return nil
	}

	size := max(2*cap(b.data), len(b.data)+n+growPadding)
	if b.limit > 0 && size > b.limit {
		size = b.limit
	}

	data := make([]byte, len(b.data), size)
	copy(data, b.data)
	b.data = data
	return nil
}

// Append adds p to the end of the buffer. On failure the buffer is unchanged.
func (b *Buffer) Append(p []byte) error {
	if err := b.EnsureFree(len(p)); err != nil {
		return err
	}
	b.data = append(b.data, p...)
	return nil
}

func (b *Buffer) AppendString(s string) error {
	if err := b.EnsureFree(len(s)); err != nil {
		return err
	}
	b.data = append(b.data, s...)
	return nil
}

func (b *Buffer) AppendByte(c byte) error {
	if err := b.EnsureFree(1); err != nil {
		return err
	}
	b.data = append(b.data, c)
	return nil
}

// AppendFormatted appends the fmt formatted text. The text is rendered
// first so a failed grow leaves the buffer as it was.
func (b *Buffer) AppendFormatted(format string, args ...any) error {
	return b.Append(fmt.Appendf(nil, format, args...))
}

// WriteByte, WriteString and WriteBytes let a Buffer back the printer's
// writer interface.
func (b *Buffer) WriteByte(c byte) error {
	return b.AppendByte(c)
}

func (b *Buffer) WriteString(s string) error {
	return b.AppendString(s)
}

func (b *Buffer) WriteBytes(p []byte) error {
	return b.Append(p)
}

// Truncate shrinks the logical length to n, keeping the capacity.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > len(b.data) {
		return
	}
	b.data = b.data[:n]
}

func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Release drops the storage. The buffer can be reused and starts empty.
func (b *Buffer) Release() {
	b.data = nil
}
