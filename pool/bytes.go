// File: pool/bytes.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

// Bytes recycles growable byte slices. Slices whose capacity exceeds the
// retain limit are left to the GC.
type Bytes struct {
	pool *Pool[*[]byte]
}

// NewBytes returns a pool handing out empty slices with capacity size.
// retain <= 0 keeps slices of any capacity.
func NewBytes(size, retain int) *Bytes {
	if size < 0 {
		size = 0
	}
	return &Bytes{
		pool: NewPool(
			func() *[]byte {
				b := make([]byte, 0, size)
				return &b
			},
			func(b *[]byte) bool {
				c := cap(*b)
				return c > 0 && (retain <= 0 || c <= retain)
			},
		),
	}
}

// Get returns an empty slice.
func (b *Bytes) Get() []byte {
	return (*b.pool.Get())[:0]
}

// Put hands buf back. buf must not be used afterwards.
func (b *Bytes) Put(buf []byte) {
	buf = buf[:0]
	b.pool.Put(&buf)
}
