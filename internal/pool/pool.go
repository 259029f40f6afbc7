// Package pool provides a typed sync.Pool and a byte-buffer pool built on it.
package pool

import "sync"

// Pool is a generic wrapper around sync.Pool.
type Pool[T any] struct {
	internal sync.Pool
}

// New creates a new Pool with the given constructor.
func New[T any](newFn func() T) *Pool[T] {
	return &Pool[T]{
		internal: sync.Pool{
			New: func() any {
				return newFn()
			},
		},
	}
}

// Get retrieves an item from the pool.
func (p *Pool[T]) Get() T {
	return p.internal.Get().(T)
}

// Put returns an item to the pool.
func (p *Pool[T]) Put(item T) {
	p.internal.Put(item)
}

// Buffers hands out byte slices of a fixed size. Slices are passed as
// pointers so Put does not allocate.
type Buffers struct {
	size int
	p    *Pool[*[]byte]
}

// NewBuffers creates a pool of size-byte buffers.
func NewBuffers(size int) *Buffers {
	return &Buffers{
		size: size,
		p: New(func() *[]byte {
			b := make([]byte, size)
			return &b
		}),
	}
}

// Get returns a buffer of exactly Size bytes.
func (b *Buffers) Get() *[]byte {
	buf := b.p.Get()
	*buf = (*buf)[:b.size]
	return buf
}

// Put returns buf to the pool. Buffers of the wrong capacity are dropped.
func (b *Buffers) Put(buf *[]byte) {
	if buf == nil || cap(*buf) < b.size {
		return
	}
	b.p.Put(buf)
}

// Size returns the buffer length handed out by Get.
func (b *Buffers) Size() int { return b.size }
