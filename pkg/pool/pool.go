// Package pool provides typed object pooling for the encoders that render
// whole tables: JSON rows, Kafka messages and uploaded objects.
//
// Example usage:
//
//	buf := pool.GetBuffer()
//	defer pool.PutBuffer(buf)
//
//	rows := pool.New(
//	    func() []string { return make([]string, 0, 16) },
//	    func(s []string) {},
//	)
package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// MaxPooledBuffer is the largest buffer capacity kept for reuse. Buffers
// that grew past it are left to the garbage collector.
const MaxPooledBuffer = 1 << 20

// Pool is a type safe wrapper around sync.Pool that counts its traffic.
// It is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
		misses    int64
	}
}

// New creates a pool. newFn builds a fresh object when the pool is empty;
// reset, when non-nil, cleans an object before it is stored again.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{reset: reset}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		atomic.AddInt64(&p.stats.misses, 1)
		return newFn()
	}
	return p
}

// Get takes an object from the pool, building one when it is empty.
func (p *Pool[T]) Get() T {
	before := atomic.LoadInt64(&p.stats.misses)
	obj := p.pool.Get().(T)
	if atomic.LoadInt64(&p.stats.misses) == before {
		atomic.AddInt64(&p.stats.hits, 1)
	}
	atomic.AddInt64(&p.stats.inUse, 1)
	return obj
}

// Put returns obj to the pool.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the number of objects built, currently checked out, and
// the Get calls served from and missing the pool. Hits and misses are
// approximate under concurrent use.
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits),
		atomic.LoadInt64(&p.stats.misses)
}

var buffers = New(
	func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 4096)) },
	func(b *bytes.Buffer) { b.Reset() },
)

// GetBuffer returns an empty buffer from the shared buffer pool.
func GetBuffer() *bytes.Buffer {
	return buffers.Get()
}

// PutBuffer hands buf back to the shared buffer pool. The caller must not
// use buf afterwards.
func PutBuffer(buf *bytes.Buffer) {
	if buf == nil {
		return
	}
	if buf.Cap() > MaxPooledBuffer {
		atomic.AddInt64(&buffers.stats.inUse, -1)
		return
	}
	buffers.Put(buf)
}

// BufferStats reports the statistics of the shared buffer pool.
func BufferStats() (allocated, inUse, hits, misses int64) {
	return buffers.Stats()
}
