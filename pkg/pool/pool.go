package pool

import (
	"bytes"
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with additional features like statistics tracking
// and automatic reset functionality. The pool is safe for concurrent use.
//
// Type parameter T can be any type, but pointer types are recommended
// for efficiency. The pool maintains statistics on allocations, usage,
// and hit/miss rates for monitoring and optimization.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
		misses    int64
	}
}

// New creates a new pool with the given factory and reset functions.
// The reset function runs on Put, before the object re-enters the pool.
//
// Example:
//
//	pool := New(
//	    func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) },
//	    func(b *bytes.Buffer) { b.Reset() },
//	)
func New[T any](new func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   new,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		atomic.AddInt64(&p.stats.misses, 1)
		return new()
	}
	return p
}

// Get retrieves an object from the pool, creating one with the factory
// function if the pool is empty. Safe for concurrent use.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	atomic.AddInt64(&p.stats.hits, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse, running the reset
// function first when one was provided. Safe for concurrent use.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns allocation count, objects currently checked out, total
// retrievals, and the subset of retrievals that had to allocate.
func (p *Pool[T]) Stats() (allocated, inUse, hits, misses int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits),
		atomic.LoadInt64(&p.stats.misses)
}

// bufferSizes are the bucket capacities, covering the blob sizes seen on
// the compression and archive paths. Buffers above the largest bucket
// are never pooled.
var bufferSizes = []int{
	4 << 10,  // 4KB
	64 << 10, // 64KB
	1 << 20,  // 1MB
	16 << 20, // 16MB
}

// BufferPool recycles bytes.Buffer scratch space in size-based buckets.
// Each bucket only holds buffers whose capacity is at least the bucket
// size, so Get's capacity hint is honored by pooled buffers too.
type BufferPool struct {
	buckets []bufferBucket
}

type bufferBucket struct {
	capacity int
	pool     *Pool[*bytes.Buffer]
}

// NewBufferPool creates a buffer pool with the predefined size buckets
// (4KB, 64KB, 1MB, 16MB).
func NewBufferPool() *BufferPool {
	buckets := make([]bufferBucket, len(bufferSizes))
	for i, capacity := range bufferSizes {
		capacity := capacity
		buckets[i] = bufferBucket{
			capacity: capacity,
			pool: New(
				func() *bytes.Buffer {
					return bytes.NewBuffer(make([]byte, 0, capacity))
				},
				func(buf *bytes.Buffer) {
					buf.Reset()
				},
			),
		}
	}
	return &BufferPool{buckets: buckets}
}

// Get returns an empty buffer with at least sizeHint bytes of capacity,
// taken from the smallest bucket that satisfies the hint. Hints above
// the largest bucket fall back to a direct allocation.
func (p *BufferPool) Get(sizeHint int) *bytes.Buffer {
	for i := range p.buckets {
		if p.buckets[i].capacity >= sizeHint {
			return p.buckets[i].pool.Get()
		}
	}
	return bytes.NewBuffer(make([]byte, 0, sizeHint))
}

// Put returns a buffer to the largest bucket its capacity still covers,
// so a buffer that grew during use is promoted rather than shrinking a
// bucket's guarantee. Buffers that outgrew the largest bucket, or are
// smaller than the smallest, are dropped for the garbage collector.
func (p *BufferPool) Put(buf *bytes.Buffer) {
	if buf == nil || buf.Cap() > p.buckets[len(p.buckets)-1].capacity {
		return
	}
	for i := len(p.buckets) - 1; i >= 0; i-- {
		if buf.Cap() >= p.buckets[i].capacity {
			p.buckets[i].pool.Put(buf)
			return
		}
	}
}

// GlobalBufferPool serves the compression and archive scratch buffers.
var GlobalBufferPool = NewBufferPool()
