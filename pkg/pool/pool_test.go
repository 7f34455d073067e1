package pool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolResetsOnPut(t *testing.T) {
	p := New(
		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 32)) },
		func(b *bytes.Buffer) { b.Reset() },
	)

	buf := p.Get()
	buf.WriteString("scratch")
	p.Put(buf)

	again := p.Get()
	assert.Equal(t, 0, again.Len())
	p.Put(again)
}

func TestPoolStats(t *testing.T) {
	p := New(
		func() *int { v := 0; return &v },
		nil,
	)

	obj := p.Get()
	allocated, inUse, hits, _ := p.Stats()
	assert.Equal(t, int64(1), allocated)
	assert.Equal(t, int64(1), inUse)
	assert.Equal(t, int64(1), hits)

	p.Put(obj)
	_, inUse, _, _ = p.Stats()
	assert.Equal(t, int64(0), inUse)
}

func TestBufferPoolHonorsSizeHint(t *testing.T) {
	p := NewBufferPool()

	for _, hint := range []int{1, 4 << 10, 100 << 10, 1 << 20} {
		buf := p.Get(hint)
		require.NotNil(t, buf)
		assert.Equal(t, 0, buf.Len())
		assert.GreaterOrEqual(t, buf.Cap(), hint, "hint %d", hint)
		p.Put(buf)
	}
}

func TestBufferPoolOversizeHintAllocatesDirectly(t *testing.T) {
	p := NewBufferPool()

	hint := bufferSizes[len(bufferSizes)-1] + 1
	buf := p.Get(hint)
	assert.GreaterOrEqual(t, buf.Cap(), hint)

	// An oversized buffer is dropped on Put rather than pooled.
	p.Put(buf)
	for _, bucket := range p.buckets {
		_, inUse, _, _ := bucket.pool.Stats()
		assert.Equal(t, int64(0), inUse)
	}
}

func TestBufferPoolPromotesGrownBuffers(t *testing.T) {
	p := NewBufferPool()

	// A buffer from the smallest bucket that grew past the next bucket
	// size must not be returned to its original bucket.
	buf := p.Get(1)
	buf.Grow(64 << 10)
	grownCap := buf.Cap()
	p.Put(buf)

	// Every pooled buffer in a bucket must satisfy the bucket capacity.
	for _, bucket := range p.buckets {
		if bucket.capacity <= grownCap {
			continue
		}
		pooled := bucket.pool.Get()
		assert.GreaterOrEqual(t, pooled.Cap(), bucket.capacity)
		bucket.pool.Put(pooled)
	}
}

func TestBufferPoolPutNil(t *testing.T) {
	assert.NotPanics(t, func() { NewBufferPool().Put(nil) })
}
