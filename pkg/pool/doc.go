// Package pool implements type-safe object pooling for Quasar's
// compression and archive scratch space, reducing garbage collection
// pressure when large report forests are encoded and compressed.
//
// # Architecture
//
// The package builds on sync.Pool, adding statistics tracking and
// automatic reset functionality.
//
// Core Types:
//
//   - Pool[T]: Generic pool implementation for any type T
//   - BufferPool: Size-bucketed bytes.Buffer pooling (4KB to 16MB)
//   - GlobalBufferPool: the process-wide BufferPool behind the
//     compression scratch buffers
//
// # Usage Patterns
//
// Creating a custom pool:
//
//	myPool := pool.New(
//		func() *bytes.Buffer { return bytes.NewBuffer(make([]byte, 0, 1024)) },
//		func(b *bytes.Buffer) { b.Reset() },
//	)
//
// Buffer pooling for blob encoding:
//
//	buf := pool.GlobalBufferPool.Get(4096)
//	defer pool.GlobalBufferPool.Put(buf)
//
// # Performance Guidelines
//
//  1. Always release objects back to pools
//  2. Reset objects properly to avoid data leaks
//  3. Use pool statistics to monitor efficiency
//  4. Avoid holding pool objects across goroutines
package pool
