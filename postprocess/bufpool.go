package postprocess

import (
	"fmt"
	"sync"
)

// bufferPool holds a set of named float32 scratch buffer pools used for
// the decoder's candidate working lists
type bufferPool struct {
	mu    sync.Mutex
	pools map[string]*bufferEntry
}

// bufferEntry defines a single buffer
type bufferEntry struct {
	pool sync.Pool
	size int
}

// newBufferPool returns an empty bufferPool
func newBufferPool() *bufferPool {
	return &bufferPool{
		pools: make(map[string]*bufferEntry),
	}
}

// create registers a new pool under 'name' producing buffers of size
// elements
func (b *bufferPool) create(name string, size int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry := &bufferEntry{size: size}

	entry.pool.New = func() any {
		return make([]float32, size)
	}

	b.pools[name] = entry
}

// get returns a buffer of the pool's full registered size.  Contents are
// undefined, callers track how much of the buffer they filled.
// Panics if the pool name is unknown.
func (b *bufferPool) get(name string) []float32 {
	b.mu.Lock()
	entry, ok := b.pools[name]
	b.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("buffer pool %q not registered", name))
	}

	return entry.pool.Get().([]float32)
}

// put returns a buffer back into it's named pool.
// You must only call put on a buffer you previously got via get
// with the same name.
func (b *bufferPool) put(name string, buf []float32) {
	b.mu.Lock()
	entry, ok := b.pools[name]
	b.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("buffer pool %q not registered", name))
	}

	// restore to full size so it matches entry.New next time
	entry.pool.Put(buf[:entry.size])
}
