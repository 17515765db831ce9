package yolokit

import "sync"

// BatchPool is a pool of batches
type BatchPool struct {
	// pool of batches
	batches chan *Batch
	// size of pool
	size  int
	close sync.Once
}

// NewBatchPool returns a pool of Batches sharing a grid spec and batch
// size, for reuse across training steps
func NewBatchPool(size int, spec GridSpec, batchSize int) (*BatchPool, error) {

	p := &BatchPool{
		batches: make(chan *Batch, size),
		size:    size,
	}

	for i := 0; i < size; i++ {
		batch, err := NewBatch(spec, batchSize)

		if err != nil {
			return nil, err
		}

		// attach to pool
		p.Return(batch)
	}

	return p, nil
}

// Get a batch from the pool
func (p *BatchPool) Get() *Batch {
	return <-p.batches
}

// Return a batch to the pool
func (p *BatchPool) Return(batch *Batch) {

	batch.Clear()

	select {
	case p.batches <- batch:
	default:
		// pool is full or closed
	}
}

// Close the pool and discard all batches in it
func (p *BatchPool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.batches)

		// drain remaining batches
		for range p.batches {
		}
	})
}
