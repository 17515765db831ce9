package yolokit

import "fmt"

// Batch concatenates a batch of per image tensors into a single flat
// buffer for use with batched loss computation and batched decoding
type Batch struct {
	spec GridSpec
	// size of the batch
	size int
	// data is the concatenated buffer
	data []float32
	// imgCnt is a counter for how many tensors have been added with Add()
	imgCnt int
	// imgSize is the number of elements in a single image tensor
	imgSize int
}

// NewBatch creates a zeroed batch holding batchSize image tensors of the
// given grid
func NewBatch(spec GridSpec, batchSize int) (*Batch, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	imgSize := spec.TensorSize()

	return &Batch{
		spec:    spec,
		size:    batchSize,
		data:    make([]float32, batchSize*imgSize),
		imgSize: imgSize,
	}, nil
}

// Add a tensor to the batch
func (b *Batch) Add(t *Tensor) error {

	// check if batch is full
	if b.imgCnt >= b.size {
		return fmt.Errorf("batch full")
	}

	if err := b.addAt(b.imgCnt, t); err != nil {
		return err
	}

	// increment image counter
	b.imgCnt++
	return nil
}

// AddAt adds a tensor to the batch at the specific index location
func (b *Batch) AddAt(idx int, t *Tensor) error {

	if idx < 0 || idx >= b.size {
		return fmt.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	return b.addAt(idx, t)
}

// addAt copies a tensor into the specified index location
func (b *Batch) addAt(idx int, t *Tensor) error {

	if t.spec != b.spec {
		return fmt.Errorf("tensor does not match batch shape")
	}

	copy(b.data[idx*b.imgSize:], t.Data)
	return nil
}

// ImageSlice returns the section of the batch buffer belonging to the
// image at idx.  idx starts counting from 0 to (batchsize-1)
func (b *Batch) ImageSlice(idx int) ([]float32, error) {

	if idx < 0 || idx >= b.size {
		return nil, fmt.Errorf("index %d out of range [0-%d)", idx, b.size)
	}

	offset := idx * b.imgSize
	return b.data[offset : offset+b.imgSize], nil
}

// ImageTensor returns the image at idx wrapped as a Tensor sharing the
// batch buffer
func (b *Batch) ImageTensor(idx int) (*Tensor, error) {

	buf, err := b.ImageSlice(idx)

	if err != nil {
		return nil, err
	}

	return &Tensor{spec: b.spec, Data: buf}, nil
}

// Data returns the concatenated buffer
func (b *Batch) Data() []float32 {
	return b.data
}

// Spec returns the grid the batch is laid out for
func (b *Batch) Spec() GridSpec {
	return b.spec
}

// Size returns the batch capacity
func (b *Batch) Size() int {
	return b.size
}

// Len returns how many tensors have been added with Add()
func (b *Batch) Len() int {
	return b.imgCnt
}

// Clear the batch so it can be reused again.  The buffer is zeroed since
// target assignment only writes assigned cells and relies on the rest of
// the buffer being background
func (b *Batch) Clear() {

	b.imgCnt = 0

	for i := range b.data {
		b.data[i] = 0
	}
}
