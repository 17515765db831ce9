package yolokit

import "fmt"

// Tensor holds a single image's prediction or target values as a flat
// float32 buffer in channel last layout of shape (anchors, gridH, gridW,
// 5+classes)
type Tensor struct {
	spec GridSpec
	// Data is the flat backing buffer
	Data []float32
}

// NewTensor allocates a zeroed tensor for the given grid
func NewTensor(spec GridSpec) (*Tensor, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &Tensor{
		spec: spec,
		Data: make([]float32, spec.TensorSize()),
	}, nil
}

// TensorFrom wraps an existing buffer as a tensor, validating its length
// against the grid.  The buffer is shared, not copied
func TensorFrom(spec GridSpec, data []float32) (*Tensor, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if len(data) != spec.TensorSize() {
		return nil, fmt.Errorf("buffer length %d does not match tensor size %d",
			len(data), spec.TensorSize())
	}

	return &Tensor{spec: spec, Data: data}, nil
}

// Spec returns the grid the tensor is laid out for
func (t *Tensor) Spec() GridSpec {
	return t.spec
}

// Offset returns the index into Data of the first channel at the given
// anchor and grid cell
func (t *Tensor) Offset(anchor, row, col int) int {
	return ((anchor*t.spec.GridH+row)*t.spec.GridW + col) * t.spec.ProbBoxSize()
}

// At returns the value of channel ch at the given anchor and grid cell
func (t *Tensor) At(anchor, row, col, ch int) float32 {
	return t.Data[t.Offset(anchor, row, col)+ch]
}

// Set writes the value of channel ch at the given anchor and grid cell
func (t *Tensor) Set(anchor, row, col, ch int, val float32) {
	t.Data[t.Offset(anchor, row, col)+ch] = val
}
