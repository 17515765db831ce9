package yolokit

import "fmt"

// GridSpec defines the shape of the prediction grid a model outputs.  It
// determines the flat tensor layout (anchors, gridH, gridW, 5+classes)
// where the trailing channel is [x, y, w, h, objectness, class scores...]
type GridSpec struct {
	// GridH is the number of grid rows
	GridH int
	// GridW is the number of grid columns
	GridW int
	// NumAnchors is the number of anchor boxes predicted per grid cell
	NumAnchors int
	// NumClasses is the number of object classes the Model was trained with
	NumClasses int
}

// Validate checks the grid dimensions are usable
func (s GridSpec) Validate() error {

	if s.GridH <= 0 || s.GridW <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d",
			s.GridH, s.GridW)
	}

	if s.NumAnchors <= 0 {
		return fmt.Errorf("number of anchors must be positive, got %d",
			s.NumAnchors)
	}

	if s.NumClasses <= 0 {
		return fmt.Errorf("number of classes must be positive, got %d",
			s.NumClasses)
	}

	return nil
}

// ProbBoxSize is the length of array elements representing each bounding
// box's attributes.  This is the four box values plus objectness plus the
// number of object classes the Model was trained with
func (s GridSpec) ProbBoxSize() int {
	return 5 + s.NumClasses
}

// TensorSize is the number of float32 elements in a single image's
// prediction or target tensor
func (s GridSpec) TensorSize() int {
	return s.NumAnchors * s.GridH * s.GridW * s.ProbBoxSize()
}
