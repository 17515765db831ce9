package yolokit

import "fmt"

// Anchor is a reference box shape used as a prior for predicting object
// size at a grid cell.  Width and height are in grid cell units
type Anchor struct {
	Width  float32
	Height float32
}

// DefaultAnchors returns the anchor set of the reference single scale
// model configuration.  The set is ordered, the index of an anchor is its
// anchor id shared by training and inference
func DefaultAnchors() []Anchor {
	return []Anchor{
		{Width: 1.0, Height: 1.0},
		{Width: 2.0, Height: 2.0},
		{Width: 3.0, Height: 3.0},
	}
}

// ValidateAnchors checks the anchor set is non-empty and all anchors have
// positive dimensions
func ValidateAnchors(anchors []Anchor) error {

	if len(anchors) == 0 {
		return fmt.Errorf("anchor set is empty")
	}

	for i, a := range anchors {
		if a.Width <= 0 || a.Height <= 0 {
			return fmt.Errorf("anchor %d has non-positive size (%g, %g)",
				i, a.Width, a.Height)
		}
	}

	return nil
}
