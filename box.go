package yolokit

// iouEps is added to the union area to avoid division by zero when both
// boxes have no area
const iouEps = 1e-7

// Xywh (center x, center y, width, height) represents a bounding box in
// center form
type Xywh []float32

// Xyxy (x1, y1, x2, y2) represents a bounding box in corner form
type Xyxy []float32

// NewXywh creates a center form box from its coordinates
func NewXywh(x, y, w, h float32) Xywh {
	return Xywh{x, y, w, h}
}

// NewXyxy creates a corner form box from its coordinates
func NewXyxy(x1, y1, x2, y2 float32) Xyxy {
	return Xyxy{x1, y1, x2, y2}
}

// ToXyxy converts the box to corner form
func (b Xywh) ToXyxy() Xyxy {
	return Xyxy{
		b[0] - b[2]/2,
		b[1] - b[3]/2,
		b[0] + b[2]/2,
		b[1] + b[3]/2,
	}
}

// ToXywh converts the box to center form
func (b Xyxy) ToXywh() Xywh {
	return Xywh{
		(b[0] + b[2]) / 2,
		(b[1] + b[3]) / 2,
		b[2] - b[0],
		b[3] - b[1],
	}
}

// Area returns the box area.  Negative widths and heights are clamped
// to zero so degenerate boxes have zero area rather than being an error
func (b Xyxy) Area() float32 {
	w := b[2] - b[0]
	h := b[3] - b[1]

	if w < 0 {
		w = 0
	}

	if h < 0 {
		h = 0
	}

	return w * h
}

// IoU calculates the Intersection over Union of two corner form boxes.
// Boxes with zero area yield 0
func IoU(a, b Xyxy) float32 {

	iw := min32(a[2], b[2]) - max32(a[0], b[0])
	ih := min32(a[3], b[3]) - max32(a[1], b[1])

	if iw < 0 {
		iw = 0
	}

	if ih < 0 {
		ih = 0
	}

	inter := iw * ih
	union := a.Area() + b.Area() - inter + iouEps

	return inter / union
}

// XywhIoU calculates the Intersection over Union of two center form boxes
func XywhIoU(a, b Xywh) float32 {
	return IoU(a.ToXyxy(), b.ToXyxy())
}

// IoUBatch calculates the IoU of one box against many boxes, returning one
// value per pair in the same order as others
func IoUBatch(box Xyxy, others []Xyxy) []float32 {

	ious := make([]float32, len(others))

	for i, other := range others {
		ious[i] = IoU(box, other)
	}

	return ious
}

// GroundTruth is one labelled object in an image.  Coordinates and sizes
// are the box center form normalized to [0,1] of the image extent
type GroundTruth struct {
	// Class is the object class id, the line number in the labels file
	Class int
	X     float32
	Y     float32
	W     float32
	H     float32
}

// Box returns the ground truth bounding box in center form
func (g GroundTruth) Box() Xywh {
	return Xywh{g.X, g.Y, g.W, g.H}
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
