// Package train implements the training side of the detection core:
// assigning ground truth boxes onto the fixed anchor and grid structure,
// and aggregating the masked loss terms over predictions and targets.
package train

import (
	"fmt"
	"runtime"
	"sync"

	yolokit "github.com/swdee/go-yolokit"
	"gonum.org/v1/gonum/floats"
)

// Assigner maps per image ground truth boxes onto the fixed anchor and
// grid structure to build the dense target tensors consumed by the loss.
// An Assigner is stateless after construction and safe for concurrent use
type Assigner struct {
	spec    yolokit.GridSpec
	anchors []yolokit.Anchor
}

// Collision records a grid location written by more than one ground truth
// box during assignment.  Resolution is last write wins, collisions are
// reported so callers can detect the silent data loss, never corrected
type Collision struct {
	// Anchor, Row and Col locate the contested cell
	Anchor int
	Row    int
	Col    int
	// Prev and Next are indexes into the input box list, in input order
	Prev int
	Next int
}

// NewAssigner returns an assigner for the given grid and anchor set
func NewAssigner(spec yolokit.GridSpec, anchors []yolokit.Anchor) (*Assigner, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if err := yolokit.ValidateAnchors(anchors); err != nil {
		return nil, err
	}

	if len(anchors) != spec.NumAnchors {
		return nil, fmt.Errorf("anchor set size %d does not match grid spec %d",
			len(anchors), spec.NumAnchors)
	}

	return &Assigner{spec: spec, anchors: anchors}, nil
}

// Assign builds the dense target tensor for one image.  Every ground
// truth box is written to exactly one (anchor, cell) location, the cell
// containing its center and the anchor whose shape it overlaps most.  An
// empty box list yields an all zero tensor.  Returned collisions list the
// locations where a later box overwrote an earlier one
func (a *Assigner) Assign(boxes []yolokit.GroundTruth) (*yolokit.Tensor, []Collision, error) {

	t, err := yolokit.NewTensor(a.spec)

	if err != nil {
		return nil, nil, err
	}

	colls, err := a.assignInto(t, boxes)

	if err != nil {
		return nil, nil, err
	}

	return t, colls, nil
}

// assignInto writes targets into t, which must be zeroed
func (a *Assigner) assignInto(t *yolokit.Tensor, boxes []yolokit.GroundTruth) ([]Collision, error) {

	var colls []Collision

	// owner tracks which box index last wrote each anchor+cell offset
	owner := make(map[int]int)

	overlaps := make([]float64, len(a.anchors))

	for n, gt := range boxes {

		if gt.Class < 0 || gt.Class >= a.spec.NumClasses {
			return nil, fmt.Errorf("ground truth box %d has class %d outside [0-%d)",
				n, gt.Class, a.spec.NumClasses)
		}

		// map the normalized box into grid cell units
		gx := gt.X * float32(a.spec.GridW)
		gy := gt.Y * float32(a.spec.GridH)
		gwBox := gt.W * float32(a.spec.GridW)
		ghBox := gt.H * float32(a.spec.GridH)

		// owning cell is the one containing the box center, centers on a
		// grid line floor down.  A center on the far image edge clamps to
		// the last cell so every box gets an assignment
		gi := int(gx)
		gj := int(gy)

		if gi >= a.spec.GridW {
			gi = a.spec.GridW - 1
		}

		if gj >= a.spec.GridH {
			gj = a.spec.GridH - 1
		}

		// pick the anchor whose shape best matches the box, ties keep the
		// lowest anchor index
		for i, an := range a.anchors {
			overlaps[i] = float64(anchorOverlap(gwBox, ghBox, an.Width, an.Height))
		}

		best := floats.MaxIdx(overlaps)

		off := t.Offset(best, gj, gi)

		if prev, ok := owner[off]; ok {
			colls = append(colls, Collision{
				Anchor: best,
				Row:    gj,
				Col:    gi,
				Prev:   prev,
				Next:   n,
			})
		}

		owner[off] = n

		// in-cell offsets, grid unit sizes, objectness and one hot class
		t.Data[off+0] = gx - float32(gi)
		t.Data[off+1] = gy - float32(gj)
		t.Data[off+2] = gwBox
		t.Data[off+3] = ghBox
		t.Data[off+4] = 1.0

		// clear any class written by an earlier box at this location so
		// the class vector stays one hot after an overwrite
		for c := 0; c < a.spec.NumClasses; c++ {
			t.Data[off+5+c] = 0
		}

		t.Data[off+5+gt.Class] = 1.0
	}

	return colls, nil
}

// AssignBatch runs target assignment for a batch of images across worker
// goroutines, writing each image's targets into the matching slot of dst.
// dst must be freshly created or Clear()ed, its batch size must hold
// len(boxes) images.  workers <= 0 uses NumCPU.  Images are independent so
// workers share nothing but the disjoint output regions
func (a *Assigner) AssignBatch(dst *yolokit.Batch, boxes [][]yolokit.GroundTruth,
	workers int) ([][]Collision, error) {

	if dst.Spec() != a.spec {
		return nil, fmt.Errorf("batch does not match assigner grid spec")
	}

	if len(boxes) > dst.Size() {
		return nil, fmt.Errorf("batch size %d cannot hold %d images",
			dst.Size(), len(boxes))
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	colls := make([][]Collision, len(boxes))
	errs := make([]error, len(boxes))

	var wg sync.WaitGroup
	wg.Add(workers)

	// each worker handles images i = w, w+workers, w+2*workers
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()

			for i := w; i < len(boxes); i += workers {
				t, err := dst.ImageTensor(i)

				if err != nil {
					errs[i] = err
					continue
				}

				colls[i], errs[i] = a.assignInto(t, boxes[i])
			}
		}(w)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return colls, nil
}

// anchorOverlap measures the shape similarity of a ground truth box and an
// anchor as the IoU of the two shapes centered on a common origin.  Box
// centers deliberately take no part, only widths and heights do
func anchorOverlap(boxW, boxH, anchorW, anchorH float32) float32 {

	interW := boxW
	if anchorW < interW {
		interW = anchorW
	}

	interH := boxH
	if anchorH < interH {
		interH = anchorH
	}

	if interW < 0 {
		interW = 0
	}

	if interH < 0 {
		interH = 0
	}

	inter := interW * interH
	union := boxW*boxH + anchorW*anchorH - inter + 1e-7

	return inter / union
}
