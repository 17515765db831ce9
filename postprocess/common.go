package postprocess

import (
	"math"
)

// calculateOverlap works out the Intersection of Union (IoU) value of two
// boxes given in corner form.  Degenerate boxes yield 0, the epsilon in
// the union avoids division by zero
func calculateOverlap(xmin0, ymin0, xmax0, ymax0, xmin1, ymin1,
	xmax1, ymax1 float32) float32 {

	w := math.Max(0.0, math.Min(float64(xmax0), float64(xmax1))-math.Max(float64(xmin0), float64(xmin1)))
	h := math.Max(0.0, math.Min(float64(ymax0), float64(ymax1))-math.Max(float64(ymin0), float64(ymin1)))
	intersection := w * h

	// negative box dimensions clamp to zero area
	area0 := math.Max(0, float64(xmax0-xmin0)) * math.Max(0, float64(ymax0-ymin0))
	area1 := math.Max(0, float64(xmax1-xmin1)) * math.Max(0, float64(ymax1-ymin1))

	// Calculate union
	union := area0 + area1 - intersection + 1e-7

	// Return Intersection of Union (IoU)
	return float32(intersection / union)
}

// nms implements a greedy Non-Maximum Suppression (NMS) algorithm over the
// candidates referenced by order, which must be sorted by descending
// score.  Suppressed entries are tombstoned as -1 in order.  With
// classAware set only candidates whose class equals filterID take part,
// otherwise every candidate competes and filterID is ignored
func nms(validCount int, boxes []float32, classIDs, order []int,
	filterID int, threshold float32, classAware bool) {

	for i := 0; i < validCount; i++ {

		if order[i] == -1 {
			continue
		}

		n := order[i]

		if classAware && classIDs[n] != filterID {
			continue
		}

		for j := i + 1; j < validCount; j++ {
			m := order[j]

			if m == -1 {
				continue
			}

			if classAware && classIDs[m] != filterID {
				continue
			}

			iou := calculateOverlap(
				boxes[n*4+0], boxes[n*4+1], boxes[n*4+2], boxes[n*4+3],
				boxes[m*4+0], boxes[m*4+1], boxes[m*4+2], boxes[m*4+3],
			)

			if iou > threshold {
				order[j] = -1
			}
		}
	}
}
