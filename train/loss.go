package train

import (
	"fmt"

	yolokit "github.com/swdee/go-yolokit"
)

// LossParams are the weighting factors applied to each loss term
type LossParams struct {
	// Box weights the localization term over assigned cells
	Box float64
	// Object weights the objectness term over assigned cells
	Object float64
	// NoObject weights the objectness term over background cells
	NoObject float64
	// Class weights the classification term over assigned cells
	Class float64
}

// DefaultLossParams returns the reference configuration weights
func DefaultLossParams() LossParams {
	return LossParams{
		Box:      5.0,
		Object:   1.0,
		NoObject: 0.5,
		Class:    1.0,
	}
}

// Loss holds the weighted loss terms and their total.  All sums run over
// every anchor, cell and batch element with no normalization, callers
// divide by batch size or positive count themselves if desired
type Loss struct {
	Box      float64
	Object   float64
	NoObject float64
	Class    float64
	Total    float64
}

// ComputeLoss aggregates the masked squared error terms between a
// prediction buffer and its target buffer, both in the flat channel last
// layout of the grid.  The buffers must be the same length and a whole
// multiple of the grid's per image tensor size, so a single image or a
// whole batch both work.  The result is a non-negative scalar total plus
// its individual terms
func ComputeLoss(preds, targets []float32, spec yolokit.GridSpec, p LossParams) (Loss, error) {

	if err := spec.Validate(); err != nil {
		return Loss{}, err
	}

	if len(preds) != len(targets) {
		return Loss{}, fmt.Errorf("prediction length %d does not match target length %d",
			len(preds), len(targets))
	}

	imgSize := spec.TensorSize()

	if len(preds) == 0 || len(preds)%imgSize != 0 {
		return Loss{}, fmt.Errorf("buffer length %d is not a multiple of tensor size %d",
			len(preds), imgSize)
	}

	pbs := spec.ProbBoxSize()

	// accumulate in float64 so large batches keep precision
	var box, obj, noobj, cls float64

	for base := 0; base < len(preds); base += pbs {

		tObj := float64(targets[base+4])
		pObj := float64(preds[base+4])

		if tObj != 0 {
			// localization, the in-cell offsets and grid unit sizes
			for c := 0; c < 4; c++ {
				d := float64(preds[base+c]) - float64(targets[base+c])
				box += tObj * d * d
			}

			d := pObj - 1
			obj += tObj * d * d

			// classification over the class channels
			for c := 5; c < pbs; c++ {
				d := float64(preds[base+c]) - float64(targets[base+c])
				cls += tObj * d * d
			}
		}

		// background cells only penalise predicted objectness
		noobj += (1 - tObj) * pObj * pObj
	}

	l := Loss{
		Box:      p.Box * box,
		Object:   p.Object * obj,
		NoObject: p.NoObject * noobj,
		Class:    p.Class * cls,
	}

	l.Total = l.Box + l.Object + l.NoObject + l.Class

	return l, nil
}
