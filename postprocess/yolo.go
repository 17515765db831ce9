// Package postprocess decodes raw single scale YOLO prediction tensors
// into final detection lists: confidence filtering, box format conversion
// and greedy non-maximum suppression.
package postprocess

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	yolokit "github.com/swdee/go-yolokit"
)

// YOLO defines the struct for decoding raw prediction tensors into a
// final, de-duplicated list of detections
type YOLO struct {
	// Params are the decoder configuration parameters
	Params YOLOParams
	// spec is the prediction grid layout
	spec yolokit.GridSpec
	// pool provides scratch buffers for the candidate working lists
	pool *bufferPool
}

// YOLOParams defines the struct containing the decoder parameters to use
// for post processing operations
type YOLOParams struct {
	// ConfThreshold is the minimum score, the objectness multiplied by the
	// best class score, required for a candidate box to be kept.  The
	// comparison is strict, candidates at exactly the threshold are dropped
	ConfThreshold float32
	// NMSThreshold is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	NMSThreshold float32
	// ClassAwareNMS only suppresses overlapping boxes that predict the
	// same class.  The default decoder is class agnostic and suppresses
	// across classes, which can erase detections of different classes at
	// the same location
	ClassAwareNMS bool
	// MaxObjectNumber caps the number of detections returned, 0 means
	// unlimited
	MaxObjectNumber int
}

// DefaultParams returns the decode time configuration, both thresholds at
// 0.5 with class agnostic suppression and no detection cap
func DefaultParams() YOLOParams {
	return YOLOParams{
		ConfThreshold: 0.5,
		NMSThreshold:  0.5,
	}
}

// InferenceParams returns the configuration used at inference time, which
// lowers the confidence threshold to 0.4
func InferenceParams() YOLOParams {
	return YOLOParams{
		ConfThreshold: 0.4,
		NMSThreshold:  0.5,
	}
}

// NewYOLO returns an instance of the YOLO detection decoder for the given
// prediction grid
func NewYOLO(spec yolokit.GridSpec, p YOLOParams) (*YOLO, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	// worst case every anchor at every cell survives filtering
	maxCand := spec.NumAnchors * spec.GridH * spec.GridW

	pool := newBufferPool()
	pool.create("boxes", maxCand*4)
	pool.create("scores", maxCand)

	return &YOLO{
		Params: p,
		spec:   spec,
		pool:   pool,
	}, nil
}

// DetectObjects takes one image's raw prediction tensor and runs
// confidence filtering, box decoding and non-maximum suppression,
// returning the kept detections ordered by descending score.  An input
// where nothing passes the confidence threshold returns an empty list
func (y *YOLO) DetectObjects(t *yolokit.Tensor) ([]DetectResult, error) {

	if t.Spec() != y.spec {
		return nil, fmt.Errorf("tensor does not match decoder grid spec")
	}

	return y.detect(t.Data), nil
}

// DetectBatch decodes every image of a batch concurrently across worker
// goroutines.  Suppression within one image stays sequential, images
// share no state.  workers <= 0 uses NumCPU
func (y *YOLO) DetectBatch(b *yolokit.Batch, workers int) ([][]DetectResult, error) {

	if b.Spec() != y.spec {
		return nil, fmt.Errorf("batch does not match decoder grid spec")
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([][]DetectResult, b.Size())

	var wg sync.WaitGroup
	wg.Add(workers)

	// each worker handles images i = w, w+workers, w+2*workers
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()

			for i := w; i < b.Size(); i += workers {
				buf, err := b.ImageSlice(i)

				if err != nil {
					continue
				}

				results[i] = y.detect(buf)
			}
		}(w)
	}

	wg.Wait()

	return results, nil
}

// detect runs the decode over one image's flat prediction buffer
func (y *YOLO) detect(input []float32) []DetectResult {

	gridH := y.spec.GridH
	gridW := y.spec.GridW
	pbs := y.spec.ProbBoxSize()

	// candidate working lists, consumed destructively during suppression
	// and never exposed outside this call
	boxes := y.pool.get("boxes")
	scores := y.pool.get("scores")
	classIDs := make([]int, y.spec.NumAnchors*gridH*gridW)

	defer y.pool.put("boxes", boxes)
	defer y.pool.put("scores", scores)

	validCount := 0

	// flatten to one candidate per (anchor, cell)
	for a := 0; a < y.spec.NumAnchors; a++ {
		for i := 0; i < gridH; i++ {
			for j := 0; j < gridW; j++ {

				offset := ((a*gridH+i)*gridW + j) * pbs

				objness := input[offset+4]

				// best class score, ties keep the lowest class index
				maxClassProbs := input[offset+5]
				maxClassID := 0

				for k := 1; k < y.spec.NumClasses; k++ {
					prob := input[offset+5+k]

					if prob > maxClassProbs {
						maxClassID = k
						maxClassProbs = prob
					}
				}

				score := objness * maxClassProbs

				if score <= y.Params.ConfThreshold {
					continue
				}

				// convert the center form box to corner form
				boxX := input[offset+0]
				boxY := input[offset+1]
				boxW := input[offset+2]
				boxH := input[offset+3]

				boxes[validCount*4+0] = boxX - boxW/2
				boxes[validCount*4+1] = boxY - boxH/2
				boxes[validCount*4+2] = boxX + boxW/2
				boxes[validCount*4+3] = boxY + boxH/2

				scores[validCount] = score
				classIDs[validCount] = maxClassID
				validCount++
			}
		}
	}

	if validCount <= 0 {
		// no object detected
		return nil
	}

	// indexArray orders the candidates by descending score.  The sort must
	// be stable so candidates with equal scores keep their flatten order
	indexArray := make([]int, validCount)

	for i := range indexArray {
		indexArray[i] = i
	}

	sort.SliceStable(indexArray, func(a, b int) bool {
		return scores[indexArray[a]] > scores[indexArray[b]]
	})

	if y.Params.ClassAwareNMS {
		// create a unique set of ClassID (ie: eliminate any multiples found)
		classSet := make(map[int]bool)

		for _, id := range classIDs[:validCount] {
			classSet[id] = true
		}

		// suppress within each class independently
		for c := range classSet {
			nms(validCount, boxes, classIDs, indexArray, c, y.Params.NMSThreshold, true)
		}

	} else {
		nms(validCount, boxes, classIDs, indexArray, 0, y.Params.NMSThreshold, false)
	}

	// collate kept candidates into a result for returning
	group := make([]DetectResult, 0)

	for i := 0; i < validCount; i++ {

		if indexArray[i] == -1 {
			continue
		}

		if y.Params.MaxObjectNumber > 0 && len(group) >= y.Params.MaxObjectNumber {
			break
		}

		n := indexArray[i]

		result := DetectResult{
			Box: BoxRect{
				Left:   boxes[n*4+0],
				Top:    boxes[n*4+1],
				Right:  boxes[n*4+2],
				Bottom: boxes[n*4+3],
			},
			Probability: scores[n],
			Class:       classIDs[n],
			ID:          detectionIDs.getNext(),
		}

		group = append(group, result)
	}

	return group
}
