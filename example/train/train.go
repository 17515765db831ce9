package main

import (
	"flag"
	"log"
	"path/filepath"

	yolokit "github.com/swdee/go-yolokit"
	"github.com/swdee/go-yolokit/dataset"
	"github.com/swdee/go-yolokit/train"
	"gonum.org/v1/gonum/stat"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	dataDir := flag.String("d", "../data/coco128", "Directory to hold the training dataset")
	imgSize := flag.Int("s", 416, "Square size images are resized to")
	batchSize := flag.Int("b", 16, "Number of images per batch")
	workers := flag.Int("w", 0, "Worker goroutines for batch assignment, 0 uses NumCPU")
	numClasses := flag.Int("c", 80, "Number of object classes in the dataset")

	flag.Parse()

	// download the dataset if not already present
	err := dataset.Fetch(dataset.COCO128URL, *dataDir)

	if err != nil {
		log.Fatal("Error fetching dataset: ", err)
	}

	ds, err := dataset.New(
		filepath.Join(*dataDir, "coco128/images/train2017"),
		filepath.Join(*dataDir, "coco128/labels/train2017"),
		*imgSize,
	)

	if err != nil {
		log.Fatal("Error opening dataset: ", err)
	}

	log.Printf("dataset has %d images", ds.Len())

	anchors := yolokit.DefaultAnchors()

	// single detection scale with stride 32
	spec := yolokit.GridSpec{
		GridH:      *imgSize / 32,
		GridW:      *imgSize / 32,
		NumAnchors: len(anchors),
		NumClasses: *numClasses,
	}

	assigner, err := train.NewAssigner(spec, anchors)

	if err != nil {
		log.Fatal("Error creating assigner: ", err)
	}

	pool, err := yolokit.NewBatchPool(2, spec, *batchSize)

	if err != nil {
		log.Fatal("Error creating batch pool: ", err)
	}

	defer pool.Close()

	// zero predictions stand in for an untrained network so the loss
	// reported below is the full target magnitude
	preds := make([]float32, (*batchSize)*spec.TensorSize())

	var (
		totalBoxes      int
		totalCollisions int
		boxCounts       []float64
		lossParams      = train.DefaultLossParams()
	)

	for start := 0; start < ds.Len(); start += *batchSize {

		end := start + *batchSize

		if end > ds.Len() {
			end = ds.Len()
		}

		// gather ground truth boxes for this batch
		boxes := make([][]yolokit.GroundTruth, 0, end-start)

		for idx := start; idx < end; idx++ {
			gt, err := ds.Boxes(idx)

			if err != nil {
				log.Fatal("Error reading labels: ", err)
			}

			boxes = append(boxes, gt)
			boxCounts = append(boxCounts, float64(len(gt)))
			totalBoxes += len(gt)
		}

		batch := pool.Get()

		collisions, err := assigner.AssignBatch(batch, boxes, *workers)

		if err != nil {
			log.Fatal("Error assigning batch: ", err)
		}

		for _, imgCollisions := range collisions {
			totalCollisions += len(imgCollisions)
		}

		loss, err := train.ComputeLoss(preds[:batch.Size()*spec.TensorSize()],
			batch.Data(), spec, lossParams)

		if err != nil {
			log.Fatal("Error computing loss: ", err)
		}

		log.Printf("batch %d-%d: loss total=%.2f box=%.2f obj=%.2f noobj=%.2f cls=%.2f",
			start, end-1, loss.Total, loss.Box, loss.Object, loss.NoObject,
			loss.Class)

		pool.Return(batch)
	}

	mean, std := stat.MeanStdDev(boxCounts, nil)

	log.Printf("done: %d boxes over %d images, %.1f +/- %.1f per image, %d collisions",
		totalBoxes, ds.Len(), mean, std, totalCollisions)
}
