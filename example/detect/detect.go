package main

import (
	"flag"
	"fmt"
	"log"

	yolokit "github.com/swdee/go-yolokit"
	"github.com/swdee/go-yolokit/postprocess"
	"github.com/swdee/go-yolokit/render"
	"gocv.io/x/gocv"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	tensorFile := flag.String("t", "../data/pred-13x13.f32", "Raw prediction tensor dump to decode")
	useF16 := flag.Bool("f16", false, "Tensor dump holds float16 values")
	imgFile := flag.String("i", "../data/bus.jpg", "Image file the predictions belong to")
	labelFile := flag.String("l", "../data/coco_80_labels_list.txt", "Text file containing model labels")
	saveFile := flag.String("o", "./out.jpg", "Output image file with detections rendered")
	ttfFont := flag.String("f", "", "Optional TTF font file for rendering labels")
	gridH := flag.Int("gh", 13, "Prediction grid height")
	gridW := flag.Int("gw", 13, "Prediction grid width")
	numClasses := flag.Int("c", 80, "Number of object classes the model was trained with")

	flag.Parse()

	spec := yolokit.GridSpec{
		GridH:      *gridH,
		GridW:      *gridW,
		NumAnchors: len(yolokit.DefaultAnchors()),
		NumClasses: *numClasses,
	}

	// load the raw prediction tensor dumped by the inference driver
	var tensor *yolokit.Tensor
	var err error

	if *useF16 {
		tensor, err = yolokit.LoadTensorFileF16(*tensorFile, spec)
	} else {
		tensor, err = yolokit.LoadTensorFile(*tensorFile, spec)
	}

	if err != nil {
		log.Fatal("Error loading tensor file: ", err)
	}

	labels, err := yolokit.LoadLabels(*labelFile)

	if err != nil {
		log.Fatal("Error loading labels: ", err)
	}

	decoder, err := postprocess.NewYOLO(spec, postprocess.InferenceParams())

	if err != nil {
		log.Fatal("Error creating decoder: ", err)
	}

	detectResults, err := decoder.DetectObjects(tensor)

	if err != nil {
		log.Fatal("Error decoding detections: ", err)
	}

	// load image
	img := gocv.IMRead(*imgFile, gocv.IMReadColor)

	if img.Empty() {
		log.Fatal("Error reading image from: ", *imgFile)
	}

	defer img.Close()

	// detection boxes are in grid cell units, scale by the pixel size of
	// one grid cell to overlay the source image
	cellW := float32(img.Cols()) / float32(spec.GridW)
	cellH := float32(img.Rows()) / float32(spec.GridH)

	for _, detResult := range detectResults {
		fmt.Printf("%s @ (%.2f %.2f %.2f %.2f) %f\n",
			yolokit.ClassName(labels, detResult.Class),
			detResult.Box.Left, detResult.Box.Top,
			detResult.Box.Right, detResult.Box.Bottom,
			detResult.Probability)
	}

	render.DetectionBoxes(&img, detectResults, labels, cellW, cellH,
		render.DefaultFont(), 2)

	// optionally annotate with a TTF font for label sets the Hershey
	// fonts don't cover
	if *ttfFont != "" {
		ttf, err := render.NewTTFLabel(*ttfFont, 20)

		if err != nil {
			log.Fatal("Error loading TTF font: ", err)
		}

		defer ttf.Close()

		text := fmt.Sprintf("%d objects", len(detectResults))

		if err := ttf.PutText(&img, text, 8, 28, render.Yellow); err != nil {
			log.Fatal("Error rendering TTF text: ", err)
		}
	}

	// Save the result
	if ok := gocv.IMWrite(*saveFile, img); !ok {
		log.Println("Failed to save the image")
	}

	log.Println("done")
}
