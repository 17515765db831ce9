// Package render draws detection results onto images for inspection.
package render

import (
	"fmt"
	"image"
	"image/color"

	yolokit "github.com/swdee/go-yolokit"
	"github.com/swdee/go-yolokit/postprocess"
	"gocv.io/x/gocv"
)

// boxLabel records the label of a detection box for later rendering
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes around the objects detected.
// Detection boxes are in grid cell units and are scaled to pixels with
// cellW and cellH, the pixel size of one grid cell on img
func DetectionBoxes(img *gocv.Mat, detectResults []postprocess.DetectResult,
	classNames []string, cellW, cellH float32, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	// draw detection boxes
	for i, detResult := range detectResults {

		// Get the color for this object
		colorIndex := i % len(classColors)
		useClr := classColors[colorIndex]

		boxLeft := int(detResult.Box.Left * cellW)
		boxTop := int(detResult.Box.Top * cellH)
		boxRight := int(detResult.Box.Right * cellW)
		boxBottom := int(detResult.Box.Bottom * cellH)

		// draw rectangle around detected object
		rect := image.Rect(boxLeft, boxTop, boxRight, boxBottom)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %.2f", yolokit.ClassName(classNames, detResult.Class),
			detResult.Probability)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		// Calculate the alignment of text label
		var centerX int

		switch font.Alignment {
		case Center:
			centerX = (boxLeft + boxRight) / 2

		case Right:
			centerX = boxRight - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

		case Left:
			fallthrough
		default:
			centerX = boxLeft + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
		}

		// Adjust the label position so the text is centered horizontally
		labelPosition := image.Pt(centerX-textSize.X/2, boxTop-font.BottomPad)

		// create box for placing text on
		bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
			boxTop-textSize.Y-font.TopPad-font.BottomPad,
			centerX+textSize.X/2+font.RightPad, boxTop)

		// record label rendering details
		nextLabel := boxLabel{
			rect:    bRect,
			clr:     useClr,
			text:    text,
			textPos: labelPosition,
		}
		boxLabels = append(boxLabels, nextLabel)

	}

	// draw all precalculated box labels so they are the top most layer on
	// the image and don't get overlapped by the detection boxes
	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
