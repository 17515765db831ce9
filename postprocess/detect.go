package postprocess

// BoxRect are the corner form dimensions of the bounding box of a detected
// object, in grid cell units
type BoxRect struct {
	Left   float32
	Top    float32
	Right  float32
	Bottom float32
}

// DetectResult defines the attributes of a single object detected
type DetectResult struct {
	// Class is the line number in the labels file the Model was trained on
	// defining the Class of the detected object
	Class int
	// Box are the bounding box dimensions of the object location
	Box BoxRect
	// Probability is the confidence score of the object detected, the
	// objectness multiplied by the best class score
	Probability float32
	// ID is a unique ID assigned to the detection result
	ID int64
}
