// Package dataset provides access to YOLO format datasets on disk, a
// directory of images paired with a directory of label text files holding
// one "class cx cy w h" line per object, all values normalized to the
// image extent.
package dataset

import (
	"bufio"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	yolokit "github.com/swdee/go-yolokit"
	"gocv.io/x/gocv"
)

// Dataset lists the images of a YOLO format dataset and parses their
// matching ground truth labels
type Dataset struct {
	imageDir string
	labelDir string
	// imgSize is the square pixel size images are resized to
	imgSize int
	images  []string
}

// New opens a dataset from an image directory and a label directory.
// Images with a .jpg, .jpeg or .png extension are listed, everything else
// is ignored
func New(imageDir, labelDir string, imgSize int) (*Dataset, error) {

	if imgSize <= 0 {
		return nil, fmt.Errorf("image size must be positive, got %d", imgSize)
	}

	entries, err := os.ReadDir(imageDir)

	if err != nil {
		return nil, fmt.Errorf("error reading image directory: %w", err)
	}

	var images []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, e.Name())
		}
	}

	return &Dataset{
		imageDir: imageDir,
		labelDir: labelDir,
		imgSize:  imgSize,
		images:   images,
	}, nil
}

// Len returns the number of images in the dataset
func (d *Dataset) Len() int {
	return len(d.images)
}

// ImageFile returns the path of the image at idx
func (d *Dataset) ImageFile(idx int) string {
	return filepath.Join(d.imageDir, d.images[idx])
}

// labelFile returns the label path matching the image at idx
func (d *Dataset) labelFile(idx int) string {
	name := d.images[idx]
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(d.labelDir, base+".txt")
}

// Boxes parses the ground truth boxes of the image at idx.  A missing
// label file means an image with no objects, not an error
func (d *Dataset) Boxes(idx int) ([]yolokit.GroundTruth, error) {

	if idx < 0 || idx >= len(d.images) {
		return nil, fmt.Errorf("index %d out of range [0-%d)", idx, len(d.images))
	}

	file := d.labelFile(idx)

	if _, err := os.Stat(file); os.IsNotExist(err) {
		return nil, nil
	}

	return ParseLabelFile(file)
}

// Image loads the image at idx as a square resized float32 RGB Mat with
// pixel values scaled to [0,1], ready for a model forward pass
func (d *Dataset) Image(idx int) (gocv.Mat, error) {

	if idx < 0 || idx >= len(d.images) {
		return gocv.NewMat(), fmt.Errorf("index %d out of range [0-%d)", idx, len(d.images))
	}

	img := gocv.IMRead(d.ImageFile(idx), gocv.IMReadColor)

	if img.Empty() {
		return img, fmt.Errorf("error reading image from: %s", d.ImageFile(idx))
	}

	defer img.Close()

	// convert colorspace and resize image
	rgbImg := gocv.NewMat()
	gocv.CvtColor(img, &rgbImg, gocv.ColorBGRToRGB)
	defer rgbImg.Close()

	sized := gocv.NewMat()
	gocv.Resize(rgbImg, &sized, image.Pt(d.imgSize, d.imgSize),
		0, 0, gocv.InterpolationArea)
	defer sized.Close()

	// scale pixel values to [0,1]
	scaled := gocv.NewMat()
	sized.ConvertToWithParams(&scaled, gocv.MatTypeCV32F, 1.0/255.0, 0)

	return scaled, nil
}

// ParseLabelFile reads a YOLO format label file.  Each line holds
// "class cx cy w h" with the box center form normalized to the image
// extent.  Malformed lines are skipped
func ParseLabelFile(file string) ([]yolokit.GroundTruth, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var boxes []yolokit.GroundTruth

	for scanner.Scan() {

		parts := strings.Fields(scanner.Text())

		if len(parts) != 5 {
			continue
		}

		cls, err := strconv.Atoi(parts[0])

		if err != nil || cls < 0 {
			continue
		}

		var vals [4]float32
		ok := true

		for i, p := range parts[1:] {
			v, err := strconv.ParseFloat(p, 32)

			if err != nil {
				ok = false
				break
			}

			vals[i] = float32(v)
		}

		if !ok {
			continue
		}

		boxes = append(boxes, yolokit.GroundTruth{
			Class: cls,
			X:     vals[0],
			Y:     vals[1],
			W:     vals[2],
			H:     vals[3],
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return boxes, nil
}
