package dataset

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	yolokit "github.com/swdee/go-yolokit"
)

func TestParseLabelFile(t *testing.T) {

	file := filepath.Join(t.TempDir(), "img.txt")

	content := "0 0.5 0.5 0.1 0.1\n" +
		"45 0.25 0.75 0.2 0.3\n" +
		"bad line\n" + // not five fields
		"2 0.5 0.5 0.1\n" + // too few fields
		"x 0.5 0.5 0.1 0.1\n" + // class not an integer
		"3 0.5 abc 0.1 0.1\n" + // coordinate not a number
		"7 0.1 0.2 0.3 0.4\n"

	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	boxes, err := ParseLabelFile(file)

	if err != nil {
		t.Fatalf("ParseLabelFile failed: %v", err)
	}

	want := []yolokit.GroundTruth{
		{Class: 0, X: 0.5, Y: 0.5, W: 0.1, H: 0.1},
		{Class: 45, X: 0.25, Y: 0.75, W: 0.2, H: 0.3},
		{Class: 7, X: 0.1, Y: 0.2, W: 0.3, H: 0.4},
	}

	if len(boxes) != len(want) {
		t.Fatalf("parsed %d boxes; want %d with malformed lines skipped", len(boxes), len(want))
	}

	for i := range want {
		if boxes[i] != want[i] {
			t.Errorf("box %d = %+v; want %+v", i, boxes[i], want[i])
		}
	}

	if _, err := ParseLabelFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestDatasetListing(t *testing.T) {

	imageDir := t.TempDir()
	labelDir := t.TempDir()

	// only image extensions should be listed
	for _, name := range []string{"a.jpg", "b.txt", "c.png", "d.JPEG", "notes.md"} {
		if err := os.WriteFile(filepath.Join(imageDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	ds, err := New(imageDir, labelDir, 416)

	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if ds.Len() != 3 {
		t.Errorf("Len() = %d; want 3 images", ds.Len())
	}

	if _, err := New(filepath.Join(imageDir, "missing"), labelDir, 416); err == nil {
		t.Error("expected error for missing image directory, got nil")
	}

	if _, err := New(imageDir, labelDir, 0); err == nil {
		t.Error("expected error for non-positive image size, got nil")
	}
}

func TestDatasetBoxes(t *testing.T) {

	imageDir := t.TempDir()
	labelDir := t.TempDir()

	for _, name := range []string{"labelled.jpg", "background.jpg"} {
		if err := os.WriteFile(filepath.Join(imageDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	label := "5 0.5 0.5 0.2 0.2\n"

	if err := os.WriteFile(filepath.Join(labelDir, "labelled.txt"), []byte(label), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ds, err := New(imageDir, labelDir, 416)

	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// find each image since directory listing order is not guaranteed
	for i := 0; i < ds.Len(); i++ {
		boxes, err := ds.Boxes(i)

		if err != nil {
			t.Fatalf("Boxes(%d) failed: %v", i, err)
		}

		switch filepath.Base(ds.ImageFile(i)) {
		case "labelled.jpg":
			if len(boxes) != 1 || boxes[0].Class != 5 {
				t.Errorf("labelled.jpg boxes = %+v; want one box of class 5", boxes)
			}

		case "background.jpg":
			// a missing label file means no objects, not an error
			if len(boxes) != 0 {
				t.Errorf("background.jpg boxes = %+v; want none", boxes)
			}
		}
	}

	if _, err := ds.Boxes(99); err == nil {
		t.Error("expected error for index out of range, got nil")
	}
}

func TestFetchSkipsExisting(t *testing.T) {

	dest := t.TempDir()

	// an existing images directory short circuits the download
	if err := os.MkdirAll(filepath.Join(dest, "images"), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	if err := Fetch("http://invalid.localhost/nothing.zip", dest); err != nil {
		t.Errorf("Fetch with existing dataset returned error: %v", err)
	}
}

func TestUnzip(t *testing.T) {

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "ds.zip")

	// build a small archive with a nested label file
	f, err := os.Create(zipPath)

	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	zw := zip.NewWriter(f)

	w, err := zw.Create("labels/img.txt")

	if err != nil {
		t.Fatalf("zip Create failed: %v", err)
	}

	if _, err := w.Write([]byte("0 0.5 0.5 0.1 0.1\n")); err != nil {
		t.Fatalf("zip Write failed: %v", err)
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close failed: %v", err)
	}

	f.Close()

	dest := filepath.Join(dir, "out")

	if err := unzip(zipPath, dest); err != nil {
		t.Fatalf("unzip failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dest, "labels", "img.txt"))

	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}

	if string(data) != "0 0.5 0.5 0.1 0.1\n" {
		t.Errorf("extracted content = %q", string(data))
	}
}
