package dataset

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// COCO128URL is the reference training dataset, a small 128 image YOLO
// format subset of COCO with images and labels already in the expected
// directory structure
const COCO128URL = "https://github.com/ultralytics/yolov5/releases/download/v1.0/coco128.zip"

const (
	fetchTimeout    = 10 * time.Minute
	fetchRetryCount = 3
	fetchRetryDelay = 500 * time.Millisecond
)

// Fetch downloads and extracts a zipped YOLO format dataset into
// destFolder.  The download is skipped when an images directory already
// exists under destFolder
func Fetch(datasetURL, destFolder string) error {

	// dataset already extracted
	if _, err := os.Stat(filepath.Join(destFolder, "images")); err == nil {
		return nil
	}

	if err := os.MkdirAll(destFolder, 0755); err != nil {
		return fmt.Errorf("error creating dataset folder: %w", err)
	}

	zipPath := filepath.Join(destFolder, "dataset.zip")

	client := resty.New().
		SetTimeout(fetchTimeout).
		SetRetryCount(fetchRetryCount).
		SetRetryWaitTime(fetchRetryDelay)

	resp, err := client.R().
		SetOutput(zipPath).
		Get(datasetURL)

	if err != nil {
		return fmt.Errorf("error downloading dataset: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("error downloading dataset: status %s", resp.Status())
	}

	if err := unzip(zipPath, destFolder); err != nil {
		return fmt.Errorf("error extracting dataset: %w", err)
	}

	return os.Remove(zipPath)
}

// unzip extracts the archive into destFolder
func unzip(zipPath, destFolder string) error {

	r, err := zip.OpenReader(zipPath)

	if err != nil {
		return err
	}

	defer r.Close()

	for _, f := range r.File {

		path := filepath.Join(destFolder, f.Name)

		// reject entries that escape the destination folder
		if !strings.HasPrefix(path, filepath.Clean(destFolder)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes destination", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, f.Mode()); err != nil {
				return err
			}

			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		src, err := f.Open()

		if err != nil {
			return err
		}

		dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())

		if err != nil {
			src.Close()
			return err
		}

		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()

		if err != nil {
			return err
		}
	}

	return nil
}
