package yolokit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLabels(t *testing.T) {

	file := filepath.Join(t.TempDir(), "labels.txt")

	if err := os.WriteFile(file, []byte("person\nbicycle\ncar\n"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	labels, err := LoadLabels(file)

	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}

	want := []string{"person", "bicycle", "car"}

	if len(labels) != len(want) {
		t.Fatalf("got %d labels; want %d", len(labels), len(want))
	}

	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %q; want %q", i, labels[i], want[i])
		}
	}

	if _, err := LoadLabels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing labels file, got nil")
	}
}

func TestClassName(t *testing.T) {

	labels := []string{"person", "bicycle"}

	if got := ClassName(labels, 1); got != "bicycle" {
		t.Errorf("ClassName(1) = %q; want bicycle", got)
	}

	// out of range ids fall back to the numeric id
	if got := ClassName(labels, 7); got != "7" {
		t.Errorf("ClassName(7) = %q; want 7", got)
	}

	if got := ClassName(labels, -1); got != "-1" {
		t.Errorf("ClassName(-1) = %q; want -1", got)
	}
}
