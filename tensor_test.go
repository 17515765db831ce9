package yolokit

import "testing"

func TestGridSpecValidate(t *testing.T) {

	tests := []struct {
		name    string
		spec    GridSpec
		wantErr bool
	}{
		{"valid", GridSpec{GridH: 13, GridW: 13, NumAnchors: 3, NumClasses: 80}, false},
		{"zero grid height", GridSpec{GridH: 0, GridW: 13, NumAnchors: 3, NumClasses: 80}, true},
		{"negative grid width", GridSpec{GridH: 13, GridW: -1, NumAnchors: 3, NumClasses: 80}, true},
		{"no anchors", GridSpec{GridH: 13, GridW: 13, NumAnchors: 0, NumClasses: 80}, true},
		{"no classes", GridSpec{GridH: 13, GridW: 13, NumAnchors: 3, NumClasses: 0}, true},
	}

	for _, tc := range tests {
		err := tc.spec.Validate()

		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate() error = %v; wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestGridSpecSizes(t *testing.T) {

	spec := GridSpec{GridH: 13, GridW: 13, NumAnchors: 3, NumClasses: 80}

	if spec.ProbBoxSize() != 85 {
		t.Errorf("ProbBoxSize() = %d; want 85", spec.ProbBoxSize())
	}

	if want := 3 * 13 * 13 * 85; spec.TensorSize() != want {
		t.Errorf("TensorSize() = %d; want %d", spec.TensorSize(), want)
	}
}

func TestTensorOffsets(t *testing.T) {

	spec := GridSpec{GridH: 4, GridW: 5, NumAnchors: 2, NumClasses: 3}

	tensor, err := NewTensor(spec)

	if err != nil {
		t.Fatalf("NewTensor failed: %v", err)
	}

	if len(tensor.Data) != spec.TensorSize() {
		t.Fatalf("len(Data) = %d; want %d", len(tensor.Data), spec.TensorSize())
	}

	// first channel of anchor 1, row 2, col 3 in channel last layout
	want := ((1*4+2)*5 + 3) * 8

	if got := tensor.Offset(1, 2, 3); got != want {
		t.Errorf("Offset(1, 2, 3) = %d; want %d", got, want)
	}

	tensor.Set(1, 2, 3, 4, 0.75)

	if got := tensor.At(1, 2, 3, 4); got != 0.75 {
		t.Errorf("At(1, 2, 3, 4) = %v; want 0.75", got)
	}

	if got := tensor.Data[want+4]; got != 0.75 {
		t.Errorf("Data[%d] = %v; want 0.75", want+4, got)
	}
}

func TestTensorFrom(t *testing.T) {

	spec := GridSpec{GridH: 2, GridW: 2, NumAnchors: 1, NumClasses: 1}

	buf := make([]float32, spec.TensorSize())
	tensor, err := TensorFrom(spec, buf)

	if err != nil {
		t.Fatalf("TensorFrom failed: %v", err)
	}

	// buffer is shared, not copied
	tensor.Set(0, 0, 0, 4, 1.0)

	if buf[4] != 1.0 {
		t.Error("TensorFrom did not share the backing buffer")
	}

	if _, err := TensorFrom(spec, make([]float32, 3)); err == nil {
		t.Error("expected error for buffer length mismatch, got nil")
	}

	if _, err := TensorFrom(GridSpec{}, buf); err == nil {
		t.Error("expected error for invalid spec, got nil")
	}
}
