package yolokit

import "testing"

var testSpec = GridSpec{GridH: 2, GridW: 2, NumAnchors: 1, NumClasses: 1}

// fillTensor creates a tensor with a recognisable value ramp
func fillTensor(t *testing.T, spec GridSpec, base float32) *Tensor {
	t.Helper()

	tensor, err := NewTensor(spec)

	if err != nil {
		t.Fatalf("NewTensor failed: %v", err)
	}

	for i := range tensor.Data {
		tensor.Data[i] = base + float32(i)
	}

	return tensor
}

func TestBatchAddAndOverflow(t *testing.T) {

	batch, err := NewBatch(testSpec, 2)

	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	t1 := fillTensor(t, testSpec, 1)
	t2 := fillTensor(t, testSpec, 100)

	// Add two images
	if err := batch.Add(t1); err != nil {
		t.Fatalf("Add(t1) failed: %v", err)
	}

	if err := batch.Add(t2); err != nil {
		t.Fatalf("Add(t2) failed: %v", err)
	}

	// first image section from t1, second from t2
	imgSize := testSpec.TensorSize()
	allData := batch.Data()

	for i := 0; i < imgSize; i++ {
		if allData[i] != t1.Data[i] {
			t.Errorf("element %d = %v; want %v from img1", i, allData[i], t1.Data[i])
		}
	}

	for i := 0; i < imgSize; i++ {
		if allData[imgSize+i] != t2.Data[i] {
			t.Errorf("element %d = %v; want %v from img2", imgSize+i, allData[imgSize+i], t2.Data[i])
		}
	}

	// third Add should overflow
	t3 := fillTensor(t, testSpec, 200)

	if err := batch.Add(t3); err == nil {
		t.Fatal("expected overflow error on third Add, got nil")
	}
}

func TestBatchAddAtAndClear(t *testing.T) {

	batch, err := NewBatch(testSpec, 3)

	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	tensor := fillTensor(t, testSpec, 5)

	// AddAt index 1
	if err := batch.AddAt(1, tensor); err != nil {
		t.Fatalf("AddAt failed: %v", err)
	}

	// imgCnt should still be zero
	if batch.Len() != 0 {
		t.Errorf("Len() = %d; want 0 after AddAt", batch.Len())
	}

	// Clear resets the counter and zeroes the buffer
	batch.Clear()

	if batch.Len() != 0 {
		t.Errorf("Len() = %d; want 0 after Clear", batch.Len())
	}

	for i, v := range batch.Data() {
		if v != 0 {
			t.Fatalf("Data[%d] = %v; want 0 after Clear", i, v)
		}
	}

	// Add at invalid index
	if err := batch.AddAt(5, tensor); err == nil {
		t.Error("expected error for AddAt out of range, got nil")
	}
}

func TestBatchShapeMismatch(t *testing.T) {

	batch, err := NewBatch(testSpec, 1)

	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	other := GridSpec{GridH: 3, GridW: 3, NumAnchors: 1, NumClasses: 1}
	tensor := fillTensor(t, other, 1)

	if err := batch.Add(tensor); err == nil {
		t.Error("expected error for mismatched tensor shape, got nil")
	}
}

func TestBatchImageSlice(t *testing.T) {

	batch, err := NewBatch(testSpec, 2)

	if err != nil {
		t.Fatalf("NewBatch failed: %v", err)
	}

	if _, err := batch.ImageSlice(-1); err == nil {
		t.Error("expected error for ImageSlice idx<0")
	}

	if _, err := batch.ImageSlice(2); err == nil {
		t.Error("expected error for ImageSlice idx>=size")
	}

	slice, err := batch.ImageSlice(1)

	if err != nil {
		t.Fatalf("ImageSlice failed: %v", err)
	}

	if len(slice) != testSpec.TensorSize() {
		t.Errorf("len(slice) = %d; want %d", len(slice), testSpec.TensorSize())
	}

	// writes through ImageTensor land in the batch buffer
	tensor, err := batch.ImageTensor(1)

	if err != nil {
		t.Fatalf("ImageTensor failed: %v", err)
	}

	tensor.Set(0, 0, 0, 0, 9)

	if batch.Data()[testSpec.TensorSize()] != 9 {
		t.Error("ImageTensor does not share the batch buffer")
	}
}

func TestBatchPool(t *testing.T) {

	pool, err := NewBatchPool(2, testSpec, 4)

	if err != nil {
		t.Fatalf("NewBatchPool failed: %v", err)
	}

	defer pool.Close()

	b1 := pool.Get()

	if b1.Size() != 4 || b1.Spec() != testSpec {
		t.Errorf("pooled batch has size %d spec %+v", b1.Size(), b1.Spec())
	}

	b1.Data()[0] = 5
	pool.Return(b1)

	// returned batches come back cleared
	b2 := pool.Get()

	if b2.Data()[0] != 0 {
		t.Error("batch was not cleared on Return")
	}

	pool.Return(b2)
}
