package yolokit

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// LoadTensorFile reads a raw little endian float32 tensor dump produced by
// the external training or inference driver.  The file size is validated
// against the grid's tensor size
func LoadTensorFile(file string, spec GridSpec) (*Tensor, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading tensor file: %w", err)
	}

	want := spec.TensorSize()

	if len(raw) != want*4 {
		return nil, fmt.Errorf("tensor file is %d bytes, want %d for grid %dx%d",
			len(raw), want*4, spec.GridH, spec.GridW)
	}

	data := make([]float32, want)

	for i := range data {
		data[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
	}

	return &Tensor{spec: spec, Data: data}, nil
}

// LoadTensorFileF16 reads a raw little endian float16 tensor dump and
// converts it to float32
func LoadTensorFileF16(file string, spec GridSpec) (*Tensor, error) {

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading tensor file: %w", err)
	}

	want := spec.TensorSize()

	if len(raw) != want*2 {
		return nil, fmt.Errorf("tensor file is %d bytes, want %d for grid %dx%d",
			len(raw), want*2, spec.GridH, spec.GridW)
	}

	bits := make([]uint16, want)

	for i := range bits {
		bits[i] = binary.LittleEndian.Uint16(raw[i*2:])
	}

	return &Tensor{spec: spec, Data: ConvertFloat16Buffer(bits)}, nil
}

// SaveTensorFile writes the tensor as a raw little endian float32 dump
func SaveTensorFile(file string, t *Tensor) error {

	buf := make([]byte, len(t.Data)*4)

	for i, v := range t.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}

	if err := os.WriteFile(file, buf, 0644); err != nil {
		return fmt.Errorf("error writing tensor file: %w", err)
	}

	return nil
}
