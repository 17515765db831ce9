package yolokit

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// Float16ToFloat32 converts a raw half precision bit pattern to float32
func Float16ToFloat32(bits uint16) float32 {
	return f16LookupTable[bits]
}

// ConvertFloat16Buffer converts a buffer of raw half precision values, as
// dumped by inference engines that output float16 tensors, into float32
func ConvertFloat16Buffer(src []uint16) []float32 {

	dst := make([]float32, len(src))

	for i, v := range src {
		dst[i] = f16LookupTable[v]
	}

	return dst
}
