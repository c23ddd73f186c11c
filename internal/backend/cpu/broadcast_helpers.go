package cpu

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// broadcastStrides maps a source shape onto an output shape, returning one
// stride per output dimension. Broadcast dimensions (source size 1 expanded,
// or missing leading dimensions) get stride 0 so the same source element is
// reused along them.
func broadcastStrides(src, out tensor.Shape) []int {
	strides := make([]int, len(out))
	srcStrides := src.ComputeStrides()
	offset := len(out) - len(src)

	for i := range out {
		if i < offset {
			continue // missing leading dimension, stride stays 0
		}
		j := i - offset
		if src[j] == 1 && out[i] != 1 {
			continue // expanded dimension, stride stays 0
		}
		strides[i] = srcStrides[j]
	}
	return strides
}

// binaryBroadcastFloat32 applies f element-wise over the broadcast of a and b.
func binaryBroadcastFloat32(result, a, b *tensor.RawTensor, outShape tensor.Shape, f func(x, y float32) float32) {
	src1, src2, dst := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)

	idx := make([]int, len(outShape))
	for i := range dst {
		aOff, bOff := 0, 0
		for d := range idx {
			aOff += idx[d] * aStrides[d]
			bOff += idx[d] * bStrides[d]
		}
		dst[i] = f(src1[aOff], src2[bOff])
		advance(idx, outShape)
	}
}

// binaryBroadcastFloat64 applies f element-wise over the broadcast of a and b.
func binaryBroadcastFloat64(result, a, b *tensor.RawTensor, outShape tensor.Shape, f func(x, y float64) float64) {
	src1, src2, dst := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)

	idx := make([]int, len(outShape))
	for i := range dst {
		aOff, bOff := 0, 0
		for d := range idx {
			aOff += idx[d] * aStrides[d]
			bOff += idx[d] * bStrides[d]
		}
		dst[i] = f(src1[aOff], src2[bOff])
		advance(idx, outShape)
	}
}

// advance increments a row-major multi-index within shape.
func advance(idx []int, shape tensor.Shape) {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < shape[d] {
			return
		}
		idx[d] = 0
	}
}
