package cpu

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Equal performs element-wise equality comparison with broadcasting,
// returning a bool tensor.
func (cpu *CPUBackend) Equal(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("equal: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	outShape, _, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("equal: %v", err))
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("equal: failed to create result tensor: %v", err))
	}

	dst := result.AsBool()
	aStrides := broadcastStrides(a.Shape(), outShape)
	bStrides := broadcastStrides(b.Shape(), outShape)
	idx := make([]int, len(outShape))

	switch a.DType() {
	case tensor.Float32:
		src1, src2 := a.AsFloat32(), b.AsFloat32()
		for i := range dst {
			dst[i] = src1[offsetOf(idx, aStrides)] == src2[offsetOf(idx, bStrides)]
			advance(idx, outShape)
		}
	case tensor.Float64:
		src1, src2 := a.AsFloat64(), b.AsFloat64()
		for i := range dst {
			dst[i] = src1[offsetOf(idx, aStrides)] == src2[offsetOf(idx, bStrides)]
			advance(idx, outShape)
		}
	case tensor.Int32:
		src1, src2 := a.AsInt32(), b.AsInt32()
		for i := range dst {
			dst[i] = src1[offsetOf(idx, aStrides)] == src2[offsetOf(idx, bStrides)]
			advance(idx, outShape)
		}
	default:
		panic(fmt.Sprintf("equal: unsupported dtype %s", a.DType()))
	}

	return result
}

func offsetOf(idx, strides []int) int {
	off := 0
	for d := range idx {
		off += idx[d] * strides[d]
	}
	return off
}
