package cpu

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Cast converts a tensor to a different data type.
//
// Bool tensors cast to 1/0 in numeric types; numeric tensors cast to bool
// as (x != 0). Float-to-int conversion truncates.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}

	result, err := tensor.NewRaw(x.Shape(), dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}

	// Read source as float64, then write into the target type.
	n := x.NumElements()
	vals := make([]float64, n)
	switch x.DType() {
	case tensor.Float32:
		for i, v := range x.AsFloat32() {
			vals[i] = float64(v)
		}
	case tensor.Float64:
		copy(vals, x.AsFloat64())
	case tensor.Int32:
		for i, v := range x.AsInt32() {
			vals[i] = float64(v)
		}
	case tensor.Bool:
		for i, v := range x.AsBool() {
			if v {
				vals[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("cast: unsupported source dtype %s", x.DType()))
	}

	switch dtype {
	case tensor.Float32:
		dst := result.AsFloat32()
		for i, v := range vals {
			dst[i] = float32(v)
		}
	case tensor.Float64:
		copy(result.AsFloat64(), vals)
	case tensor.Int32:
		dst := result.AsInt32()
		for i, v := range vals {
			dst[i] = int32(v)
		}
	case tensor.Bool:
		dst := result.AsBool()
		for i, v := range vals {
			dst[i] = v != 0
		}
	default:
		panic(fmt.Sprintf("cast: unsupported target dtype %s", dtype))
	}

	return result
}
