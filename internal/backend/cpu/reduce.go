package cpu

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Sum computes the total sum of all elements, returning a single-element tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(tensor.Shape{1}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		var total float32
		for _, v := range x.AsFloat32() {
			total += v
		}
		result.AsFloat32()[0] = total
	case tensor.Float64:
		var total float64
		for _, v := range x.AsFloat64() {
			total += v
		}
		result.AsFloat64()[0] = total
	default:
		panic(fmt.Sprintf("sum: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("sumdim: dimension %d out of range for %dD tensor", dim, ndim))
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
		if len(outShape) == 0 {
			outShape = tensor.Shape{1}
		}
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumdim: %v", err))
	}

	// outer iterates over dimensions before dim, inner over dimensions after.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}
	n := shape[dim]

	switch x.DType() {
	case tensor.Float32:
		src, dst := x.AsFloat32(), result.AsFloat32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var total float32
				for i := 0; i < n; i++ {
					total += src[(o*n+i)*inner+in]
				}
				dst[o*inner+in] = total
			}
		}
	case tensor.Float64:
		src, dst := x.AsFloat64(), result.AsFloat64()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				var total float64
				for i := 0; i < n; i++ {
					total += src[(o*n+i)*inner+in]
				}
				dst[o*inner+in] = total
			}
		}
	default:
		panic(fmt.Sprintf("sumdim: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}

// Argmax returns the index of the maximum value along the specified dimension.
// The result is an int32 tensor with the reduced dimension removed.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("argmax: dimension %d out of range for %dD tensor", dim, ndim))
	}

	outShape := make(tensor.Shape, 0, ndim-1)
	for i := 0; i < ndim; i++ {
		if i != dim {
			outShape = append(outShape, shape[i])
		}
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result, err := tensor.NewRaw(outShape, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}
	n := shape[dim]
	dst := result.AsInt32()

	switch x.DType() {
	case tensor.Float32:
		src := x.AsFloat32()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				best, bestIdx := src[o*n*inner+in], int32(0)
				for i := 1; i < n; i++ {
					if v := src[(o*n+i)*inner+in]; v > best {
						best, bestIdx = v, int32(i)
					}
				}
				dst[o*inner+in] = bestIdx
			}
		}
	case tensor.Float64:
		src := x.AsFloat64()
		for o := 0; o < outer; o++ {
			for in := 0; in < inner; in++ {
				best, bestIdx := src[o*n*inner+in], int32(0)
				for i := 1; i < n; i++ {
					if v := src[(o*n+i)*inner+in]; v > best {
						best, bestIdx = v, int32(i)
					}
				}
				dst[o*inner+in] = bestIdx
			}
		}
	default:
		panic(fmt.Sprintf("argmax: unsupported dtype %s (only float32/float64 supported)", x.DType()))
	}

	return result
}
