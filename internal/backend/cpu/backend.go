// Package cpu implements the CPU backend with BLAS-backed matrix multiplication.
package cpu

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/parallel"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
//
// Element-wise operations support NumPy-style broadcasting and run
// chunked across worker goroutines for large tensors. Matrix
// multiplication is delegated to gonum's BLAS implementation.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend.
func New() *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    parallel.DefaultConfig(),
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b,
		func(x, y float32) float32 { return x + y },
		func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b,
		func(x, y float32) float32 { return x - y },
		func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b,
		func(x, y float32) float32 { return x * y },
		func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
//
// Division by zero follows IEEE-754 semantics (Inf/NaN results); degenerate
// inputs are a caller responsibility, not guarded here.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b,
		func(x, y float32) float32 { return x / y },
		func(x, y float64) float64 { return x / y })
}

// binaryOp applies an element-wise binary operation with broadcasting.
func (cpu *CPUBackend) binaryOp(name string, a, b *tensor.RawTensor,
	f32 func(x, y float32) float32, f64 func(x, y float64) float64,
) *tensor.RawTensor {
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", name, a.DType(), b.DType()))
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result, err := tensor.NewRaw(outShape, a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", name, err))
	}

	switch a.DType() {
	case tensor.Float32:
		if !needsBroadcast {
			// Fast path: same shape, flat loop
			src1, src2, dst := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
			parallel.For(len(dst), func(i int) {
				dst[i] = f32(src1[i], src2[i])
			}, cpu.par)
		} else {
			binaryBroadcastFloat32(result, a, b, outShape, f32)
		}
	case tensor.Float64:
		if !needsBroadcast {
			src1, src2, dst := a.AsFloat64(), b.AsFloat64(), result.AsFloat64()
			parallel.For(len(dst), func(i int) {
				dst[i] = f64(src1[i], src2[i])
			}, cpu.par)
		} else {
			binaryBroadcastFloat64(result, a, b, outShape, f64)
		}
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", name, a.DType()))
	}

	return result
}
