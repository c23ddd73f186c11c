// Copyright 2025 LayerNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for LayerNet.
//
// # Overview
//
// Tensors are the fundamental data structure in LayerNet. This package
// provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - Device abstraction via the Backend interface
//
// # Basic Usage
//
//	import (
//	    "github.com/layernet-ml/layernet/tensor"
//	    "github.com/layernet-ml/layernet/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Create tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    // Tensor operations
//	    z := x.Add(y)
//	    result := x.MatMul(y.Transpose())
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType
// constraint:
//   - float32, float64 (floating-point)
//   - int32 (signed integers, used for class indices)
//   - bool (boolean masks)
//
// # Immutability
//
// Every operation allocates a fresh result tensor and never writes
// through its inputs. Network parameters shared between several
// computation graphs therefore stay intact across evaluations.
package tensor
