// Package serialization reads and writes LayerNet checkpoint files.
//
// A checkpoint holds a network's named parameter tensors in a single
// .lnet file: magic bytes, a format version, a JSON header describing
// the tensors, a SHA-256 checksum of the data section, and the raw
// little-endian tensor data.
package serialization

import (
	"time"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Format constants.
const (
	MagicBytes    = "LNET"
	FormatVersion = 1
	ChecksumSize  = 32 // SHA-256
)

// Data type string constants for the JSON header.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeBool    = "bool"
)

// Header is the JSON header of a checkpoint file.
type Header struct {
	FormatVersion int               `json:"format_version"`
	CreatedAt     time.Time         `json:"created_at"`
	Tensors       []TensorMeta      `json:"tensors"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`
}

func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Bool:
		return DTypeBool
	default:
		return "unknown"
	}
}

func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeBool:
		return tensor.Bool, true
	default:
		return 0, false
	}
}
