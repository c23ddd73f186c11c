package serialization

import "errors"

// Common errors.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrUnknownDType       = errors.New("unknown tensor data type")
	ErrTruncatedFile      = errors.New("tensor extends beyond data section")
)
