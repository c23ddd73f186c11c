package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// maxHeaderSize caps the JSON header so a corrupt size field cannot
// trigger a huge allocation.
const maxHeaderSize = 16 << 20

// Load reads a checkpoint file and returns its state dictionary and
// header. The data section is verified against the stored checksum.
func Load(path string) (map[string]*tensor.RawTensor, *Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: open %s: %w", path, err)
	}
	defer file.Close()

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(file, magic); err != nil {
		return nil, nil, fmt.Errorf("serialization: read magic: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("serialization: read version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	var headerSize uint32
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("serialization: read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, nil, fmt.Errorf("serialization: header size %d too large", headerSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("serialization: read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("serialization: parse header: %w", err)
	}

	var stored [ChecksumSize]byte
	if _, err := io.ReadFull(file, stored[:]); err != nil {
		return nil, nil, fmt.Errorf("serialization: read checksum: %w", err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: read tensor data: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(data), stored); err != nil {
		return nil, nil, err
	}

	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		dtype, ok := stringToDtype(meta.DType)
		if !ok {
			return nil, nil, fmt.Errorf("%w: tensor %q has dtype %q", ErrUnknownDType, meta.Name, meta.DType)
		}
		if meta.Offset < 0 || meta.Size < 0 || meta.Offset+meta.Size > int64(len(data)) {
			return nil, nil, fmt.Errorf("%w: tensor %q", ErrTruncatedFile, meta.Name)
		}
		raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: tensor %q: %w", meta.Name, err)
		}
		if int64(raw.ByteSize()) != meta.Size {
			return nil, nil, fmt.Errorf("serialization: tensor %q: size %d does not match shape %v",
				meta.Name, meta.Size, meta.Shape)
		}
		copy(raw.Data(), data[meta.Offset:meta.Offset+meta.Size])
		stateDict[meta.Name] = raw
	}
	return stateDict, &header, nil
}
