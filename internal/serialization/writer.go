package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Save writes a state dictionary to path as a checkpoint file. Tensors
// are laid out in name order, so checkpoints of the same parameters
// are byte-for-byte reproducible.
func Save(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header := Header{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		Metadata:      metadata,
		Tensors:       make([]TensorMeta, 0, len(stateDict)),
	}
	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: offset,
			Size:   size,
		})
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("serialization: marshal header: %w", err)
	}

	data := make([]byte, 0, offset)
	for _, name := range names {
		data = append(data, stateDict[name].Data()...)
	}
	checksum := ComputeChecksum(data)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialization: create %s: %w", path, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("serialization: write magic: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("serialization: write version: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(headerJSON))); err != nil {
		return fmt.Errorf("serialization: write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("serialization: write header: %w", err)
	}
	if _, err := w.Write(checksum[:]); err != nil {
		return fmt.Errorf("serialization: write checksum: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("serialization: write tensor data: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("serialization: flush %s: %w", path, err)
	}
	return file.Sync()
}
