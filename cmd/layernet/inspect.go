package main

import (
	"fmt"
	"time"

	"github.com/layernet-ml/layernet/internal/serialization"
)

// inspect prints the header of a checkpoint file: format version,
// metadata, and one line per stored tensor.
func inspect(path string) error {
	tensors, header, err := serialization.Load(path)
	if err != nil {
		return err
	}

	fmt.Printf("Checkpoint: %s\n", path)
	fmt.Printf("Format version: %d\n", header.FormatVersion)
	if !header.CreatedAt.IsZero() {
		fmt.Printf("Created: %s\n", header.CreatedAt.Format(time.RFC3339))
	}
	for k, v := range header.Metadata {
		fmt.Printf("Metadata: %s=%s\n", k, v)
	}
	fmt.Printf("Tensors: %d\n", len(header.Tensors))
	for _, meta := range header.Tensors {
		raw := tensors[meta.Name]
		fmt.Printf("  %-24s %-8s %v (%d bytes)\n",
			meta.Name, meta.DType, raw.Shape(), meta.Size)
	}
	return nil
}
