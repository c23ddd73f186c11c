package nn

import (
	"fmt"
)

// DevType selects the representation transform applied before the
// dropout-ensemble variance penalty of a layer.
type DevType int

const (
	// DevVariance penalizes raw squared differences.
	DevVariance DevType = iota
	// DevNormVariance row-normalizes both representations first.
	DevNormVariance
	// DevTanhVariance squashes both representations through tanh.
	DevTanhVariance
	// DevSigmoidVariance squashes both representations through the
	// logistic function.
	DevSigmoidVariance
	// DevCrossEntropy uses binary cross-entropy between the squashed
	// representations instead of squared differences.
	DevCrossEntropy
)

// devLamThreshold is the level below which the summed per-layer DEV
// weights count as zero and the network degenerates to a plain MLP
// objective.
const devLamThreshold = 1e-5

// Config describes an SSDEVNet. LayerSizes lists the widths of the
// input, hidden, and output layers; DevTypes and DevLams carry one
// entry per computed layer, i.e. len(LayerSizes) - 1.
type Config struct {
	LayerSizes []int
	UseBias    bool
	LamL2a     float32
	DevClones  int
	DevTypes   []DevType
	DevLams    []float32
	DevMixRate float32
}

// NumLayers returns the number of computed layers.
func (c *Config) NumLayers() int {
	return len(c.LayerSizes) - 1
}

// devLamSum returns the summed per-layer DEV weights.
func (c *Config) devLamSum() float32 {
	var sum float32
	for _, lam := range c.DevLams {
		sum += lam
	}
	return sum
}

// Validate checks the configuration before any graph is built, so a
// bad shape or weight fails fast instead of surfacing as a tensor
// panic mid-evaluation.
func (c *Config) Validate() error {
	if len(c.LayerSizes) < 2 {
		return fmt.Errorf("config: need at least two layer sizes, got %d", len(c.LayerSizes))
	}
	for i, size := range c.LayerSizes {
		if size <= 0 {
			return fmt.Errorf("config: layer size %d must be positive, got %d", i, size)
		}
	}
	if c.LamL2a < 0 {
		return fmt.Errorf("config: activity regularization weight must be non-negative, got %v", c.LamL2a)
	}
	if c.DevClones < 0 {
		return fmt.Errorf("config: clone count must be non-negative, got %d", c.DevClones)
	}
	n := c.NumLayers()
	if len(c.DevTypes) != n {
		return fmt.Errorf("config: need %d dev types, got %d", n, len(c.DevTypes))
	}
	for i, dt := range c.DevTypes {
		if dt < DevVariance || dt > DevCrossEntropy {
			return fmt.Errorf("config: dev type %d is invalid: %d", i, dt)
		}
	}
	if len(c.DevLams) != n {
		return fmt.Errorf("config: need %d dev weights, got %d", n, len(c.DevLams))
	}
	for i, lam := range c.DevLams {
		if lam < 0 {
			return fmt.Errorf("config: dev weight %d must be non-negative, got %v", i, lam)
		}
	}
	if c.DevMixRate < 0 || c.DevMixRate > 1 {
		return fmt.Errorf("config: dev mix rate must be in [0, 1], got %v", c.DevMixRate)
	}
	if c.DevClones == 0 && c.devLamSum() > devLamThreshold {
		return fmt.Errorf("config: dev regularization needs at least one dropout clone")
	}
	return nil
}
