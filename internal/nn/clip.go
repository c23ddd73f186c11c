package nn

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// ClipParams records, per parameter, whether an external trainer should
// apply norm clipping to it. Weight matrices are registered with flag 1
// and bias vectors with flag 0. The map is keyed by parameter identity,
// so a weight shared across several layers appears exactly once.
type ClipParams[B tensor.Backend] struct {
	flags map[*Parameter[B]]int
}

// NewClipParams creates an empty registry.
func NewClipParams[B tensor.Backend]() *ClipParams[B] {
	return &ClipParams[B]{flags: make(map[*Parameter[B]]int)}
}

// Set records the clipping flag for a parameter, overwriting any
// previous entry for the same parameter.
func (c *ClipParams[B]) Set(p *Parameter[B], flag int) {
	c.flags[p] = flag
}

// Flag returns the recorded flag for p, or 0 if p was never registered.
func (c *ClipParams[B]) Flag(p *Parameter[B]) int {
	return c.flags[p]
}

// Clippable reports whether p was registered with a non-zero flag.
func (c *ClipParams[B]) Clippable(p *Parameter[B]) bool {
	return c.flags[p] != 0
}

// Len returns the number of registered parameters.
func (c *ClipParams[B]) Len() int {
	return len(c.flags)
}
