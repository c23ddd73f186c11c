package nn

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Parameter is a named trainable tensor. Parameters are shared by
// reference: every layer holding the same *Parameter reads the same
// underlying tensor, so an optimizer update through one holder is
// visible to all of them on the next evaluation.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a parameter wrapping the given tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter's name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter's current value.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// SetTensor replaces the parameter's value. The new tensor must have
// the same shape as the current one.
func (p *Parameter[B]) SetTensor(t *tensor.Tensor[float32, B]) {
	if !p.tensor.Shape().Equal(t.Shape()) {
		panic("parameter: shape mismatch in SetTensor")
	}
	p.tensor = t
}

// Grad returns the accumulated gradient, or nil if none has been set.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad stores a gradient computed by an external trainer.
func (p *Parameter[B]) SetGrad(g *tensor.Tensor[float32, B]) {
	p.grad = g
}

// ZeroGrad clears the stored gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}
