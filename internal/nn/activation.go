package nn

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Activation is an elementwise non-linearity applied to a layer's
// linear output.
type Activation[B tensor.Backend] interface {
	Apply(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Name() string
}

// Sigmoid is the logistic activation 1 / (1 + exp(-x)).
type Sigmoid[B tensor.Backend] struct{}

func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return &Sigmoid[B]{} }

func (s *Sigmoid[B]) Apply(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Sigmoid()
}

func (s *Sigmoid[B]) Name() string { return "sigmoid" }

// Tanh is the hyperbolic tangent activation.
type Tanh[B tensor.Backend] struct{}

func NewTanh[B tensor.Backend]() *Tanh[B] { return &Tanh[B]{} }

func (t *Tanh[B]) Apply(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.Tanh()
}

func (t *Tanh[B]) Name() string { return "tanh" }

// ReLU is the rectified linear activation max(0, x).
type ReLU[B tensor.Backend] struct{}

func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

func (r *ReLU[B]) Apply(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.ReLU()
}

func (r *ReLU[B]) Name() string { return "relu" }
