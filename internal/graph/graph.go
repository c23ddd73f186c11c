// Package graph provides a small lazily-evaluated expression graph.
//
// Networks are built once, as a graph of Expr nodes over shared parameter
// tensors, and evaluated many times. Each evaluation is a Run: placeholders
// are fed fresh tensors, every node is computed at most once (memoized by
// node identity), and stochastic nodes (dropout masks, noise) sample fresh
// randomness exactly once per Run. Memoization is what makes a sampled mask
// consistent across all consumers of a node within one evaluation.
package graph

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/tensor"
)

// Expr is a node in a computation graph. Eval returns the node's value for
// the given Run, computing it on first use.
//
// Implementations must be pointer types: Run memoizes values by node
// identity.
type Expr[B tensor.Backend] interface {
	Eval(r *Run[B]) *tensor.Tensor[float32, B]
}

// Placeholder is a graph input bound to a concrete tensor per Run.
type Placeholder[B tensor.Backend] struct {
	name string
}

// NewPlaceholder creates a named graph input.
func NewPlaceholder[B tensor.Backend](name string) *Placeholder[B] {
	return &Placeholder[B]{name: name}
}

// Name returns the placeholder's name.
func (p *Placeholder[B]) Name() string {
	return p.name
}

// Eval returns the tensor fed for this placeholder.
// Panics if the Run has no feed for it.
func (p *Placeholder[B]) Eval(r *Run[B]) *tensor.Tensor[float32, B] {
	t, ok := r.feeds[p]
	if !ok {
		panic(fmt.Sprintf("graph: no feed for placeholder %q", p.name))
	}
	return t
}

// Func wraps a closure as a named graph node. The closure is invoked at most
// once per Run; its result is memoized like any other node.
type Func[B tensor.Backend] struct {
	name string
	fn   func(r *Run[B]) *tensor.Tensor[float32, B]
}

// NewFunc creates a closure-backed node.
func NewFunc[B tensor.Backend](name string, fn func(r *Run[B]) *tensor.Tensor[float32, B]) *Func[B] {
	return &Func[B]{name: name, fn: fn}
}

// Name returns the node's name.
func (f *Func[B]) Name() string {
	return f.name
}

// Eval computes the node's value for the given Run.
func (f *Func[B]) Eval(r *Run[B]) *tensor.Tensor[float32, B] {
	return Memo(r, f, func() *tensor.Tensor[float32, B] {
		return f.fn(r)
	})
}
