package graph

import (
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Run is a single evaluation of a graph: one set of placeholder feeds plus a
// memo table keyed by node identity. Values cached in one Run are never
// reused by another, so stochastic nodes resample on every evaluation.
//
// A Run is not safe for concurrent use.
type Run[B tensor.Backend] struct {
	feeds map[*Placeholder[B]]*tensor.Tensor[float32, B]
	memo  map[any]any
}

// NewRun creates an empty evaluation context.
func NewRun[B tensor.Backend]() *Run[B] {
	return &Run[B]{
		feeds: make(map[*Placeholder[B]]*tensor.Tensor[float32, B]),
		memo:  make(map[any]any),
	}
}

// Feed binds a placeholder to a tensor for this Run.
// Returns the Run for chaining.
func (r *Run[B]) Feed(p *Placeholder[B], t *tensor.Tensor[float32, B]) *Run[B] {
	r.feeds[p] = t
	return r
}

// Eval evaluates an expression within this Run.
func (r *Run[B]) Eval(e Expr[B]) *tensor.Tensor[float32, B] {
	return e.Eval(r)
}

// Memo returns the value cached under key, computing and caching it with
// build on first use. Nodes with several derived outputs (e.g. a layer's
// activation plus its pre-activation) cache one composite value under their
// own identity.
func Memo[B tensor.Backend, V any](r *Run[B], key any, build func() V) V {
	if v, ok := r.memo[key]; ok {
		return v.(V)
	}
	v := build()
	r.memo[key] = v
	return v
}
