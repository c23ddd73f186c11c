// Copyright 2025 LayerNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for LayerNet's lazy
// computation graphs.
//
// A graph is built once from expressions and evaluated many times.
// Each evaluation is a Run: placeholders are bound to input tensors
// and every expression is computed at most once, so stochastic nodes
// such as dropout masks present one consistent sample to all of their
// consumers within a single evaluation.
//
// Example:
//
//	backend := cpu.New()
//	x := graph.NewPlaceholder[*cpu.Backend]("x")
//	run := graph.NewRun[*cpu.Backend]().Feed(x, batch)
//	out := run.Eval(someExpr)
package graph

import (
	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// Expr is a node in a computation graph. Evaluating it under a Run
// yields a float32 tensor.
type Expr[B tensor.Backend] = graph.Expr[B]

// Placeholder is a named graph input, bound to a tensor per Run.
type Placeholder[B tensor.Backend] = graph.Placeholder[B]

// Func is an expression computed by a closure, memoized per Run.
type Func[B tensor.Backend] = graph.Func[B]

// Run is a single evaluation of a graph: the placeholder bindings plus
// the memoization table.
type Run[B tensor.Backend] = graph.Run[B]

// NewPlaceholder creates a named graph input.
func NewPlaceholder[B tensor.Backend](name string) *Placeholder[B] {
	return graph.NewPlaceholder[B](name)
}

// NewFunc creates an expression computed by fn, evaluated at most once
// per Run.
func NewFunc[B tensor.Backend](name string, fn func(r *Run[B]) *tensor.Tensor[float32, B]) *Func[B] {
	return graph.NewFunc(name, fn)
}

// NewRun starts a fresh evaluation with no bindings.
func NewRun[B tensor.Backend]() *Run[B] {
	return graph.NewRun[B]()
}

// Memo returns the memoized value for key within r, building it on
// first use. Custom expression types use it to share per-evaluation
// state between several output expressions.
func Memo[B tensor.Backend, V any](r *Run[B], key any, build func() V) V {
	return graph.Memo(r, key, build)
}
