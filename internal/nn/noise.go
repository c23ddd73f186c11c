package nn

import (
	"math/rand"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// sampleMask draws a Bernoulli keep-mask with the given keep rate. Each
// entry is 1 with probability keep and 0 otherwise.
func sampleMask[B tensor.Backend](rng *rand.Rand, shape tensor.Shape, keep float32, b B) *tensor.Tensor[float32, B] {
	mask := tensor.Zeros[float32](shape, b)
	data := mask.Data()
	for i := range data {
		if rng.Float32() < keep {
			data[i] = 1
		}
	}
	return mask
}

// MaskingNoise zeroes each entry of its input independently with the
// given corruption level. A fresh mask is drawn for every evaluation,
// but within one evaluation all consumers see the same corrupted
// tensor.
type MaskingNoise[B tensor.Backend] struct {
	input graph.Expr[B]
	level float32
	rng   *rand.Rand
}

// NewMaskingNoise creates a masking-noise node over input. The node
// keeps its own generator, seeded from rng, so noise at this site does
// not perturb the sampling sequence of any other node.
func NewMaskingNoise[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], level float32) *MaskingNoise[B] {
	return &MaskingNoise[B]{
		input: input,
		level: level,
		rng:   rand.New(rand.NewSource(rng.Int63())),
	}
}

func (m *MaskingNoise[B]) Eval(r *graph.Run[B]) *tensor.Tensor[float32, B] {
	return graph.Memo(r, m, func() *tensor.Tensor[float32, B] {
		in := r.Eval(m.input)
		mask := sampleMask(m.rng, in.Shape(), 1-m.level, in.Backend())
		return in.Mul(mask)
	})
}

// TwinDisplacement produces a pair of points straddling each input row:
// the row shifted forward and backward along a random unit direction,
// each by stepLen. Both twins of one evaluation share a single
// direction sample, so the input row bisects its pair.
type TwinDisplacement[B tensor.Backend] struct {
	input   graph.Expr[B]
	stepLen float32
	rng     *rand.Rand
	left    graph.Expr[B]
	right   graph.Expr[B]
}

// NewTwinDisplacement creates a twin-displacement node over input with
// the given displacement distance.
func NewTwinDisplacement[B tensor.Backend](rng *rand.Rand, input graph.Expr[B], stepLen float32) *TwinDisplacement[B] {
	td := &TwinDisplacement[B]{
		input:   input,
		stepLen: stepLen,
		rng:     rand.New(rand.NewSource(rng.Int63())),
	}
	td.left = graph.NewFunc("twin_left", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return r.Eval(td.input).Sub(td.step(r))
	})
	td.right = graph.NewFunc("twin_right", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return r.Eval(td.input).Add(td.step(r))
	})
	return td
}

// step samples the shared per-evaluation displacement, a unit-norm
// random direction per row scaled by stepLen.
func (td *TwinDisplacement[B]) step(r *graph.Run[B]) *tensor.Tensor[float32, B] {
	return graph.Memo(r, td, func() *tensor.Tensor[float32, B] {
		in := r.Eval(td.input)
		dir := tensor.Randn[float32](td.rng, in.Shape(), in.Backend())
		return RowNormalize(dir).MulScalar(td.stepLen)
	})
}

// Left is the input displaced backward along the sampled direction.
func (td *TwinDisplacement[B]) Left() graph.Expr[B] { return td.left }

// Right is the input displaced forward along the sampled direction.
func (td *TwinDisplacement[B]) Right() graph.Expr[B] { return td.right }
