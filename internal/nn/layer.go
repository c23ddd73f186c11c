package nn

import (
	"fmt"
	"math/rand"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// dropThreshold is the rate below which dropout is disabled entirely.
// A layer built with a smaller rate applies no mask and no rescaling.
const dropThreshold = 0.01

// weightScale is the standard deviation of the Gaussian weight
// initialization.
const weightScale = 0.01

// LayerConfig describes one hidden layer. Weight and Bias are optional:
// when nil, fresh parameters are initialized; when set, the layer
// shares them with whichever layer created them. TransposeW makes the
// layer multiply by the transpose of the shared weight, which is how
// decoders tie their weights to the matching encoder.
type LayerConfig[B tensor.Backend] struct {
	Input      graph.Expr[B]
	InDim      int
	OutDim     int
	Activation Activation[B]
	DropRate   float32
	UseBias    bool
	Weight     *Parameter[B]
	Bias       *Parameter[B]
	TransposeW bool
	Name       string
}

// HiddenLayer computes act(drop(x) @ W + b). The weight is stored with
// shape [in, out]; a tied decoder stores the encoder's [out, in] weight
// and transposes it at evaluation time, so both always read the same
// underlying values.
type HiddenLayer[B tensor.Backend] struct {
	backend    B
	input      graph.Expr[B]
	inDim      int
	outDim     int
	act        Activation[B]
	dropRate   float32
	useBias    bool
	weight     *Parameter[B]
	bias       *Parameter[B]
	transposeW bool
	rng        *rand.Rand

	output    graph.Expr[B]
	linearOut graph.Expr[B]
	actL2Sum  graph.Expr[B]
	actL1Sum  graph.Expr[B]
	inpL1Sum  graph.Expr[B]
}

// layerVals is the memoized per-evaluation forward state.
type layerVals[B tensor.Backend] struct {
	dropped *tensor.Tensor[float32, B]
	linear  *tensor.Tensor[float32, B]
	output  *tensor.Tensor[float32, B]
}

// NewHiddenLayer builds a hidden layer. Fresh weights are drawn from
// 0.01 * N(0, 1) using rng and fresh biases start at zero.
func NewHiddenLayer[B tensor.Backend](rng *rand.Rand, cfg LayerConfig[B], backend B) *HiddenLayer[B] {
	if cfg.Input == nil {
		panic("nn: hidden layer requires an input expression")
	}
	if cfg.InDim <= 0 || cfg.OutDim <= 0 {
		panic(fmt.Sprintf("nn: invalid layer dimensions [%d, %d]", cfg.InDim, cfg.OutDim))
	}
	l := &HiddenLayer[B]{
		backend:    backend,
		input:      cfg.Input,
		inDim:      cfg.InDim,
		outDim:     cfg.OutDim,
		act:        cfg.Activation,
		dropRate:   cfg.DropRate,
		useBias:    cfg.UseBias,
		weight:     cfg.Weight,
		bias:       cfg.Bias,
		transposeW: cfg.TransposeW,
	}
	if l.dropRate >= dropThreshold {
		l.rng = rand.New(rand.NewSource(rng.Int63()))
	}
	wantShape := tensor.Shape{cfg.InDim, cfg.OutDim}
	if cfg.TransposeW {
		wantShape = tensor.Shape{cfg.OutDim, cfg.InDim}
	}
	if l.weight == nil {
		if cfg.TransposeW {
			panic("nn: a transposed weight must be shared from another layer")
		}
		w := tensor.Randn[float32](rng, wantShape, backend).MulScalar(weightScale)
		l.weight = NewParameter(cfg.Name+".weight", w)
	} else if !l.weight.Tensor().Shape().Equal(wantShape) {
		panic(fmt.Sprintf("nn: shared weight shape %v does not fit layer [%d, %d]",
			l.weight.Tensor().Shape(), cfg.InDim, cfg.OutDim))
	}
	if cfg.UseBias && l.bias == nil {
		b := tensor.Zeros[float32](tensor.Shape{cfg.OutDim}, backend)
		l.bias = NewParameter(cfg.Name+".bias", b)
	}

	l.output = graph.NewFunc(cfg.Name+".output", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return l.vals(r).output
	})
	l.linearOut = graph.NewFunc(cfg.Name+".linear", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return l.vals(r).linear
	})
	l.actL2Sum = graph.NewFunc(cfg.Name+".act_l2", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		out := l.vals(r).output
		return out.Mul(out).Sum().DivScalar(float32(out.NumElements()))
	})
	l.actL1Sum = graph.NewFunc(cfg.Name+".act_l1", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return RowNormalize(l.vals(r).output).Abs().Sum()
	})
	l.inpL1Sum = graph.NewFunc(cfg.Name+".inp_l1", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		return RowNormalize(l.vals(r).dropped).Abs().Sum()
	})
	return l
}

// vals runs the layer forward once per evaluation. Memoizing the whole
// triple guarantees every consumer of this layer, output, linear
// output, and the activity statistics alike, observes the same dropout
// mask.
func (l *HiddenLayer[B]) vals(r *graph.Run[B]) *layerVals[B] {
	return graph.Memo(r, l, func() *layerVals[B] {
		in := r.Eval(l.input)
		w := l.weight.Tensor()
		if l.transposeW {
			w = w.T()
		}
		if l.dropRate >= dropThreshold {
			mask := sampleMask(l.rng, in.Shape(), 1-l.dropRate, l.backend)
			in = in.Mul(mask)
			w = w.DivScalar(1 - l.dropRate)
		}
		linear := in.MatMul(w)
		if l.useBias {
			linear = linear.Add(l.bias.Tensor().Reshape(1, l.outDim))
		}
		out := linear
		if l.act != nil {
			out = l.act.Apply(linear)
		}
		return &layerVals[B]{dropped: in, linear: linear, output: out}
	})
}

// Input returns the layer's input expression, before any dropout.
func (l *HiddenLayer[B]) Input() graph.Expr[B] { return l.input }

// Output returns the post-activation output expression.
func (l *HiddenLayer[B]) Output() graph.Expr[B] { return l.output }

// LinearOutput returns the pre-activation output expression.
func (l *HiddenLayer[B]) LinearOutput() graph.Expr[B] { return l.linearOut }

// ActL2Sum is the mean squared activation, used for L2 activity
// regularization.
func (l *HiddenLayer[B]) ActL2Sum() graph.Expr[B] { return l.actL2Sum }

// ActL1Sum is the L1 norm of the row-normalized activations.
func (l *HiddenLayer[B]) ActL1Sum() graph.Expr[B] { return l.actL1Sum }

// InpL1Sum is the L1 norm of the row-normalized layer input, after
// dropout when the layer drops.
func (l *HiddenLayer[B]) InpL1Sum() graph.Expr[B] { return l.inpL1Sum }

// Weight returns the layer's weight parameter.
func (l *HiddenLayer[B]) Weight() *Parameter[B] { return l.weight }

// Bias returns the layer's bias parameter, or nil for a bias-free
// layer.
func (l *HiddenLayer[B]) Bias() *Parameter[B] { return l.bias }

// InDim returns the layer's input width.
func (l *HiddenLayer[B]) InDim() int { return l.inDim }

// OutDim returns the layer's output width.
func (l *HiddenLayer[B]) OutDim() int { return l.outDim }

// DropRate returns the layer's dropout rate.
func (l *HiddenLayer[B]) DropRate() float32 { return l.dropRate }

// Params returns the layer's own parameters, weight then bias.
func (l *HiddenLayer[B]) Params() []*Parameter[B] {
	params := []*Parameter[B]{l.weight}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}
