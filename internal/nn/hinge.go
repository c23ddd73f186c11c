package nn

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// LossLayer is the view of a network's final layer that an output-loss
// component consumes.
type LossLayer[B tensor.Backend] interface {
	Output() graph.Expr[B]
	LinearOutput() graph.Expr[B]
	OutDim() int
}

// OutputLoss scores a final layer against a label vector. Labels use
// the semi-supervised convention: 0 marks an unlabeled row and classes
// count from 1.
type OutputLoss[B tensor.Backend] interface {
	// LossFunc is the mean classification loss over the labeled rows.
	LossFunc(labels graph.Expr[B]) graph.Expr[B]
	// Errors counts the labeled rows whose predicted class differs
	// from the label.
	Errors(labels graph.Expr[B]) graph.Expr[B]
}

// LossFactory builds an output loss for a network's final layer.
type LossFactory[B tensor.Backend] func(layer LossLayer[B]) OutputLoss[B]

// MCL2HingeSS is a one-vs-all squared hinge loss over the final
// layer's linear output. Rows with label 0 contribute nothing; the
// loss is normalized by the number of labeled rows.
type MCL2HingeSS[B tensor.Backend] struct {
	layer LossLayer[B]
}

// NewMCL2HingeSS creates the loss over the given final layer.
func NewMCL2HingeSS[B tensor.Backend](layer LossLayer[B]) *MCL2HingeSS[B] {
	return &MCL2HingeSS[B]{layer: layer}
}

// labelData flattens a label tensor of shape [batch] or [batch, 1]
// into integer class indices.
func labelData[B tensor.Backend](labels *tensor.Tensor[float32, B], batch int) []int {
	if labels.NumElements() != batch {
		panic(fmt.Sprintf("nn: %d labels for a batch of %d rows", labels.NumElements(), batch))
	}
	data := labels.Data()
	out := make([]int, batch)
	for i, v := range data {
		out[i] = int(v)
	}
	return out
}

func (m *MCL2HingeSS[B]) LossFunc(labels graph.Expr[B]) graph.Expr[B] {
	return graph.NewFunc("mcl2hinge.loss", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		scores := r.Eval(m.layer.LinearOutput())
		batch, classes := scores.Shape()[0], scores.Shape()[1]
		lbls := labelData(r.Eval(labels), batch)
		data := scores.Data()
		var loss float32
		var labeled float32
		for i, lbl := range lbls {
			if lbl == 0 {
				continue
			}
			if lbl < 1 || lbl > classes {
				panic(fmt.Sprintf("nn: label %d outside 1..%d", lbl, classes))
			}
			labeled++
			for j := 0; j < classes; j++ {
				target := float32(-1)
				if j == lbl-1 {
					target = 1
				}
				if margin := 1 - target*data[i*classes+j]; margin > 0 {
					loss += margin * margin
				}
			}
		}
		return tensor.Scalar(loss/labeled, scores.Backend())
	})
}

func (m *MCL2HingeSS[B]) Errors(labels graph.Expr[B]) graph.Expr[B] {
	return graph.NewFunc("mcl2hinge.errors", func(r *graph.Run[B]) *tensor.Tensor[float32, B] {
		scores := r.Eval(m.layer.LinearOutput())
		batch, classes := scores.Shape()[0], scores.Shape()[1]
		lbls := labelData(r.Eval(labels), batch)
		data := scores.Data()
		var errs float32
		for i, lbl := range lbls {
			if lbl == 0 {
				continue
			}
			best := 0
			for j := 1; j < classes; j++ {
				if data[i*classes+j] > data[i*classes+best] {
					best = j
				}
			}
			if best != lbl-1 {
				errs++
			}
		}
		return tensor.Scalar(errs, scores.Backend())
	})
}
