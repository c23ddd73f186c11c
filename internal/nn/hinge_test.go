package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/layernet-ml/layernet/internal/backend/cpu"
	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// scoreLayer feeds fixed scores to an output loss.
type scoreLayer struct {
	scores graph.Expr[Backend]
	outDim int
}

func (s *scoreLayer) Output() graph.Expr[Backend]       { return s.scores }
func (s *scoreLayer) LinearOutput() graph.Expr[Backend] { return s.scores }
func (s *scoreLayer) OutDim() int                       { return s.outDim }

func hingeFixture(t *testing.T, scores []float32, rows int) (*MCL2HingeSS[Backend], *graph.Placeholder[Backend], *graph.Run[Backend]) {
	t.Helper()
	backend := cpu.New()
	x := graph.NewPlaceholder[Backend]("scores")
	y := graph.NewPlaceholder[Backend]("y")
	cols := len(scores) / rows
	loss := NewMCL2HingeSS[Backend](&scoreLayer{scores: x, outDim: cols})
	run := graph.NewRun[Backend]().Feed(x, fromSlice(t, scores, tensor.Shape{rows, cols}, backend))
	return loss, y, run
}

func feedLabels(t *testing.T, run *graph.Run[Backend], y *graph.Placeholder[Backend], labels []float32) {
	t.Helper()
	run.Feed(y, fromSlice(t, labels, tensor.Shape{len(labels)}, cpu.New()))
}

func TestHingeLossKnownValues(t *testing.T) {
	loss, y, run := hingeFixture(t, []float32{
		0.5, -0.2,
		0.5, 0.3,
	}, 2)
	feedLabels(t, run, y, []float32{1, 2})

	// Row 0, class 1: (1-0.5)^2 + (1-0.2)^2 = 0.89
	// Row 1, class 2: (1+0.5)^2 + (1-0.3)^2 = 2.74
	got := run.Eval(loss.LossFunc(y)).Item()
	assert.InDelta(t, (0.89+2.74)/2, got, 1e-5)
}

func TestHingeLossSkipsUnlabeled(t *testing.T) {
	loss, y, run := hingeFixture(t, []float32{
		0.5, -0.2,
		0.5, 0.3,
	}, 2)
	feedLabels(t, run, y, []float32{0, 2})

	// Only row 1 counts, and the normalizer is the labeled count.
	got := run.Eval(loss.LossFunc(y)).Item()
	assert.InDelta(t, 2.74, got, 1e-5)
}

func TestHingeLossNoLabeledRows(t *testing.T) {
	loss, y, run := hingeFixture(t, []float32{1, -1}, 1)
	feedLabels(t, run, y, []float32{0})

	got := run.Eval(loss.LossFunc(y)).Item()
	assert.True(t, math.IsNaN(float64(got)))
}

func TestHingeLossRejectsOutOfRangeLabel(t *testing.T) {
	loss, y, run := hingeFixture(t, []float32{1, -1}, 1)
	feedLabels(t, run, y, []float32{3})
	assert.Panics(t, func() { run.Eval(loss.LossFunc(y)) })
}

func TestHingeErrors(t *testing.T) {
	loss, y, run := hingeFixture(t, []float32{
		2, 1,
		0.5, 0.3,
		-1, 4,
	}, 3)
	// Row 0 predicts class 1, correct. Row 1 predicts class 1 against
	// label 2, wrong. Row 2 is unlabeled and ignored.
	feedLabels(t, run, y, []float32{1, 2, 0})

	got := run.Eval(loss.Errors(y)).Item()
	assert.Equal(t, float32(1), got)
}

func TestHingeMargin(t *testing.T) {
	// Scores beyond the margin on the correct side contribute nothing.
	loss, y, run := hingeFixture(t, []float32{2, -3}, 1)
	feedLabels(t, run, y, []float32{1})

	got := run.Eval(loss.LossFunc(y)).Item()
	assert.Zero(t, got)
}
