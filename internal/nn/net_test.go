package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layernet-ml/layernet/internal/backend/cpu"
	"github.com/layernet-ml/layernet/internal/graph"
	"github.com/layernet-ml/layernet/internal/tensor"
)

type netFixture struct {
	backend Backend
	net     *SSDEVNet[Backend]
	x       *graph.Placeholder[Backend]
	y       *graph.Placeholder[Backend]
	inputs  *tensor.Tensor[float32, Backend]
	labels  *tensor.Tensor[float32, Backend]
}

func newNetFixture(t *testing.T, seed int64, cfg Config) *netFixture {
	t.Helper()
	backend := cpu.New()
	rng := rand.New(rand.NewSource(seed))
	x := graph.NewPlaceholder[Backend]("x")
	y := graph.NewPlaceholder[Backend]("y")

	net, err := NewSSDEVNet(rng, x, cfg, nil, backend)
	require.NoError(t, err)

	dataRng := rand.New(rand.NewSource(seed + 1))
	f := &netFixture{
		backend: backend,
		net:     net,
		x:       x,
		y:       y,
		inputs:  tensor.Rand[float32](dataRng, tensor.Shape{6, cfg.LayerSizes[0]}, backend),
	}
	f.labels = fromSlice(t, []float32{1, 0, 2, 0, 0, 1}, tensor.Shape{6}, backend)
	return f
}

func (f *netFixture) run() *graph.Run[Backend] {
	return graph.NewRun[Backend]().Feed(f.x, f.inputs).Feed(f.y, f.labels)
}

func TestNetRejectsInvalidConfig(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(1))
	x := graph.NewPlaceholder[Backend]("x")

	cfg := validConfig()
	cfg.DevLams = []float32{1}
	_, err := NewSSDEVNet(rng, x, cfg, nil, backend)
	assert.Error(t, err)

	_, err = NewSSDEVNet[Backend](rng, nil, validConfig(), nil, backend)
	assert.Error(t, err)
}

func TestNetStructure(t *testing.T) {
	cfg := validConfig()
	cfg.DevClones = 2
	f := newNetFixture(t, 1234, cfg)
	net := f.net

	require.Len(t, net.Layers(), 2)
	require.Len(t, net.DevClones(), 2)
	require.Len(t, net.DevClones()[0], 2)

	// Clones share the raw layers' parameters.
	for li, layer := range net.Layers() {
		for _, clone := range net.DevClones() {
			assert.Same(t, layer.Weight(), clone[li].Weight())
			assert.Same(t, layer.Bias(), clone[li].Bias())
		}
	}

	// First clone layer drops lightly, the rest at the usual rate.
	assert.InDelta(t, 0.2, net.DevClones()[0][0].DropRate(), 1e-6)
	assert.InDelta(t, 0.5, net.DevClones()[0][1].DropRate(), 1e-6)
	assert.Zero(t, net.Layers()[0].DropRate())

	// Weight and bias per layer.
	assert.Len(t, net.Params(), 4)
}

func TestNetClipRegistry(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())
	net := f.net

	for _, layer := range net.Layers() {
		assert.Equal(t, 1, net.ClipParams().Flag(layer.Weight()))
		assert.True(t, net.ClipParams().Clippable(layer.Weight()))
		assert.Equal(t, 0, net.ClipParams().Flag(layer.Bias()))
		assert.False(t, net.ClipParams().Clippable(layer.Bias()))
	}
	// Two weights, two biases, one decoder bias from the single DAE.
	assert.Equal(t, 5, net.ClipParams().Len())
}

func TestNetDAEStructure(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())
	net := f.net

	require.Len(t, net.RawDAELayers(), 1)
	require.Len(t, net.SdeDAELayers(), 1)

	raw := net.RawDAELayers()[0]
	sde := net.SdeDAELayers()[0]
	layer := net.Layers()[0]

	// Encoder shares the layer's parameters; both decoders tie the
	// same weight and share one decoder bias.
	assert.Same(t, layer.Weight(), raw.Encoder.Weight())
	assert.Same(t, layer.Bias(), raw.Encoder.Bias())
	assert.Same(t, raw.Encoder, sde.Encoder)
	assert.Same(t, layer.Weight(), raw.Decoder.Weight())
	assert.Same(t, layer.Weight(), sde.Decoder.Weight())
	assert.Same(t, raw.Decoder.Bias(), sde.Decoder.Bias())
	assert.Equal(t, 0, net.ClipParams().Flag(raw.Decoder.Bias()))

	require.Len(t, net.DAEParams(), 1)
	assert.Len(t, net.DAEParams()[0], 3)
}

func TestNetDAELosses(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())

	require.Len(t, f.net.RawDAELosses(), 1)
	require.Len(t, f.net.SdeDAELosses(), 1)

	run := f.run()
	for _, losses := range [][]DAELoss[Backend]{f.net.RawDAELosses(), f.net.SdeDAELosses()} {
		recon := run.Eval(losses[0].Recon).Item()
		sparse := run.Eval(losses[0].Sparse).Item()
		assert.False(t, math.IsNaN(float64(recon)))
		assert.Greater(t, recon, float32(0))
		assert.False(t, math.IsNaN(float64(sparse)))
		assert.Greater(t, sparse, float32(0))
	}
}

func TestDevCostFiniteAndPositive(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())

	cost := f.run().Eval(f.net.DevCost(f.y, true)).Item()
	assert.False(t, math.IsNaN(float64(cost)))
	assert.False(t, math.IsInf(float64(cost), 0))
	assert.Greater(t, cost, float32(0))
}

func TestDevCostJointSplitsIntoClassAndReg(t *testing.T) {
	cfg := validConfig()
	f := newNetFixture(t, 1234, cfg)

	run := f.run()
	joint := run.Eval(f.net.DevCost(f.y, true)).Item()
	reg := run.Eval(f.net.DevRegLoss(f.y)).Item()
	rawClass := run.Eval(f.net.RawClassLoss(f.y)).Item()
	sdeClass := run.Eval(f.net.SdeClassLoss(f.y)).Item()

	dmr := cfg.DevMixRate
	assert.InDelta(t, float64(dmr*rawClass+(1-dmr)*sdeClass+reg), float64(joint), 1e-4)
}

// With all DEV weights at zero the objective collapses to the plain
// dropless MLP loss.
func TestDevCostDegeneratesWithoutDevLams(t *testing.T) {
	cfg := validConfig()
	cfg.DevLams = []float32{0, 0}
	f := newNetFixture(t, 1234, cfg)

	run := f.run()
	joint := run.Eval(f.net.DevCost(f.y, true)).Item()
	rawClass := run.Eval(f.net.RawClassLoss(f.y)).Item()
	rawReg := run.Eval(f.net.RawRegLoss()).Item()
	assert.InDelta(t, float64(rawClass+rawReg), float64(joint), 1e-6)

	regOnly := run.Eval(f.net.DevCost(f.y, false)).Item()
	assert.InDelta(t, float64(rawReg), float64(regOnly), 1e-6)
}

// A small half-labeled batch through a 4-3-2 net: the joint objective
// is a finite positive scalar, and zeroing the DEV weights collapses
// it to the dropless loss.
func TestDevCostEndToEnd(t *testing.T) {
	cfg := Config{
		LayerSizes: []int{4, 3, 2},
		UseBias:    true,
		LamL2a:     0.01,
		DevClones:  1,
		DevTypes:   []DevType{DevVariance, DevVariance},
		DevLams:    []float32{1, 1},
	}
	backend := cpu.New()
	x := graph.NewPlaceholder[Backend]("x")
	y := graph.NewPlaceholder[Backend]("y")
	dataRng := rand.New(rand.NewSource(7))
	inputs := tensor.Rand[float32](dataRng, tensor.Shape{4, 4}, backend)
	labels := fromSlice(t, []float32{0, 0, 1, 1}, tensor.Shape{4}, backend)

	net, err := NewSSDEVNet(rand.New(rand.NewSource(99)), x, cfg, nil, backend)
	require.NoError(t, err)
	run := graph.NewRun[Backend]().Feed(x, inputs).Feed(y, labels)
	cost := run.Eval(net.DevCost(y, true)).Item()
	assert.False(t, math.IsNaN(float64(cost)))
	assert.False(t, math.IsInf(float64(cost), 0))
	assert.Greater(t, cost, float32(0))

	cfg.DevLams = []float32{0, 0}
	plain, err := NewSSDEVNet(rand.New(rand.NewSource(99)), x, cfg, nil, backend)
	require.NoError(t, err)
	run = graph.NewRun[Backend]().Feed(x, inputs).Feed(y, labels)
	joint := run.Eval(plain.DevCost(y, true)).Item()
	want := run.Eval(plain.RawClassLoss(y)).Item() + run.Eval(plain.RawRegLoss()).Item()
	assert.Equal(t, want, joint)
}

func TestDevCostAllVariantsFinite(t *testing.T) {
	for dt := DevVariance; dt <= DevCrossEntropy; dt++ {
		cfg := validConfig()
		cfg.DevTypes = []DevType{dt, dt}
		f := newNetFixture(t, 1234+int64(dt), cfg)

		cost := f.run().Eval(f.net.DevCost(f.y, true)).Item()
		assert.False(t, math.IsNaN(float64(cost)), "dev type %d", dt)
		assert.False(t, math.IsInf(float64(cost), 0), "dev type %d", dt)
	}
}

// The masked variance penalty has no defined value without unlabeled
// rows: the mask normalizer is zero.
func TestDevCostAllLabeledRows(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())
	f.labels = fromSlice(t, []float32{1, 2, 1, 2, 1, 2}, tensor.Shape{6}, f.backend)

	cost := f.run().Eval(f.net.DevCost(f.y, true)).Item()
	assert.True(t, math.IsNaN(float64(cost)))
}

func TestSdeCost(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())

	run := f.run()
	sde := run.Eval(f.net.SdeCost(f.y)).Item()
	class := run.Eval(f.net.SdeClassLoss(f.y)).Item()
	reg := run.Eval(f.net.SdeRegLoss()).Item()
	assert.InDelta(t, float64(class+reg), float64(sde), 1e-5)
}

func TestClassErrors(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())

	errs := f.run().Eval(f.net.ClassErrors(f.y)).Item()
	labeled := float32(3)
	assert.GreaterOrEqual(t, errs, float32(0))
	assert.LessOrEqual(t, errs, labeled)
	assert.Equal(t, errs, float32(math.Trunc(float64(errs))))
}

func TestNetReproducibleAcrossSeeds(t *testing.T) {
	a := newNetFixture(t, 42, validConfig())
	b := newNetFixture(t, 42, validConfig())

	costA := a.run().Eval(a.net.DevCost(a.y, true)).Item()
	costB := b.run().Eval(b.net.DevCost(b.y, true)).Item()
	assert.Equal(t, costA, costB)

	c := newNetFixture(t, 43, validConfig())
	costC := c.run().Eval(c.net.DevCost(c.y, true)).Item()
	assert.NotEqual(t, costA, costC)
}

func TestNetWithoutClonesActsAsPlainMLP(t *testing.T) {
	cfg := validConfig()
	cfg.DevClones = 0
	cfg.DevLams = []float32{0, 0}
	f := newNetFixture(t, 1234, cfg)

	assert.Empty(t, f.net.DevClones())
	run := f.run()
	out := run.Eval(f.net.Output())
	require.True(t, out.Shape().Equal(tensor.Shape{6, 2}))

	cost := run.Eval(f.net.DevCost(f.y, true)).Item()
	assert.False(t, math.IsNaN(float64(cost)))
}

func TestNetBiasFree(t *testing.T) {
	cfg := validConfig()
	cfg.UseBias = false
	f := newNetFixture(t, 1234, cfg)

	for _, layer := range f.net.Layers() {
		assert.Nil(t, layer.Bias())
	}
	// Weights only, plus the autoencoder's own encoder and decoder
	// biases.
	assert.Len(t, f.net.Params(), 2)

	cost := f.run().Eval(f.net.DevCost(f.y, true)).Item()
	assert.False(t, math.IsNaN(float64(cost)))
}
