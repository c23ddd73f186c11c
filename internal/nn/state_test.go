package nn

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layernet-ml/layernet/internal/graph"
)

func TestAllParamsDistinct(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())

	params := f.net.AllParams()
	seen := make(map[string]bool)
	for _, p := range params {
		assert.False(t, seen[p.Name()], "duplicate name %q", p.Name())
		seen[p.Name()] = true
	}
	// Two layers with weight and bias, plus the single autoencoder's
	// decoder bias. The encoder shares the first layer's parameters.
	assert.Len(t, params, 5)
}

func TestCheckpointRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.lnet")

	a := newNetFixture(t, 1234, validConfig())
	require.NoError(t, a.net.SaveCheckpoint(path))

	// A net built from a different seed has different weights until
	// the checkpoint is restored.
	b := newNetFixture(t, 777, validConfig())
	wantW := a.net.Layers()[0].Weight().Tensor().Data()
	require.NotEqual(t, wantW, b.net.Layers()[0].Weight().Tensor().Data())

	require.NoError(t, b.net.LoadCheckpoint(path))
	assert.Equal(t, wantW, b.net.Layers()[0].Weight().Tensor().Data())

	// The restored parameters drive identical dropless outputs on the
	// same batch.
	outA := a.run().Eval(a.net.Output()).Data()
	outB := graph.NewRun[Backend]().Feed(b.x, a.inputs).Eval(b.net.Output()).Data()
	assert.Equal(t, outA, outB)
}

func TestLoadStateDictMissingTensor(t *testing.T) {
	f := newNetFixture(t, 1234, validConfig())
	err := LoadStateDict(f.net.AllParams(), nil, f.backend)
	assert.Error(t, err)
}
