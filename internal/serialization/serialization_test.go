package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/layernet-ml/layernet/internal/backend/cpu"
	"github.com/layernet-ml/layernet/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.RawTensor {
	t.Helper()
	backend := cpu.New()
	w, err := tensor.FromSlice([]float32{0.1, -0.2, 0.3, 0.4, 0.5, -0.6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	b, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)
	require.NoError(t, err)
	return map[string]*tensor.RawTensor{
		"layer0.weight": w.Raw(),
		"layer0.bias":   b.Raw(),
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.lnet")
	dict := testStateDict(t)

	require.NoError(t, Save(path, dict, map[string]string{"net": "ssdev"}))

	loaded, header, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, header.FormatVersion)
	assert.Equal(t, "ssdev", header.Metadata["net"])
	require.Len(t, loaded, 2)

	for name, raw := range dict {
		got, ok := loaded[name]
		require.True(t, ok, "missing tensor %q", name)
		assert.True(t, got.Shape().Equal(raw.Shape()))
		assert.Equal(t, raw.DType(), got.DType())
		assert.Equal(t, raw.AsFloat32(), got.AsFloat32())
	}
}

func TestSaveDeterministic(t *testing.T) {
	dir := t.TempDir()
	dict := testStateDict(t)

	a := filepath.Join(dir, "a.lnet")
	b := filepath.Join(dir, "b.lnet")
	require.NoError(t, Save(a, dict, nil))
	require.NoError(t, Save(b, dict, nil))

	dataA, err := os.ReadFile(a)
	require.NoError(t, err)
	dataB, err := os.ReadFile(b)
	require.NoError(t, err)
	// Identical except for the created_at timestamp in the header, so
	// the data sections must match.
	assert.Equal(t, dataA[len(dataA)-36:], dataB[len(dataB)-36:])
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.lnet")
	require.NoError(t, os.WriteFile(path, []byte("NOPEnope"), 0o644))

	_, _, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestLoadDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.lnet")
	require.NoError(t, Save(path, testStateDict(t), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, _, err = Load(path)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
