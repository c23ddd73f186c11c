package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		LayerSizes: []int{4, 3, 2},
		UseBias:    true,
		LamL2a:     0.01,
		DevClones:  1,
		DevTypes:   []DevType{DevNormVariance, DevVariance},
		DevLams:    []float32{0.1, 2.0},
		DevMixRate: 0.3,
	}
}

func TestConfigValidateOK(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.NumLayers())
}

func TestConfigValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few layers", func(c *Config) { c.LayerSizes = []int{4} }},
		{"zero layer size", func(c *Config) { c.LayerSizes = []int{4, 0, 2} }},
		{"negative reg weight", func(c *Config) { c.LamL2a = -1 }},
		{"negative clones", func(c *Config) { c.DevClones = -1 }},
		{"dev types wrong length", func(c *Config) { c.DevTypes = []DevType{DevVariance} }},
		{"dev type out of range", func(c *Config) { c.DevTypes = []DevType{DevVariance, 9} }},
		{"dev lams wrong length", func(c *Config) { c.DevLams = []float32{1} }},
		{"negative dev lam", func(c *Config) { c.DevLams = []float32{-0.1, 1} }},
		{"mix rate above one", func(c *Config) { c.DevMixRate = 1.5 }},
		{"mix rate below zero", func(c *Config) { c.DevMixRate = -0.5 }},
		{"dev without clones", func(c *Config) { c.DevClones = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigZeroLamsWithoutClones(t *testing.T) {
	cfg := validConfig()
	cfg.DevClones = 0
	cfg.DevLams = []float32{0, 0}
	assert.NoError(t, cfg.Validate())
}
