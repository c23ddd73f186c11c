package nn

import (
	"fmt"

	"github.com/layernet-ml/layernet/internal/serialization"
	"github.com/layernet-ml/layernet/internal/tensor"
)

// StateDict collects parameters by name for checkpointing.
func StateDict[B tensor.Backend](params []*Parameter[B]) map[string]*tensor.RawTensor {
	dict := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		dict[p.Name()] = p.Tensor().Raw()
	}
	return dict
}

// LoadStateDict replaces each parameter's tensor with the entry of the
// same name. Every parameter must be present with a matching shape and
// a float32 dtype.
func LoadStateDict[B tensor.Backend](params []*Parameter[B], dict map[string]*tensor.RawTensor, backend B) error {
	for _, p := range params {
		raw, ok := dict[p.Name()]
		if !ok {
			return fmt.Errorf("nn: state dict has no tensor %q", p.Name())
		}
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("nn: tensor %q has dtype %v, want float32", p.Name(), raw.DType())
		}
		if !raw.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("nn: tensor %q has shape %v, want %v",
				p.Name(), raw.Shape(), p.Tensor().Shape())
		}
		p.SetTensor(tensor.New[float32](raw.Clone(), backend))
	}
	return nil
}

// AllParams returns every distinct parameter of the network: the
// shared layer parameters plus the autoencoders' own biases. Shared
// parameters appear once.
func (n *SSDEVNet[B]) AllParams() []*Parameter[B] {
	seen := make(map[*Parameter[B]]bool)
	var params []*Parameter[B]
	add := func(p *Parameter[B]) {
		if p != nil && !seen[p] {
			seen[p] = true
			params = append(params, p)
		}
	}
	for _, p := range n.mlpParams {
		add(p)
	}
	for _, group := range n.daeParams {
		for _, p := range group {
			add(p)
		}
	}
	return params
}

// SaveCheckpoint writes every network parameter to a checkpoint file.
func (n *SSDEVNet[B]) SaveCheckpoint(path string) error {
	return serialization.Save(path, StateDict(n.AllParams()), map[string]string{
		"model_type": "ssdevnet",
	})
}

// LoadCheckpoint restores every network parameter from a checkpoint
// file written by SaveCheckpoint.
func (n *SSDEVNet[B]) LoadCheckpoint(path string) error {
	dict, _, err := serialization.Load(path)
	if err != nil {
		return err
	}
	return LoadStateDict(n.AllParams(), dict, n.backend)
}
