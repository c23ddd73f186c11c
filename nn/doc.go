// Copyright 2025 LayerNet Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the building blocks for semi-supervised,
// DEV-regularized feedforward networks.
//
// # Overview
//
// The central type is SSDEVNet, a multilayer perceptron built three
// ways over a single parameter set:
//   - a raw, dropless network used for classification and evaluation
//   - one or more dropout clones whose layers share the raw weights
//   - a denoising autoencoder per hidden layer with tied decoder
//     weights
//
// Dropout Ensemble Variance (DEV) regularization penalizes, layer by
// layer, the variance between the raw network's representations and a
// dropout clone's representations on unlabeled rows. Labels follow the
// semi-supervised convention: 0 marks an unlabeled row and classes
// count from 1.
//
// # Basic Usage
//
//	backend := cpu.New()
//	rng := rand.New(rand.NewSource(1234))
//
//	x := graph.NewPlaceholder[*cpu.Backend]("x")
//	y := graph.NewPlaceholder[*cpu.Backend]("y")
//
//	net, err := nn.NewSSDEVNet(rng, x, nn.Config{
//	    LayerSizes: []int{784, 500, 500, 11},
//	    UseBias:    true,
//	    LamL2a:     1e-2,
//	    DevClones:  1,
//	    DevTypes:   []nn.DevType{nn.DevNormVariance, nn.DevNormVariance, nn.DevVariance},
//	    DevLams:    []float32{0.1, 0.1, 2.0},
//	}, nil, backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cost := net.DevCost(y, true)
//	run := graph.NewRun[*cpu.Backend]().Feed(x, batchX).Feed(y, batchY)
//	loss := run.Eval(cost)
//
// Training is external: the package exposes parameters, clipping
// flags, and loss expressions, and an optimizer of the caller's choice
// updates the parameter tensors between evaluations.
package nn
