// Package main provides the LayerNet CLI.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"

	"github.com/layernet-ml/layernet/backend/cpu"
	"github.com/layernet-ml/layernet/graph"
	"github.com/layernet-ml/layernet/nn"
	"github.com/layernet-ml/layernet/tensor"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("LayerNet %s\n", version)
			return
		case "inspect":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: layernet inspect <checkpoint>")
				os.Exit(1)
			}
			if err := inspect(os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "inspect: %v\n", err)
				os.Exit(1)
			}
			return
		case "demo":
			seed := int64(1234)
			if len(os.Args) > 2 {
				s, err := strconv.ParseInt(os.Args[2], 10, 64)
				if err != nil {
					fmt.Fprintf(os.Stderr, "demo: bad seed %q\n", os.Args[2])
					os.Exit(1)
				}
				seed = s
			}
			demo(seed)
			return
		}
	}

	fmt.Println("LayerNet - Semi-Supervised Neural Networks for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version              Show version")
	fmt.Println("  demo [seed]          Build a small network and print its costs")
	fmt.Println("  inspect <checkpoint> List the tensors in a checkpoint file")
}

// demo builds a small network over random data and evaluates every
// cost the library exposes, as a smoke test of the graph machinery.
func demo(seed int64) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(seed))

	x := graph.NewPlaceholder[*cpu.Backend]("x")
	y := graph.NewPlaceholder[*cpu.Backend]("y")

	net, err := nn.NewSSDEVNet(rng, x, nn.Config{
		LayerSizes: []int{4, 6, 3},
		UseBias:    true,
		LamL2a:     1e-3,
		DevClones:  1,
		DevTypes:   []nn.DevType{nn.DevNormVariance, nn.DevVariance},
		DevLams:    []float32{0.1, 2.0},
		DevMixRate: 0.5,
	}, nil, backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}

	const batch = 8
	inputs := tensor.Randn[float32](rng, tensor.Shape{batch, 4}, backend)
	labels := make([]float32, batch)
	for i := range labels {
		if i%2 == 0 {
			labels[i] = float32(rng.Intn(3) + 1)
		}
	}
	lt, err := tensor.FromSlice(labels, tensor.Shape{batch}, backend)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}

	run := graph.NewRun[*cpu.Backend]().Feed(x, inputs).Feed(y, lt)
	fmt.Printf("Network 4-6-3, batch of %d (half labeled), seed %d\n\n", batch, seed)
	fmt.Printf("  raw class loss   %.6f\n", run.Eval(net.RawClassLoss(y)).Item())
	fmt.Printf("  sde class loss   %.6f\n", run.Eval(net.SdeClassLoss(y)).Item())
	fmt.Printf("  raw reg loss     %.6f\n", run.Eval(net.RawRegLoss()).Item())
	fmt.Printf("  dev reg loss     %.6f\n", run.Eval(net.DevRegLoss(y)).Item())
	fmt.Printf("  joint cost       %.6f\n", run.Eval(net.DevCost(y, true)).Item())
	fmt.Printf("  labeled errors   %.0f\n", run.Eval(net.ClassErrors(y)).Item())
}
