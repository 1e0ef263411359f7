package gru

import (
	"encoding/gob"
	"fmt"
	"os"

	"gorgonia.org/tensor"
)

type savedNetwork struct {
	InputSize  int
	HiddenSize int
	Steps      int
	Shapes     map[string][]int
	Weights    map[string][]float32
}

// Save writes the trained weights to path (gob).
func (n *Network) Save(path string) error {
	if len(n.weights) == 0 {
		return ErrNotTrained
	}

	saved := savedNetwork{
		InputSize:  n.cfg.InputSize,
		HiddenSize: n.cfg.HiddenSize,
		Steps:      n.cfg.Steps,
		Shapes:     make(map[string][]int, len(n.weights)),
		Weights:    make(map[string][]float32, len(n.weights)),
	}
	for name, w := range n.weights {
		saved.Shapes[name] = []int(w.Shape())
		data := w.Data().([]float32)
		saved.Weights[name] = append([]float32(nil), data...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(saved); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load restores weights saved by Save. The network's input, hidden and
// step sizes are taken from the model file.
func (n *Network) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	var saved savedNetwork
	if err := gob.NewDecoder(f).Decode(&saved); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}

	weights := make(map[string]*tensor.Dense, len(saved.Weights))
	for name, data := range saved.Weights {
		shape, ok := saved.Shapes[name]
		if !ok {
			return fmt.Errorf("model file missing shape for %s", name)
		}
		weights[name] = tensor.New(tensor.WithShape(shape...), tensor.WithBacking(data))
	}

	n.cfg.InputSize = saved.InputSize
	n.cfg.HiddenSize = saved.HiddenSize
	n.cfg.Steps = saved.Steps
	n.weights = weights
	return nil
}
