package gru

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/SanjeevDurge/Deepfake-Detection/internal/domain/entity"
	"github.com/SanjeevDurge/Deepfake-Detection/internal/infra/metrics"
	"go.uber.org/zap"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

var ErrNotTrained = errors.New("network has no trained weights")

type Config struct {
	InputSize  int
	HiddenSize int
	Steps      int
	BatchSize  int
	Epochs     int
	LearnRate  float64
	Seed       int64
}

// Network is a single-layer GRU over per-frame face embeddings with a
// dense sigmoid head. Training and inference both run on Gorgonia
// expression graphs; the graph is rebuilt per batch size, with weights
// carried between builds as tensors.
type Network struct {
	cfg     Config
	weights map[string]*tensor.Dense
	logger  *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Network {
	return &Network{cfg: cfg, weights: make(map[string]*tensor.Dense), logger: logger}
}

// model is one built expression graph for a fixed batch size.
type model struct {
	g          *G.ExprGraph
	xs         []*G.Node
	y          *G.Node
	prob       *G.Node
	cost       *G.Node
	weights    map[string]*G.Node
	learnables G.Nodes
}

func (n *Network) build(batch int, withLoss bool) *model {
	g := G.NewGraph()
	in, hid := n.cfg.InputSize, n.cfg.HiddenSize
	m := &model{g: g, weights: make(map[string]*G.Node)}

	newWeight := func(name string, rows, cols int) *G.Node {
		var node *G.Node
		if stored, ok := n.weights[name]; ok {
			node = G.NewMatrix(g, tensor.Float32,
				G.WithShape(rows, cols), G.WithName(name),
				G.WithValue(stored.Clone().(*tensor.Dense)),
			)
		} else {
			init := G.GlorotU(1.0)
			if strings.HasPrefix(name, "b") {
				init = G.Zeroes()
			}
			node = G.NewMatrix(g, tensor.Float32,
				G.WithShape(rows, cols), G.WithName(name), G.WithInit(init),
			)
		}
		m.weights[name] = node
		m.learnables = append(m.learnables, node)
		return node
	}

	wz, uz, bz := newWeight("wz", in, hid), newWeight("uz", hid, hid), newWeight("bz", 1, hid)
	wr, ur, br := newWeight("wr", in, hid), newWeight("ur", hid, hid), newWeight("br", 1, hid)
	wh, uh, bh := newWeight("wh", in, hid), newWeight("uh", hid, hid), newWeight("bh", 1, hid)
	wo, bo := newWeight("wo", hid, 1), newWeight("bo", 1, 1)

	one := G.NewConstant(float32(1.0))
	h := G.NewMatrix(g, tensor.Float32, G.WithShape(batch, hid), G.WithName("h0"), G.WithInit(G.Zeroes()))

	for t := 0; t < n.cfg.Steps; t++ {
		x := G.NewMatrix(g, tensor.Float32, G.WithShape(batch, in), G.WithName(fmt.Sprintf("x_%d", t)))
		m.xs = append(m.xs, x)

		zGate := G.Must(G.Sigmoid(gate(x, h, wz, uz, bz)))
		rGate := G.Must(G.Sigmoid(gate(x, h, wr, ur, br)))
		reset := G.Must(G.HadamardProd(rGate, h))
		cand := G.Must(G.Tanh(gate(x, reset, wh, uh, bh)))

		keep := G.Must(G.HadamardProd(G.Must(G.Sub(one, zGate)), h))
		h = G.Must(G.Add(keep, G.Must(G.HadamardProd(zGate, cand))))
	}

	logits := G.Must(G.BroadcastAdd(G.Must(G.Mul(h, wo)), bo, nil, []byte{0}))
	m.prob = G.Must(G.Sigmoid(logits))

	if withLoss {
		m.y = G.NewMatrix(g, tensor.Float32, G.WithShape(batch, 1), G.WithName("y"))
		eps := G.NewConstant(float32(1e-7))
		posTerm := G.Must(G.HadamardProd(m.y,
			G.Must(G.Log(G.Must(G.Add(m.prob, eps))))))
		negTerm := G.Must(G.HadamardProd(G.Must(G.Sub(one, m.y)),
			G.Must(G.Log(G.Must(G.Add(G.Must(G.Sub(one, m.prob)), eps))))))
		m.cost = G.Must(G.Neg(G.Must(G.Mean(G.Must(G.Add(posTerm, negTerm))))))
	}

	return m
}

// gate computes x*w + h*u + b with the bias broadcast over the batch.
func gate(x, h, w, u, b *G.Node) *G.Node {
	sum := G.Must(G.Add(G.Must(G.Mul(x, w)), G.Must(G.Mul(h, u))))
	return G.Must(G.BroadcastAdd(sum, b, nil, []byte{0}))
}

// Fit trains on the labeled sequences and returns the mean binary
// cross-entropy per epoch. The last partial minibatch of each epoch is
// dropped.
func (n *Network) Fit(ctx context.Context, seqs []*entity.EmbeddingSequence) ([]float64, error) {
	if len(seqs) == 0 {
		return nil, errors.New("no training sequences")
	}
	if err := n.checkSequences(seqs); err != nil {
		return nil, err
	}

	batch := n.cfg.BatchSize
	if batch > len(seqs) {
		batch = len(seqs)
	}

	m := n.build(batch, true)
	if _, err := G.Grad(m.cost, m.learnables...); err != nil {
		return nil, fmt.Errorf("build gradient: %w", err)
	}

	vm := G.NewTapeMachine(m.g, G.BindDualValues(m.learnables...))
	defer vm.Close()

	solver := G.NewAdamSolver(
		G.WithLearnRate(n.cfg.LearnRate),
		G.WithBatchSize(float64(batch)),
	)

	rng := rand.New(rand.NewSource(n.cfg.Seed))
	indices := make([]int, len(seqs))
	for i := range indices {
		indices[i] = i
	}

	losses := make([]float64, 0, n.cfg.Epochs)
	for epoch := 1; epoch <= n.cfg.Epochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var epochLoss float64
		batches := 0
		for start := 0; start+batch <= len(seqs); start += batch {
			n.letBatch(m, seqs, indices[start:start+batch])
			if err := vm.RunAll(); err != nil {
				return nil, fmt.Errorf("training step: %w", err)
			}
			if err := solver.Step(G.NodesToValueGrads(m.learnables)); err != nil {
				return nil, fmt.Errorf("solver step: %w", err)
			}
			epochLoss += float64(m.cost.Value().Data().(float32))
			batches++
			vm.Reset()
		}

		meanLoss := epochLoss / float64(batches)
		losses = append(losses, meanLoss)

		n.logger.Info("epoch finished",
			zap.Int("epoch", epoch),
			zap.Int("batches", batches),
			zap.Float64("loss", meanLoss),
		)
		metrics.TrainingLoss.Set(meanLoss)
		metrics.TrainingEpochsTotal.Inc()
	}

	n.captureWeights(m)
	return losses, nil
}

// Scores returns the fake probability for each sequence.
func (n *Network) Scores(seqs []*entity.EmbeddingSequence) ([]float32, error) {
	if len(seqs) == 0 {
		return nil, nil
	}
	if len(n.weights) == 0 {
		return nil, ErrNotTrained
	}
	if err := n.checkSequences(seqs); err != nil {
		return nil, err
	}

	m := n.build(len(seqs), false)
	vm := G.NewTapeMachine(m.g)
	defer vm.Close()

	n.letBatch(m, seqs, nil)
	if err := vm.RunAll(); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	data := m.prob.Value().Data().([]float32)
	scores := make([]float32, len(data))
	copy(scores, data)
	return scores, nil
}

// letBatch binds input (and, when training, target) values. indices
// selects the batch rows; nil means all sequences in order.
func (n *Network) letBatch(m *model, seqs []*entity.EmbeddingSequence, indices []int) {
	if indices == nil {
		indices = make([]int, len(seqs))
		for i := range indices {
			indices[i] = i
		}
	}
	batch, in := len(indices), n.cfg.InputSize

	for t := 0; t < n.cfg.Steps; t++ {
		backing := make([]float32, batch*in)
		for bi, idx := range indices {
			copy(backing[bi*in:(bi+1)*in], seqs[idx].Step(t))
		}
		G.Let(m.xs[t], tensor.New(tensor.WithShape(batch, in), tensor.WithBacking(backing)))
	}

	if m.y != nil {
		targets := make([]float32, batch)
		for bi, idx := range indices {
			targets[bi] = seqs[idx].Label.Target()
		}
		G.Let(m.y, tensor.New(tensor.WithShape(batch, 1), tensor.WithBacking(targets)))
	}
}

func (n *Network) checkSequences(seqs []*entity.EmbeddingSequence) error {
	for _, s := range seqs {
		if s.Steps != n.cfg.Steps || s.Dim != n.cfg.InputSize {
			return fmt.Errorf("sequence for video %s is %dx%d, network expects %dx%d",
				s.VideoID, s.Steps, s.Dim, n.cfg.Steps, n.cfg.InputSize)
		}
	}
	return nil
}

func (n *Network) captureWeights(m *model) {
	for name, node := range m.weights {
		n.weights[name] = node.Value().(*tensor.Dense).Clone().(*tensor.Dense)
	}
}
