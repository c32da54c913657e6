package model

import (
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/PeetV/csml-sub000/pkg/core"
)

// Forest is an ensemble of bootstrap-trained decision trees sharing the
// same hyperparameters. Trees train independently and in parallel;
// predictions aggregate by majority vote (classification) or averaging
// (regression).
type Forest struct {
	// Hyperparameters / options
	TreeCount      int
	MaxDepth       int
	MinRowsPerNode int
	RandomFeatures int // <0 auto-selects round(sqrt(columns)); 0 scans all
	BootstrapData  bool
	RandomState    int64

	mode   Mode
	purity PurityFunc

	// internals, written only by Train
	trees        []*Tree
	minColumns   int
	inputRecords int
}

// ForestOption is a functional configuration option for Forest.
type ForestOption func(*Forest)

func WithTreeCount(n int) ForestOption { return func(f *Forest) { f.TreeCount = n } }
func WithForestMaxDepth(d int) ForestOption {
	return func(f *Forest) { f.MaxDepth = d }
}
func WithForestMinRowsPerNode(n int) ForestOption {
	return func(f *Forest) { f.MinRowsPerNode = n }
}
func WithForestRandomFeatures(k int) ForestOption {
	return func(f *Forest) { f.RandomFeatures = k }
}
func WithForestBootstrap(b bool) ForestOption {
	return func(f *Forest) { f.BootstrapData = b }
}
func WithForestRandomState(seed int64) ForestOption {
	return func(f *Forest) { f.RandomState = seed }
}

// NewForest returns an untrained forest with sensible defaults: 100 trees,
// bootstrap on, and column subsampling auto-sized at training time.
func NewForest(mode Mode, purity PurityFunc, opts ...ForestOption) (*Forest, error) {
	f := &Forest{
		TreeCount:      100,
		MaxDepth:       100,
		MinRowsPerNode: 3,
		RandomFeatures: -1,
		BootstrapData:  true,
		RandomState:    time.Now().UnixNano(),
		mode:           mode,
		purity:         purity,
	}
	for _, o := range opts {
		o(f)
	}
	if !mode.valid() {
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown mode %d", mode)
	}
	if purity == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil purity function")
	}
	if f.TreeCount < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "tree count %d", f.TreeCount)
	}
	if f.MaxDepth < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "max depth %d", f.MaxDepth)
	}
	if f.MinRowsPerNode < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "min rows per node %d", f.MinRowsPerNode)
	}
	return f, nil
}

// Mode reports whether the forest classifies or regresses.
func (f *Forest) Mode() Mode { return f.mode }

// Trees returns the trained trees. Empty means untrained.
func (f *Forest) Trees() []*Tree {
	return append([]*Tree(nil), f.trees...)
}

// Train discards any previous ensemble and trains TreeCount fresh trees
// concurrently, each on its own bootstrap resample. Per-tree seeds derive
// from RandomState, so a fixed seed gives a reproducible forest.
func (f *Forest) Train(m *core.Matrix, target []float64) error {
	if err := checkTrainInput(m, target); err != nil {
		return err
	}

	randomFeatures := f.RandomFeatures
	if randomFeatures < 0 {
		randomFeatures = int(math.Round(math.Sqrt(float64(m.C))))
	}
	f.minColumns = m.C
	f.inputRecords = m.R
	f.trees = nil

	start := time.Now()
	trees := make([]*Tree, f.TreeCount)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			tr, err := NewTree(f.mode, f.purity,
				WithMaxDepth(f.MaxDepth),
				WithMinRowsPerNode(f.MinRowsPerNode),
				WithRandomFeatures(randomFeatures),
				WithBootstrap(f.BootstrapData),
				WithRandomState(f.RandomState+int64(i)),
			)
			if err != nil {
				return err
			}
			// The forest already validated the shared input.
			if err := tr.train(m, target, true); err != nil {
				return errors.Wrapf(err, "tree %d", i)
			}
			trees[i] = tr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	f.trees = trees

	log.WithFields(map[string]interface{}{
		"trees":   f.TreeCount,
		"rows":    m.R,
		"columns": m.C,
		"elapsed": time.Since(start),
	}).Debug("forest trained")
	return nil
}

// Predict queries every tree for each input row, concurrently across
// rows. Regression averages the per-tree predictions; classification
// takes a majority vote with ties going to the lowest label.
func (f *Forest) Predict(m *core.Matrix) ([]float64, error) {
	if err := f.checkPredictInput(m); err != nil {
		return nil, err
	}
	out := make([]float64, m.R)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < m.R; i++ {
		i := i
		g.Go(func() error {
			row := m.Row(i)
			if f.mode == Regression {
				sum := 0.0
				for _, tr := range f.trees {
					leaf, err := tr.route(row)
					if err != nil {
						return err
					}
					sum += leaf.predicted
				}
				out[i] = sum / float64(len(f.trees))
				return nil
			}
			votes := make(map[float64]int, len(f.trees))
			for _, tr := range f.trees {
				leaf, err := tr.route(row)
				if err != nil {
					return err
				}
				votes[leaf.predicted]++
			}
			out[i] = majorityLabel(votes)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PredictProba sums each tree's leaf-level class probabilities per label,
// renormalizes by the total mass, and pairs the result with the majority
// vote. Only valid for classification forests.
func (f *Forest) PredictProba(m *core.Matrix) ([]ClassPrediction, error) {
	if f.mode != Classification {
		return nil, errors.Wrap(ErrModeMismatch, "class probabilities require classification mode")
	}
	if err := f.checkPredictInput(m); err != nil {
		return nil, err
	}
	out := make([]ClassPrediction, m.R)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < m.R; i++ {
		i := i
		g.Go(func() error {
			row := m.Row(i)
			votes := make(map[float64]int, len(f.trees))
			probs := make(map[float64]float64)
			for _, tr := range f.trees {
				leaf, err := tr.route(row)
				if err != nil {
					return err
				}
				votes[leaf.predicted]++
				for label, c := range leaf.classCounts {
					probs[label] += float64(c) / float64(leaf.records)
				}
			}
			total := 0.0
			for _, p := range probs {
				total += p
			}
			if total > 0 {
				for label := range probs {
					probs[label] /= total
				}
			}
			out[i] = ClassPrediction{Label: majorityLabel(votes), Probabilities: probs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// PurityGains averages the per-tree purity gain vectors element-wise.
func (f *Forest) PurityGains() ([]float64, error) {
	if len(f.trees) == 0 {
		return nil, errors.Wrap(ErrNotTrained, "purity gains")
	}
	sum := make([]float64, f.minColumns)
	for _, tr := range f.trees {
		gains, err := tr.PurityGains()
		if err != nil {
			return nil, err
		}
		floats.Add(sum, gains)
	}
	floats.Scale(1/float64(len(f.trees)), sum)
	return sum, nil
}

func (f *Forest) checkPredictInput(m *core.Matrix) error {
	if len(f.trees) == 0 {
		return errors.Wrap(ErrNotTrained, "predict")
	}
	if m == nil || m.R == 0 {
		return errors.Wrap(ErrEmptyInput, "predict")
	}
	if m.C != f.minColumns {
		return errors.Wrapf(ErrShapeMismatch, "input has %d columns, trained on %d", m.C, f.minColumns)
	}
	return nil
}
