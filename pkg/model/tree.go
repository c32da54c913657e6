package model

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/PeetV/csml-sub000/pkg/core"
	"github.com/PeetV/csml-sub000/pkg/dataprep"
	"github.com/PeetV/csml-sub000/pkg/stats"
)

// Hard caps on recursion, splits and traversal steps. These are a safety
// valve against pathological inputs, not tuning knobs: growth emits a
// leaf when it hits one, and a prediction walk that hits one fails with
// ErrLimitExceeded because it means the arena is corrupt.
const (
	maxRecursions    = 10000
	maxSplits        = 10000
	maxTraversalStep = 10000
)

// treeNode is an arena element: either a decision or a leaf. Children are
// referenced by index into the arena, never by pointer, so the structure
// has no cycles and node 0 is always the root.
type treeNode interface {
	recordCount() int
}

// decisionNode routes a row to yesChild iff row[column] > splitPoint.
type decisionNode struct {
	column     int
	splitPoint float64
	yesChild   int
	noChild    int
	purityGain float64
	records    int
}

// leafNode predicts the majority label (classification, with classCounts
// set) or the mean target (regression, classCounts nil).
type leafNode struct {
	records     int
	predicted   float64
	classCounts map[float64]int
}

func (d decisionNode) recordCount() int { return d.records }
func (l leafNode) recordCount() int     { return l.records }

// Tree is a binary decision tree grown by recursive induction over a
// feature matrix and a target vector.
type Tree struct {
	// Hyperparameters / options
	MaxDepth       int   // maximum depth, root is depth 1
	MinRowsPerNode int   // minimum rows required to keep splitting
	RandomFeatures int   // columns sampled per split; <=0 scans all columns
	BootstrapData  bool  // resample rows with replacement before growing
	TrackOutOfBag  bool  // record rows the bootstrap never picked
	RandomState    int64 // seed for subsampling and bootstrap

	mode   Mode
	purity PurityFunc

	// internals, written only by Train
	nodes        []treeNode
	minColumns   int
	inputRecords int
	classes      []float64
	oob          []int
	depth        int
}

// TreeOption is a functional configuration option for Tree.
type TreeOption func(*Tree)

func WithMaxDepth(d int) TreeOption       { return func(t *Tree) { t.MaxDepth = d } }
func WithMinRowsPerNode(n int) TreeOption { return func(t *Tree) { t.MinRowsPerNode = n } }
func WithRandomFeatures(k int) TreeOption { return func(t *Tree) { t.RandomFeatures = k } }
func WithBootstrap(b bool) TreeOption     { return func(t *Tree) { t.BootstrapData = b } }
func WithOutOfBag(b bool) TreeOption      { return func(t *Tree) { t.TrackOutOfBag = b } }
func WithRandomState(seed int64) TreeOption {
	return func(t *Tree) { t.RandomState = seed }
}

// NewTree returns an untrained tree with sensible defaults. Configuration
// problems are rejected here, not deferred to training.
func NewTree(mode Mode, purity PurityFunc, opts ...TreeOption) (*Tree, error) {
	t := &Tree{
		MaxDepth:       15,
		MinRowsPerNode: 3,
		RandomFeatures: 0,
		RandomState:    time.Now().UnixNano(),
		mode:           mode,
		purity:         purity,
	}
	for _, o := range opts {
		o(t)
	}
	if !mode.valid() {
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown mode %d", mode)
	}
	if purity == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "nil purity function")
	}
	if t.MaxDepth < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "max depth %d", t.MaxDepth)
	}
	if t.MinRowsPerNode < 1 {
		return nil, errors.Wrapf(ErrInvalidConfig, "min rows per node %d", t.MinRowsPerNode)
	}
	return t, nil
}

// Mode reports whether the tree classifies or regresses.
func (t *Tree) Mode() Mode { return t.mode }

// Classes returns the distinct target values seen during training, in
// first-seen order. Empty for regression trees.
func (t *Tree) Classes() []float64 {
	return append([]float64(nil), t.classes...)
}

// OutOfBagIndices returns the original row indices the bootstrap resample
// never picked. Populated only when bootstrap and out-of-bag tracking are
// both enabled.
func (t *Tree) OutOfBagIndices() []int {
	return append([]int(nil), t.oob...)
}

// NodeCount returns the arena size. Zero means untrained.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// Depth returns the maximum depth reached while growing.
func (t *Tree) Depth() int { return t.depth }

// growState threads the recursion bookkeeping through growth instead of
// holding it in mutable fields, keeping Train reentrant-safe.
type growState struct {
	rnd        *rand.Rand
	recursions int
	splits     int
	maxDepth   int
}

// Train grows the tree from scratch, discarding any previous arena.
func (t *Tree) Train(m *core.Matrix, target []float64) error {
	return t.train(m, target, false)
}

func (t *Tree) train(m *core.Matrix, target []float64, skipChecks bool) error {
	if !skipChecks {
		if err := checkTrainInput(m, target); err != nil {
			return err
		}
	}

	t.nodes = nil
	t.oob = nil
	t.classes = nil
	t.minColumns = m.C
	t.inputRecords = m.R
	if t.mode == Classification {
		seen := make(map[float64]bool, len(target))
		for _, v := range target {
			if !seen[v] {
				seen[v] = true
				t.classes = append(t.classes, v)
			}
		}
	}

	st := &growState{rnd: rand.New(rand.NewSource(t.RandomState))}

	X, y := m, target
	if t.BootstrapData {
		var oob []int
		X, y, oob = dataprep.Bootstrap(m, target, st.rnd)
		if t.TrackOutOfBag {
			t.oob = oob
		}
	} else {
		X = m.Clone()
		y = append([]float64(nil), target...)
	}

	t.grow(st, X, y, 0)
	t.depth = st.maxDepth
	return nil
}

// grow recursively partitions the data and appends nodes to the arena,
// returning the index of the subtree root it created. Children always get
// higher indices than their parent because they are appended afterwards.
func (t *Tree) grow(st *growState, X *core.Matrix, y []float64, parentDepth int) int {
	st.recursions++
	depth := parentDepth + 1
	if depth > st.maxDepth {
		st.maxDepth = depth
	}

	if st.recursions > maxRecursions ||
		st.splits > maxSplits ||
		depth > t.MaxDepth ||
		X.R < t.MinRowsPerNode ||
		allEqual(y) {
		return t.appendLeaf(y)
	}

	column, point, gain := bestColumnSplit(X, y, t.purity, t.RandomFeatures, st.rnd)
	if gain <= 0 {
		return t.appendLeaf(y)
	}

	keep := make([]bool, X.R)
	for i, v := range X.Col(column) {
		keep[i] = v > point
	}
	yesX, noX, yesY, noY := dataprep.SplitByFilter(X, y, keep)
	if yesX.R == 0 || noX.R == 0 || yesX.R < t.MinRowsPerNode || noX.R < t.MinRowsPerNode {
		return t.appendLeaf(y)
	}

	st.splits++
	idx := len(t.nodes)
	t.nodes = append(t.nodes, decisionNode{
		column:     column,
		splitPoint: point,
		purityGain: gain,
		records:    X.R,
	})

	// Drop the parent partition before recursing: peak memory then tracks
	// one root-to-leaf path, not the whole tree.
	X, y = nil, nil

	yes := t.grow(st, yesX, yesY, depth)
	no := t.grow(st, noX, noY, depth)
	d := t.nodes[idx].(decisionNode)
	d.yesChild, d.noChild = yes, no
	t.nodes[idx] = d
	return idx
}

func (t *Tree) appendLeaf(y []float64) int {
	leaf := leafNode{records: len(y)}
	if t.mode == Classification {
		counts := make(map[float64]int, len(y))
		for _, v := range y {
			counts[v]++
		}
		leaf.classCounts = counts
		leaf.predicted = majorityLabel(counts)
	} else {
		leaf.predicted = stats.Mean(y)
	}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, leaf)
	return idx
}

// majorityLabel picks the label with the highest count. Ties go to the
// lowest label so the result never depends on map iteration order.
func majorityLabel(counts map[float64]int) float64 {
	best, bestCount := 0.0, 0
	for label, c := range counts {
		if c > bestCount || (c == bestCount && label < best) {
			best, bestCount = label, c
		}
	}
	return best
}

func allEqual(y []float64) bool {
	for i := 1; i < len(y); i++ {
		if y[i] != y[0] {
			return false
		}
	}
	return true
}

// Predict routes every input row to a leaf and returns its prediction.
func (t *Tree) Predict(m *core.Matrix) ([]float64, error) {
	if err := t.checkPredictInput(m); err != nil {
		return nil, err
	}
	out := make([]float64, m.R)
	for i := 0; i < m.R; i++ {
		leaf, err := t.route(m.Row(i))
		if err != nil {
			return nil, err
		}
		out[i] = leaf.predicted
	}
	return out, nil
}

// PredictProba routes every row to a leaf and returns its predicted label
// together with per-label probabilities (leaf counts over leaf records).
// Only valid for classification trees.
func (t *Tree) PredictProba(m *core.Matrix) ([]ClassPrediction, error) {
	if t.mode != Classification {
		return nil, errors.Wrap(ErrModeMismatch, "class probabilities require classification mode")
	}
	if err := t.checkPredictInput(m); err != nil {
		return nil, err
	}
	out := make([]ClassPrediction, m.R)
	for i := 0; i < m.R; i++ {
		leaf, err := t.route(m.Row(i))
		if err != nil {
			return nil, err
		}
		probs := make(map[float64]float64, len(leaf.classCounts))
		for label, c := range leaf.classCounts {
			probs[label] = float64(c) / float64(leaf.records)
		}
		out[i] = ClassPrediction{Label: leaf.predicted, Probabilities: probs}
	}
	return out, nil
}

// route walks a single row from the root to a leaf. The walk is bounded
// by the same hard cap used during training so it terminates even if the
// arena were corrupted; hitting the cap is a fatal consistency failure.
func (t *Tree) route(row []float64) (leafNode, error) {
	idx := 0
	for step := 0; step < maxTraversalStep; step++ {
		switch n := t.nodes[idx].(type) {
		case leafNode:
			return n, nil
		case decisionNode:
			if row[n.column] > n.splitPoint {
				idx = n.yesChild
			} else {
				idx = n.noChild
			}
		}
	}
	return leafNode{}, errors.Wrap(ErrLimitExceeded, "prediction walk did not reach a leaf")
}

// PurityGains aggregates, per input column, every decision node's purity
// gain weighted by the share of training records that passed through it.
// The result is one importance score per column trained on.
func (t *Tree) PurityGains() ([]float64, error) {
	if len(t.nodes) == 0 {
		return nil, errors.Wrap(ErrNotTrained, "purity gains")
	}
	gains := make([]float64, t.minColumns)
	for _, n := range t.nodes {
		if d, ok := n.(decisionNode); ok {
			gains[d.column] += d.purityGain * float64(d.records) / float64(t.inputRecords)
		}
	}
	return gains, nil
}

func (t *Tree) checkPredictInput(m *core.Matrix) error {
	if len(t.nodes) == 0 {
		return errors.Wrap(ErrNotTrained, "predict")
	}
	if m == nil || m.R == 0 {
		return errors.Wrap(ErrEmptyInput, "predict")
	}
	if m.C != t.minColumns {
		return errors.Wrapf(ErrShapeMismatch, "input has %d columns, trained on %d", m.C, t.minColumns)
	}
	return nil
}

func checkTrainInput(m *core.Matrix, target []float64) error {
	if m == nil || m.R == 0 {
		return errors.Wrap(ErrEmptyInput, "train")
	}
	if len(target) != m.R {
		return errors.Wrapf(ErrShapeMismatch, "target length %d, matrix rows %d", len(target), m.R)
	}
	return nil
}
