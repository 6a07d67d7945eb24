package predictors

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liamcoop/salarypredict/features"
)

// Tree ensemble aggregation modes.
const (
	AggregateMean = "mean" // random forest: average of tree outputs
	AggregateSum  = "sum"  // gradient boosting: base score plus tree outputs
)

// Split comparison modes.
const (
	SplitLessEqual = "le" // x <= threshold goes left
	SplitLess      = "lt" // x < threshold goes left
)

// NodeArtifact is one node of a persisted regression tree.
// Leaves carry Value; internal nodes carry Feature/Threshold and child indices.
type NodeArtifact struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
	Feature   string  `json:"feature,omitempty"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
}

// TreeArtifact is a regression tree rooted at node 0.
type TreeArtifact struct {
	Nodes []NodeArtifact `json:"nodes"`
}

// ForestArtifact is the persisted form of a tree ensemble.
type ForestArtifact struct {
	Aggregation string         `json:"aggregation"`
	BaseScore   float64        `json:"base_score"`
	Split       string         `json:"split,omitempty"`
	Trees       []TreeArtifact `json:"trees"`
}

type node struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      int
	right     int
}

// Forest evaluates an ensemble of regression trees.
type Forest struct {
	vocab       *features.Vocabulary
	trees       [][]node
	aggregation string
	baseScore   float64
	strict      bool
}

// NewForest validates an artifact and binds tree features to vocabulary positions.
func NewForest(vocab *features.Vocabulary, a ForestArtifact) (*Forest, error) {
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("forest has no trees")
	}

	f := &Forest{vocab: vocab, baseScore: a.BaseScore}

	switch a.Aggregation {
	case "", AggregateMean:
		f.aggregation = AggregateMean
	case AggregateSum:
		f.aggregation = AggregateSum
	default:
		return nil, fmt.Errorf("unknown aggregation %q (must be %s or %s)", a.Aggregation, AggregateMean, AggregateSum)
	}

	switch a.Split {
	case "", SplitLessEqual:
	case SplitLess:
		f.strict = true
	default:
		return nil, fmt.Errorf("unknown split comparison %q (must be %s or %s)", a.Split, SplitLessEqual, SplitLess)
	}

	f.trees = make([][]node, len(a.Trees))
	for t, tree := range a.Trees {
		nodes, err := bindTree(vocab, tree)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", t, err)
		}
		f.trees[t] = nodes
	}

	return f, nil
}

func bindTree(vocab *features.Vocabulary, tree TreeArtifact) ([]node, error) {
	if len(tree.Nodes) == 0 {
		return nil, fmt.Errorf("tree has no nodes")
	}

	nodes := make([]node, len(tree.Nodes))
	for i, n := range tree.Nodes {
		if n.Leaf {
			nodes[i] = node{leaf: true, value: n.Value}
			continue
		}

		idx, ok := vocab.Index(n.Feature)
		if !ok {
			return nil, fmt.Errorf("node %d splits on %q which is not in the vocabulary", i, n.Feature)
		}
		// Children must point forward so every path terminates
		if n.Left <= i || n.Left >= len(tree.Nodes) || n.Right <= i || n.Right >= len(tree.Nodes) {
			return nil, fmt.Errorf("node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
		nodes[i] = node{feature: idx, threshold: n.Threshold, left: n.Left, right: n.Right}
	}

	return nodes, nil
}

// LoadForest reads a JSON forest artifact and binds it.
func LoadForest(vocab *features.Vocabulary, path string) (*Forest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read forest artifact: %w", err)
	}

	var a ForestArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse forest artifact %s: %w", path, err)
	}

	return NewForest(vocab, a)
}

// Predict walks every tree and aggregates the leaf values.
func (f *Forest) Predict(v features.Vector) (float64, error) {
	if err := checkVocabulary(f.vocab, v); err != nil {
		return 0, err
	}

	total := 0.0
	for _, tree := range f.trees {
		total += f.walk(tree, v)
	}

	if f.aggregation == AggregateSum {
		return f.baseScore + total, nil
	}
	return total / float64(len(f.trees)), nil
}

func (f *Forest) walk(tree []node, v features.Vector) float64 {
	i := 0
	for !tree[i].leaf {
		n := tree[i]
		x := v.At(n.feature)
		goLeft := x <= n.threshold
		if f.strict {
			goLeft = x < n.threshold
		}
		if goLeft {
			i = n.left
		} else {
			i = n.right
		}
	}
	return tree[i].value
}
