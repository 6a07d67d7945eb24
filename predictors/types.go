package predictors

import (
	"fmt"

	"github.com/liamcoop/salarypredict/features"
)

// Predictor is a pre-trained regression model consuming one feature vector.
// Implementations are immutable after construction and safe for concurrent use.
type Predictor interface {
	Predict(v features.Vector) (float64, error)
}

// Kind names a predictor family in the artifact manifest.
type Kind string

const (
	KindLinear     Kind = "linear"
	KindForest     Kind = "forest"
	KindExpression Kind = "expression"
)

// ModelSpec describes one persisted predictor in the manifest
type ModelSpec struct {
	Name       string `yaml:"name"`
	Kind       Kind   `yaml:"kind"`
	Path       string `yaml:"path,omitempty"`       // artifact file for linear/forest
	Expression string `yaml:"expression,omitempty"` // CEL source for expression
}

// checkVocabulary rejects vectors not aligned to the vocabulary a predictor was bound to.
func checkVocabulary(bound *features.Vocabulary, v features.Vector) error {
	if v.Vocabulary() == bound {
		return nil
	}
	if !bound.Equal(v.Vocabulary()) {
		return fmt.Errorf("feature vector has %d columns, predictor expects %d", v.Len(), bound.Len())
	}
	return nil
}
