package predictors

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/liamcoop/salarypredict/features"
)

// LinearArtifact is the persisted form of a fitted linear regression.
type LinearArtifact struct {
	Intercept    float64            `json:"intercept"`
	Coefficients map[string]float64 `json:"coefficients"`
}

// Linear predicts intercept + Σ w·x with weights laid out in vocabulary order.
type Linear struct {
	vocab     *features.Vocabulary
	weights   []float64
	intercept float64
}

// NewLinear binds an artifact to a vocabulary. Every coefficient must name a
// vocabulary column; columns without a coefficient weigh 0.
func NewLinear(vocab *features.Vocabulary, a LinearArtifact) (*Linear, error) {
	weights := make([]float64, vocab.Len())
	for col, w := range a.Coefficients {
		i, ok := vocab.Index(col)
		if !ok {
			return nil, fmt.Errorf("coefficient column %q is not in the vocabulary", col)
		}
		weights[i] = w
	}

	return &Linear{vocab: vocab, weights: weights, intercept: a.Intercept}, nil
}

// LoadLinear reads a JSON linear artifact and binds it.
func LoadLinear(vocab *features.Vocabulary, path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read linear artifact: %w", err)
	}

	var a LinearArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to parse linear artifact %s: %w", path, err)
	}

	return NewLinear(vocab, a)
}

// Predict evaluates the linear model.
func (m *Linear) Predict(v features.Vector) (float64, error) {
	if err := checkVocabulary(m.vocab, v); err != nil {
		return 0, err
	}

	sum := m.intercept
	for j, w := range m.weights {
		sum += w * v.At(j)
	}
	return sum, nil
}
