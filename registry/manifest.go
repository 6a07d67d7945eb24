package registry

import (
	"fmt"

	"github.com/liamcoop/salarypredict/features"
	"github.com/liamcoop/salarypredict/predictors"
)

// LoadManifest builds a registry from a YAML artifact manifest. The vocabulary
// is validated first, then every model is bound and registered in manifest order.
func LoadManifest(path string) (*Registry, error) {
	m, err := predictors.LoadManifest(path)
	if err != nil {
		return nil, err
	}

	vocab, err := m.LoadVocabulary()
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	if err := features.ValidateVocabulary(vocab); err != nil {
		return nil, fmt.Errorf("invalid vocabulary: %w", err)
	}

	r := New(vocab)
	for _, spec := range m.Models {
		p, err := m.Build(spec, vocab)
		if err != nil {
			return nil, fmt.Errorf("failed to load model %q: %w", spec.Name, err)
		}

		if err := r.Register(spec.Name, p); err != nil {
			return nil, err
		}
	}

	return r, nil
}
