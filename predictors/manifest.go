package predictors

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/liamcoop/salarypredict/features"
)

// Manifest lists the persisted artifacts available at start-up.
//
//	vocabulary: features.json
//	models:
//	  - name: Random Forest
//	    kind: forest
//	    path: rf.json
type Manifest struct {
	Vocabulary string      `yaml:"vocabulary"`
	Models     []ModelSpec `yaml:"models"`

	dir string
}

// LoadManifest reads a YAML manifest. Relative artifact paths resolve against
// the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	m := &Manifest{}
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}

	if strings.TrimSpace(m.Vocabulary) == "" {
		return nil, fmt.Errorf("manifest %s does not name a vocabulary", path)
	}
	if len(m.Models) == 0 {
		return nil, fmt.Errorf("manifest %s lists no models", path)
	}

	m.dir = filepath.Dir(path)
	return m, nil
}

// Resolve turns an artifact path from the manifest into a usable file path.
func (m *Manifest) Resolve(p string) string {
	p = os.ExpandEnv(p)
	if filepath.IsAbs(p) || m.dir == "" {
		return p
	}
	return filepath.Join(m.dir, p)
}

// LoadVocabulary loads the vocabulary artifact the manifest names.
func (m *Manifest) LoadVocabulary() (*features.Vocabulary, error) {
	return features.LoadVocabulary(m.Resolve(m.Vocabulary))
}

// Build constructs the predictor described by spec, bound to vocab.
func (m *Manifest) Build(spec ModelSpec, vocab *features.Vocabulary) (Predictor, error) {
	switch spec.Kind {
	case KindLinear:
		if spec.Path == "" {
			return nil, fmt.Errorf("model %q: linear models need a path", spec.Name)
		}
		return LoadLinear(vocab, m.Resolve(spec.Path))
	case KindForest:
		if spec.Path == "" {
			return nil, fmt.Errorf("model %q: forest models need a path", spec.Name)
		}
		return LoadForest(vocab, m.Resolve(spec.Path))
	case KindExpression:
		if strings.TrimSpace(spec.Expression) == "" {
			return nil, fmt.Errorf("model %q: expression models need an expression", spec.Name)
		}
		return NewExpression(vocab, spec.Expression)
	default:
		return nil, fmt.Errorf("model %q: unknown kind %q (must be one of: linear, forest, expression)", spec.Name, spec.Kind)
	}
}
