package registry

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/liamcoop/salarypredict/features"
	"github.com/liamcoop/salarypredict/predictors"
)

// ErrVocabularyMismatch is returned when a vector was not built on the
// registry's vocabulary.
var ErrVocabularyMismatch = errors.New("feature vector does not match the registry vocabulary")

// UnknownPredictorError is returned when no predictor is registered under Name.
type UnknownPredictorError struct {
	Name string
}

func (e *UnknownPredictorError) Error() string {
	return fmt.Sprintf("predictor %q not found", e.Name)
}

// entry wraps a predictor with its registration metadata
type entry struct {
	name      string
	predictor predictors.Predictor
}

// Registry maps display names to predictors sharing one vocabulary.
type Registry struct {
	vocab   *features.Vocabulary
	entries map[string]*entry
	order   []string
	mu      sync.RWMutex
}

// New creates an empty registry bound to vocab.
func New(vocab *features.Vocabulary) *Registry {
	return &Registry{
		vocab:   vocab,
		entries: make(map[string]*entry),
	}
}

// Register adds a predictor under name. Names are matched exactly.
func (r *Registry) Register(name string, p predictors.Predictor) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("predictor name cannot be empty")
	}
	if p == nil {
		return fmt.Errorf("predictor %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("predictor %q already registered", name)
	}

	r.entries[name] = &entry{name: name, predictor: p}
	r.order = append(r.order, name)
	return nil
}

// Get retrieves the predictor registered under name
func (r *Registry) Get(name string) (predictors.Predictor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.entries[name]
	if !exists {
		return nil, &UnknownPredictorError{Name: name}
	}

	return e.predictor, nil
}

// Predict runs the named predictor on v.
func (r *Registry) Predict(name string, v features.Vector) (float64, error) {
	p, err := r.Get(name)
	if err != nil {
		return 0, err
	}

	if v.Vocabulary() != r.vocab && !r.vocab.Equal(v.Vocabulary()) {
		return 0, ErrVocabularyMismatch
	}

	pred, err := p.Predict(v)
	if err != nil {
		return 0, fmt.Errorf("predictor %q failed: %w", name, err)
	}
	return pred, nil
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Default returns the first registered name, or "" if the registry is empty.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// Len returns the number of registered predictors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Vocabulary returns the vocabulary every predictor is bound to.
func (r *Registry) Vocabulary() *features.Vocabulary {
	return r.vocab
}
