package features

import (
	"fmt"
	"unicode"
)

// Limits for vocabulary artifacts.
const (
	MaxVocabularyColumns = 10000
	MaxColumnNameLength  = 200
)

// ValidateVocabulary checks a loaded vocabulary before it is used for serving.
// Returns an error if validation fails, nil if the vocabulary is usable.
func ValidateVocabulary(vocab *Vocabulary) error {
	if vocab == nil || vocab.Len() == 0 {
		return fmt.Errorf("vocabulary cannot be empty, must contain at least one column")
	}

	if vocab.Len() > MaxVocabularyColumns {
		return fmt.Errorf("vocabulary contains %d columns, maximum allowed is %d", vocab.Len(), MaxVocabularyColumns)
	}

	for i, col := range vocab.columns {
		if err := validateColumnName(col); err != nil {
			return fmt.Errorf("invalid column %d %q: %w", i, col, err)
		}
	}

	// Experience is the only numeric input; a vocabulary without it cannot serve predictions
	if !vocab.Contains(ExperienceColumn) {
		return fmt.Errorf("vocabulary must contain the %s column", ExperienceColumn)
	}

	return nil
}

// validateColumnName checks a single column name
// Column names come from training-time data frames, so spaces and apostrophes are allowed
func validateColumnName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("column name cannot be empty")
	}
	if len(name) > MaxColumnNameLength {
		return fmt.Errorf("column name length %d exceeds maximum of %d characters", len(name), MaxColumnNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("column name contains control character %U", r)
		}
	}

	return nil
}
