package predictors

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/salarypredict/features"
)

// FeaturesVariable is the CEL variable holding the feature vector as map(string, double).
const FeaturesVariable = "features"

// expressionCostLimit keeps a hostile or runaway expression from pinning a request.
const expressionCostLimit = 1000000

// Expression is a predictor defined by a CEL formula, e.g.
//
//	42000.0 + 2800.0 * features["YearsCodePro"] + 15000.0 * features["Country_Germany"]
type Expression struct {
	vocab  *features.Vocabulary
	source string
	prog   cel.Program
}

// NewExpressionEnv creates the CEL environment shared by expression predictors.
func NewExpressionEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable(FeaturesVariable, cel.MapType(cel.StringType, cel.DoubleType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// NewExpression compiles a CEL expression. The expression must evaluate to a
// number; int results are widened to double.
func NewExpression(vocab *features.Vocabulary, source string) (*Expression, error) {
	env, err := NewExpressionEnv()
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.DoubleType) && !out.IsExactType(cel.IntType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return a number, got %s", out)
	}

	prog, err := env.Program(ast, cel.CostLimit(expressionCostLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	return &Expression{vocab: vocab, source: source, prog: prog}, nil
}

// Source returns the CEL source the predictor was compiled from.
func (e *Expression) Source() string {
	return e.source
}

// Predict evaluates the expression against the vector.
func (e *Expression) Predict(v features.Vector) (float64, error) {
	if err := checkVocabulary(e.vocab, v); err != nil {
		return 0, err
	}

	out, _, err := e.prog.Eval(map[string]any{
		FeaturesVariable: v.Map(),
	})
	if err != nil {
		return 0, fmt.Errorf("evaluation error: %w", err)
	}

	switch val := out.Value().(type) {
	case float64:
		return val, nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	default:
		return 0, fmt.Errorf("expression returned %T, want a number", val)
	}
}
