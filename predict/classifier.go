package predict

import (
	"encoding/json"
	"fmt"

	"github.com/google/cel-go/cel"
)

// LogisticClassifier is a fitted linear model: class 1 when w·x + b > threshold
type LogisticClassifier struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold"`
}

func decodeLogisticClassifier(data []byte) (*LogisticClassifier, error) {
	var c LogisticClassifier
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("invalid logistic classifier: %w", err)
	}
	if len(c.Coef) == 0 {
		return nil, fmt.Errorf("logistic classifier has no coefficients")
	}
	return &c, nil
}

// DecisionFunction returns the signed distance of x from the decision boundary
func (c *LogisticClassifier) DecisionFunction(x ScaledVector) (float64, error) {
	if len(x) != len(c.Coef) {
		return 0, &PredictionError{Reason: fmt.Sprintf("classifier expects %d features, got %d", len(c.Coef), len(x))}
	}

	score := c.Intercept
	for i, w := range c.Coef {
		score += w * x[i]
	}
	return score, nil
}

// Predict returns ClassAtRisk when the decision function exceeds the threshold
func (c *LogisticClassifier) Predict(x ScaledVector) (int, error) {
	score, err := c.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if score > c.Threshold {
		return ClassAtRisk, nil
	}
	return ClassHealthy, nil
}

func (c *LogisticClassifier) Features() int {
	return len(c.Coef)
}

func (c *LogisticClassifier) Kind() string {
	return "logistic"
}

// CELClassifier evaluates a CEL decision expression over the scaled row.
// The expression sees the row as `x` (list of doubles) and, for the standard
// eight-feature layout, each feature by name. It must produce a bool (true is
// class 1) or an int class index.
type CELClassifier struct {
	expression string
	features   int
	program    cel.Program
}

type celArtifact struct {
	Features   int    `json:"features"`
	Expression string `json:"expression"`
}

func decodeCELClassifier(data []byte) (*CELClassifier, error) {
	var a celArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("invalid cel classifier: %w", err)
	}
	if a.Features <= 0 {
		return nil, fmt.Errorf("cel classifier must declare a positive feature count")
	}
	if a.Expression == "" {
		return nil, fmt.Errorf("cel classifier has no expression")
	}
	return NewCELClassifier(a.Expression, a.Features)
}

// NewCELClassifier compiles expression into a classifier over rows of the given width
func NewCELClassifier(expression string, features int) (*CELClassifier, error) {
	env, err := newClassifierEnv(features)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.IntType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must produce bool or int, got %s", out)
	}

	// Bound evaluation cost per row
	prog, err := env.Program(ast, cel.CostLimit(1000000))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}

	return &CELClassifier{
		expression: expression,
		features:   features,
		program:    prog,
	}, nil
}

func newClassifierEnv(features int) (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable("x", cel.ListType(cel.DoubleType)),
	}
	if features == FeatureCount {
		for _, name := range FeatureNames {
			opts = append(opts, cel.Variable(name, cel.DoubleType))
		}
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

// Predict evaluates the expression against x
func (c *CELClassifier) Predict(x ScaledVector) (int, error) {
	if len(x) != c.features {
		return 0, &PredictionError{Reason: fmt.Sprintf("classifier expects %d features, got %d", c.features, len(x))}
	}

	vars := map[string]any{"x": []float64(x)}
	if c.features == FeatureCount {
		for i, name := range FeatureNames {
			vars[name] = x[i]
		}
	}

	out, _, err := c.program.Eval(vars)
	if err != nil {
		return 0, &PredictionError{Reason: "expression evaluation failed", Err: err}
	}

	switch v := out.Value().(type) {
	case bool:
		if v {
			return ClassAtRisk, nil
		}
		return ClassHealthy, nil
	case int64:
		return int(v), nil
	default:
		return 0, &PredictionError{Reason: fmt.Sprintf("expression produced %T, want bool or int", v)}
	}
}

func (c *CELClassifier) Features() int {
	return c.features
}

func (c *CELClassifier) Kind() string {
	return "cel"
}

// Expression returns the CEL source the classifier was compiled from
func (c *CELClassifier) Expression() string {
	return c.expression
}
