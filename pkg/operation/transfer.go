package operation

import (
	"fmt"
	"math"

	"github.com/hoppxi/brux/pkg/displayinfo"
	"github.com/knetic/govaluate"
)

// Transfer maps a scheduled brightness (0-100) onto the level actually sent
// to the panel, e.g. "value ** 2 / 100" to compensate for perceived
// brightness. The expression sees value, min and max and must yield a
// percentage. Function names shadow parameters, so none may be called min
// or max.
type Transfer struct {
	source string
	expr   *govaluate.EvaluableExpression
}

var transferFunctions = map[string]govaluate.ExpressionFunction{
	"pow": func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow takes 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat64(args[0]), toFloat64(args[1])), nil
	},
	"sqrt": func(args ...any) (any, error) { return math.Sqrt(toFloat64(args[0])), nil },
	"round": func(args ...any) (any, error) { return math.Round(toFloat64(args[0])), nil },
}

// NewTransfer compiles source. An empty source is the identity.
func NewTransfer(source string) (*Transfer, error) {
	if source == "" {
		return &Transfer{}, nil
	}
	expr, err := govaluate.NewEvaluableExpressionWithFunctions(source, transferFunctions)
	if err != nil {
		return nil, fmt.Errorf("invalid transfer expression %q: %w", source, err)
	}
	return &Transfer{source: source, expr: expr}, nil
}

func (t *Transfer) String() string {
	if t == nil || t.source == "" {
		return "value"
	}
	return t.source
}

// Apply returns the raw device value for a scheduled percentage.
func (t *Transfer) Apply(value float64, r displayinfo.Range) (int, error) {
	percent := value
	if t != nil && t.expr != nil {
		out, err := t.expr.Evaluate(map[string]any{
			"value": value,
			"min":   float64(r.Min),
			"max":   float64(r.Max),
		})
		if err != nil {
			return 0, fmt.Errorf("evaluate %q: %w", t.source, err)
		}
		f, ok := out.(float64)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("transfer %q returned %v, want a number", t.source, out)
		}
		percent = f
	}
	return r.FromPercent(percent), nil
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}
