// Package expression compiles textual functions of x, such as "x**3 - 4",
// into rootfinding.Function values.
//
// Expressions use govaluate syntax: exponentiation is "**" ("^" is bitwise
// xor). The functions sin, cos, tan, exp, log, sqrt, abs and pow and the
// constants pi and e are available.
package expression

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/copyleftdev/ROOTS/internal/rootfinding"
)

// Variable is the only free variable an expression may use.
const Variable = "x"

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var functions = map[string]govaluate.ExpressionFunction{
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"exp":  unary(math.Exp),
	"log":  unary(math.Log),
	"sqrt": unary(math.Sqrt),
	"abs":  unary(math.Abs),
	"pow": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("pow expects 2 arguments, got %d", len(args))
		}
		return math.Pow(toFloat(args[0]), toFloat(args[1])), nil
	},
}

func unary(fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(toFloat(args[0])), nil
	}
}

// Expression is a compiled function of x.
type Expression struct {
	source string
	expr   *govaluate.EvaluableExpression
}

// Compile parses src. Any variable other than x and the named constants is
// rejected.
func Compile(src string) (*Expression, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("empty expression")
	}
	parsed, err := govaluate.NewEvaluableExpressionWithFunctions(src, functions)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", src, err)
	}

	for _, v := range parsed.Vars() {
		if v == Variable {
			continue
		}
		if _, ok := constants[v]; ok {
			continue
		}
		return nil, fmt.Errorf("parse %q: unknown variable %q", src, v)
	}

	return &Expression{source: src, expr: parsed}, nil
}

// String returns the source text with surrounding whitespace removed.
func (e *Expression) String() string {
	return e.source
}

// Eval evaluates the expression at x.
func (e *Expression) Eval(x float64) (float64, error) {
	params := make(map[string]interface{}, len(constants)+1)
	for k, v := range constants {
		params[k] = v
	}
	params[Variable] = x

	v, err := e.expr.Evaluate(params)
	if err != nil {
		return math.NaN(), err
	}

	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case bool:
		return math.NaN(), fmt.Errorf("expression %q is boolean, not numeric", e.source)
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN(), err
		}
		return parsed, nil
	default:
		return math.NaN(), fmt.Errorf("expression %q did not return a number: %T", e.source, v)
	}
}

// Function returns e as a rootfinding.Function. Evaluation errors become NaN,
// which the strategies report as bracket or step failures.
func (e *Expression) Function() rootfinding.Function {
	return func(x float64) float64 {
		y, err := e.Eval(x)
		if err != nil {
			return math.NaN()
		}
		return y
	}
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
