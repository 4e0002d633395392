// Package formula defines the expression collaborator used for user supplied
// material parameters. Any expression language can be plugged in through
// Compiler; Literal only understands numbers and bare variable names.
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type Evaluable interface {
	Evaluate(bindings map[string]float64) float64
}

type Compiler interface {
	Compile(expr string, freeVars []string) (Evaluable, error)
}

type CompileError struct {
	Message  string
	Position int
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("formula: %s at position %d", e.Message, e.Position)
}

// Func adapts an ordinary function to Evaluable.
type Func func(bindings map[string]float64) float64

func (f Func) Evaluate(bindings map[string]float64) float64 { return f(bindings) }

type Constant float64

func (c Constant) Evaluate(map[string]float64) float64 { return float64(c) }

type variable string

func (v variable) Evaluate(bindings map[string]float64) float64 { return bindings[string(v)] }

type Literal struct{}

func (Literal) Compile(expr string, freeVars []string) (Evaluable, error) {
	start := strings.IndexFunc(expr, func(r rune) bool { return !unicode.IsSpace(r) })
	text := strings.TrimSpace(expr)
	if text == "" {
		return nil, &CompileError{Message: "empty expression", Position: len(expr)}
	}

	value, err := strconv.ParseFloat(text, 64)
	if err == nil {
		return Constant(value), nil
	}

	for _, name := range freeVars {
		if text == name {
			return variable(name), nil
		}
	}

	for i, r := range text {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return nil, &CompileError{Message: fmt.Sprintf("unexpected character %q", r), Position: start + i}
		}
	}
	return nil, &CompileError{Message: fmt.Sprintf("unknown variable %q", text), Position: start}
}
