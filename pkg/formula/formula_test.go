package formula

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiteralCompile(t *testing.T) {
	var c Compiler = Literal{}

	e, err := c.Compile(" 1.5e-3 ", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.5e-3, e.Evaluate(nil))

	e, err = c.Compile("t", []string{"x", "t"})
	require.NoError(t, err)
	assert.Equal(t, 350.0, e.Evaluate(map[string]float64{"t": 350}))
}

func TestLiteralCompileError(t *testing.T) {
	tests := []struct {
		expr string
		pos  int
	}{
		{"", 0},
		{"  y", 2},
		{" x+1", 2},
	}

	for _, tt := range tests {
		_, err := Literal{}.Compile(tt.expr, []string{"x"})
		var ce *CompileError
		require.True(t, errors.As(err, &ce), tt.expr)
		assert.Equal(t, tt.pos, ce.Position, tt.expr)
		assert.NotEmpty(t, ce.Message)
	}
}

func TestFunc(t *testing.T) {
	f := Func(func(b map[string]float64) float64 { return 2 * b["x"] })
	assert.Equal(t, 0.6, f.Evaluate(map[string]float64{"x": 0.3}))
	assert.Equal(t, 4.0, Constant(4).Evaluate(nil))
}
