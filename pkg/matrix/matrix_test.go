package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJacobianSolve(t *testing.T) {
	j, err := NewJacobian(3, 5)
	require.NoError(t, err)
	defer j.Destroy()
	assert.Equal(t, 2, j.Bandwidth())

	// [ 4 -1  0 ] [x1]   [ 3]
	// [-1  4 -1 ] [x2] = [ 2]
	// [ 0 -1  4 ] [x3]   [ 3]
	stamps := []struct {
		i, j int
		v    float64
	}{
		{1, 1, 4}, {1, 2, -1},
		{2, 1, -1}, {2, 2, 4}, {2, 3, -1},
		{3, 2, -1}, {3, 3, 4},
	}
	for _, s := range stamps {
		j.AddElement(s.i, s.j, s.v)
	}
	j.AddRHS(1, 3)
	j.AddRHS(2, 2)
	j.AddRHS(3, 3)

	require.NoError(t, j.Equilibrate())
	assert.InDelta(t, 1.0, j.At(1, 1), 1e-15)
	assert.InDelta(t, -0.25, j.At(1, 2), 1e-15)
	require.NoError(t, j.Factor())
	require.NoError(t, j.Solve())

	x := j.Solution()
	for i := 1; i <= 3; i++ {
		assert.InDelta(t, 1.0, x[i], 1e-12)
	}

	// The structure is reusable after clearing.
	j.Clear()
	assert.Equal(t, 0.0, j.At(2, 2))
	for _, s := range stamps {
		j.AddElement(s.i, s.j, 2*s.v)
	}
	j.AddRHS(1, 6)
	j.AddRHS(2, 4)
	j.AddRHS(3, 6)
	require.NoError(t, j.Equilibrate())
	require.NoError(t, j.Factor())
	require.NoError(t, j.Solve())
	assert.InDelta(t, 1.0, j.Solution()[2], 1e-12)
}

func TestJacobianZeroRow(t *testing.T) {
	j, err := NewJacobian(2, 1)
	require.NoError(t, err)
	defer j.Destroy()

	j.AddElement(1, 1, 1)
	err = j.Equilibrate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSingular))
}

func TestJacobianBounds(t *testing.T) {
	j, err := NewJacobian(10, 2)
	require.NoError(t, err)
	defer j.Destroy()

	assert.Panics(t, func() { j.AddElement(1, 4, 1) })
	assert.Panics(t, func() { j.AddElement(0, 1, 1) })
	assert.Panics(t, func() { j.AddRHS(11, 1) })
	assert.NotPanics(t, func() { j.AddElement(3, 1, 1) })

	_, err = NewJacobian(0, 5)
	assert.Error(t, err)
}

func TestThermalSolve(t *testing.T) {
	m, err := NewThermal(4)
	require.NoError(t, err)

	// -x[i-1] + 2x[i] - x[i+1] = 0 with x0 = 1, x5 = 0 folded into the RHS.
	for i := 1; i <= 4; i++ {
		m.AddElement(i, i, 2)
		if i > 1 {
			m.AddElement(i, i-1, -1)
		}
		if i < 4 {
			m.AddElement(i, i+1, -1)
		}
	}
	m.AddRHS(1, 1)
	require.NoError(t, m.Solve())

	x := m.Solution()
	for i := 1; i <= 4; i++ {
		assert.InDelta(t, 1-float64(i)/5, x[i], 1e-12)
	}

	assert.Panics(t, func() { m.AddElement(1, 3, 1) })

	m.Clear()
	err = m.Solve()
	assert.True(t, errors.Is(err, ErrSingular))
}

func TestThermalSingleNode(t *testing.T) {
	m, err := NewThermal(1)
	require.NoError(t, err)
	m.AddElement(1, 1, 2)
	m.AddRHS(1, 3)
	require.NoError(t, m.Solve())
	assert.InDelta(t, 1.5, m.Solution()[1], 1e-15)
}
