package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ThermalMatrix is the tridiagonal system of the lattice temperature.
type ThermalMatrix struct {
	Size     int
	lower    []float64
	diag     []float64
	upper    []float64
	rhs      []float64
	solution []float64
}

func NewThermal(size int) (*ThermalMatrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid thermal matrix size %d", size)
	}
	return &ThermalMatrix{
		Size:     size,
		lower:    make([]float64, size-1),
		diag:     make([]float64, size),
		upper:    make([]float64, size-1),
		rhs:      make([]float64, size+1), // 1-based indexing
		solution: make([]float64, size+1),
	}, nil
}

func (t *ThermalMatrix) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 || i > t.Size || j > t.Size {
		panic(fmt.Sprintf("matrix: thermal index out of bounds (i=%d, j=%d, size=%d)", i, j, t.Size))
	}
	switch j - i {
	case 0:
		t.diag[i-1] += value
	case 1:
		t.upper[i-1] += value
	case -1:
		t.lower[j-1] += value
	default:
		panic(fmt.Sprintf("matrix: thermal element (%d, %d) is not tridiagonal", i, j))
	}
}

func (t *ThermalMatrix) AddRHS(i int, value float64) {
	if i <= 0 || i > t.Size {
		panic(fmt.Sprintf("matrix: thermal RHS index out of bounds (i=%d, size=%d)", i, t.Size))
	}
	t.rhs[i] += value
}

func (t *ThermalMatrix) Clear() {
	clear(t.lower)
	clear(t.diag)
	clear(t.upper)
	clear(t.rhs)
}

func (t *ThermalMatrix) Solve() error {
	var err error

	a := mat.NewTridiag(t.Size, t.lower, t.diag, t.upper)
	b := mat.NewVecDense(t.Size, append([]float64(nil), t.rhs[1:]...))
	var x mat.VecDense
	err = a.SolveVecTo(&x, false, b)
	if err != nil {
		return fmt.Errorf("%w: thermal solve: %v", ErrSingular, err)
	}
	for i := 0; i < t.Size; i++ {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite temperature update at %d", ErrSingular, i+1)
		}
		t.solution[i+1] = v
	}
	return nil
}

func (t *ThermalMatrix) Solution() []float64 {
	return t.solution
}
