package matrix

import (
	"fmt"
	"math"

	"github.com/edp1096/sparse"
	"gonum.org/v1/gonum/mat"
)

// JacobianMatrix is a banded Newton system. Entries are staged in a gonum band
// matrix, equilibrated row by row and factored with sparse LU.
type JacobianMatrix struct {
	Size      int
	bandwidth int
	band      *mat.BandDense
	rhs       []float64
	solution  []float64
	matrix    *sparse.Matrix
	config    *sparse.Configuration
}

func NewJacobian(size, bandwidth int) (*JacobianMatrix, error) {
	var err error

	if size <= 0 || bandwidth < 0 {
		return nil, fmt.Errorf("invalid jacobian dimensions (size=%d, bandwidth=%d)", size, bandwidth)
	}
	bandwidth = min(bandwidth, size-1)

	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 false,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	m, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	j := &JacobianMatrix{
		Size:      size,
		bandwidth: bandwidth,
		band:      mat.NewBandDense(size, size, bandwidth, bandwidth, nil),
		rhs:       make([]float64, size+1), // 1-based indexing
		solution:  make([]float64, size+1),
		matrix:    m,
		config:    config,
	}
	j.setupElements()
	return j, nil
}

// setupElements fixes the sparse structure to the full band.
func (j *JacobianMatrix) setupElements() {
	for r := 1; r <= j.Size; r++ {
		for c := max(1, r-j.bandwidth); c <= min(j.Size, r+j.bandwidth); c++ {
			j.matrix.GetElement(int64(r), int64(c))
		}
	}
}

func (j *JacobianMatrix) Bandwidth() int { return j.bandwidth }

func (j *JacobianMatrix) AddElement(r, c int, value float64) {
	if r <= 0 || c <= 0 || r > j.Size || c > j.Size {
		panic(fmt.Sprintf("matrix: index out of bounds (i=%d, j=%d, size=%d)", r, c, j.Size))
	}
	if r-c > j.bandwidth || c-r > j.bandwidth {
		panic(fmt.Sprintf("matrix: element (%d, %d) outside bandwidth %d", r, c, j.bandwidth))
	}
	j.band.SetBand(r-1, c-1, j.band.At(r-1, c-1)+value)
}

func (j *JacobianMatrix) AddRHS(r int, value float64) {
	if r <= 0 || r > j.Size {
		panic(fmt.Sprintf("matrix: RHS index out of bounds (i=%d, size=%d)", r, j.Size))
	}
	j.rhs[r] += value
}

func (j *JacobianMatrix) At(r, c int) float64 {
	return j.band.At(r-1, c-1)
}

func (j *JacobianMatrix) Clear() {
	j.band.Zero()
	for i := range j.rhs {
		j.rhs[i] = 0
	}
}

// Equilibrate divides every row and its right hand side by the row's largest
// magnitude. An all-zero row makes the system singular.
func (j *JacobianMatrix) Equilibrate() error {
	for r := 0; r < j.Size; r++ {
		var scale float64
		j.band.DoRowNonZero(r, func(_, _ int, v float64) {
			scale = math.Max(scale, math.Abs(v))
		})
		if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
			return fmt.Errorf("%w: row %d has scale %g", ErrSingular, r+1, scale)
		}
		for c := max(0, r-j.bandwidth); c <= min(j.Size-1, r+j.bandwidth); c++ {
			j.band.SetBand(r, c, j.band.At(r, c)/scale)
		}
		j.rhs[r+1] /= scale
	}
	return nil
}

// Factor loads the staged band into the sparse matrix and LU factors it.
func (j *JacobianMatrix) Factor() error {
	var err error

	j.matrix.Clear()
	for r := 0; r < j.Size; r++ {
		for c := max(0, r-j.bandwidth); c <= min(j.Size-1, r+j.bandwidth); c++ {
			j.matrix.GetElement(int64(r+1), int64(c+1)).Real = j.band.At(r, c)
		}
	}

	err = j.matrix.Factor()
	if err != nil {
		return fmt.Errorf("%w: factorization failed: %v", ErrSingular, err)
	}
	return nil
}

// Solve solves the factored system for the current right hand side.
func (j *JacobianMatrix) Solve() error {
	var err error

	solution, err := j.matrix.Solve(j.rhs)
	if err != nil {
		return fmt.Errorf("%w: solve failed: %v", ErrSingular, err)
	}
	for i := 1; i <= j.Size; i++ {
		if math.IsNaN(solution[i]) || math.IsInf(solution[i], 0) {
			return fmt.Errorf("%w: non-finite update at %d", ErrSingular, i)
		}
	}
	copy(j.solution, solution)
	return nil
}

func (j *JacobianMatrix) RHS() []float64 {
	return j.rhs
}

// Solution returns the 1-based solution vector.
func (j *JacobianMatrix) Solution() []float64 {
	return j.solution
}

func (j *JacobianMatrix) Destroy() {
	if j.matrix != nil {
		j.matrix.Destroy()
		j.matrix = nil
	}
}
