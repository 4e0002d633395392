package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mathext"
)

func TestBernoulli(t *testing.T) {
	assert.Equal(t, 1.0, Bernoulli(0))

	for x := -50.0; x <= 50; x += 0.37 {
		if math.Abs(x) < bernoulliSmall {
			continue
		}
		assert.InEpsilonf(t, x, Bernoulli(x)*math.Expm1(x), 1e-12, "x=%g", x)
	}

	assert.InDelta(t, 1.0, Bernoulli(1e-9), 1e-9)
	assert.InDelta(t, 1000.0, Bernoulli(-1000), 1e-9)
	assert.False(t, math.IsNaN(Bernoulli(1000)))
	assert.InDelta(t, 0, Bernoulli(1000), 1e-300)

	// B(-x) = B(x) + x
	for _, x := range []float64{-20, -3, -0.5, 1e-4, 0.7, 12} {
		assert.InDeltaf(t, Bernoulli(x)+x, Bernoulli(-x), 1e-12*math.Max(1, math.Abs(x)), "x=%g", x)
	}
}

func TestDerivBernoulli(t *testing.T) {
	for _, x := range []float64{-30, -2, -0.2, -5e-4, 0, 5e-4, 2e-3, 0.5, 3, 40} {
		want := fd.Derivative(Bernoulli, x, &fd.Settings{Formula: fd.Central, Step: 1e-5})
		assert.InDeltaf(t, want, DerivBernoulli(x), 1e-7, "x=%g", x)
	}
	assert.Equal(t, -0.5, DerivBernoulli(0))
}

func TestFermiIntegralReference(t *testing.T) {
	tests := []struct {
		order HalfOrder
		x     float64
		want  float64
	}{
		{OrderHalf, 0, 0.765147024625408},
		{OrderHalf, 1, 1.5756407761509441},
		{OrderHalf, 5, 8.844208895240449},
		{OrderHalf, -0.5, 0.5075371035544516},
		{OrderHalf, 20, 67.49151222165057},
		{OrderMinusHalf, 0, 0.6048986434216305},
		{OrderMinusHalf, 2, 1.4642945890872592},
		{OrderZero, 0, math.Ln2},
		{OrderOne, 0, math.Pi * math.Pi / 12},
		{OrderThreeHalf, 3, 7.788610770294362},
		{OrderFiveHalf, 1, 2.2948329631207867},
		{OrderThree, 2, 5.716380543852147},
		{OrderFour, 10, 1126.429713131013},
		{OrderMinusOne, 0, 0.5},
	}

	for _, tt := range tests {
		got := FermiIntegral(tt.order, tt.x)
		assert.InEpsilonf(t, tt.want, got, 1e-4, "order=%d/2 x=%g", tt.order, tt.x)
	}
}

func TestFermiIntegralAtZero(t *testing.T) {
	// F_j(0) = (1 - 2^-j) zeta(j+1) for j > 0
	for _, k := range []HalfOrder{OrderHalf, OrderOne, OrderThreeHalf, OrderTwo, OrderFiveHalf, OrderThree, OrderFour} {
		j := k.Value()
		want := (1 - math.Pow(2, -j)) * mathext.Zeta(j+1, 1)
		assert.InEpsilonf(t, want, FermiIntegral(k, 0), 1e-8, "order=%d/2", k)
	}
}

func TestFermiIntegralMonotonic(t *testing.T) {
	for _, k := range Orders {
		prev := FermiIntegral(k, -60)
		for x := -59.75; x <= 30; x += 0.25 {
			cur := FermiIntegral(k, x)
			require.Greaterf(t, cur, prev, "order=%d/2 x=%g", k, x)
			prev = cur
		}
	}
}

func TestFermiIntegralLimits(t *testing.T) {
	for _, k := range Orders {
		assert.InEpsilonf(t, math.Exp(-25), FermiIntegral(k, -25), 1e-9, "order=%d/2", k)
	}

	// Sommerfeld expansion
	for _, k := range []HalfOrder{OrderMinusHalf, OrderZero, OrderHalf, OrderOne, OrderThreeHalf} {
		j := k.Value()
		x := 100.0
		want := math.Pow(x, j+1) / math.Gamma(j+2) * (1 + (j+1)*j*math.Pi*math.Pi/6/(x*x))
		assert.InEpsilonf(t, want, FermiIntegral(k, x), 1e-6, "order=%d/2", k)
	}

	// the series and the quadrature agree where they meet
	for _, k := range []HalfOrder{OrderMinusHalf, OrderHalf, OrderFour} {
		below := FermiIntegral(k, seriesLimit-1e-9)
		above := FermiIntegral(k, seriesLimit)
		assert.InEpsilonf(t, below, above, 1e-8, "order=%d/2", k)
	}
}

func TestFermiIntegralUnsupportedOrder(t *testing.T) {
	assert.Panics(t, func() { FermiIntegral(HalfOrder(7), 0) })
	assert.Panics(t, func() { FermiIntegral(HalfOrder(-3), 0) })
}

func TestFermiStatistics(t *testing.T) {
	for _, x := range []float64{-40, -5, -1.5, -0.5, 0, 2, 10} {
		assert.InEpsilon(t, math.Exp(x), Fermi(x, Boltzmann), 1e-15)
		assert.InDelta(t, x, LogFermi(x, Boltzmann), 0)

		assert.InEpsilonf(t, math.Log(Fermi(x, FermiDirac)), LogFermi(x, FermiDirac), 1e-9, "x=%g", x)

		f := func(v float64) float64 { return Fermi(v, FermiDirac) }
		want := fd.Derivative(f, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})
		assert.InEpsilonf(t, want, DerivFermi(x, FermiDirac), 1e-6, "x=%g", x)
	}

	// deep in the non-degenerate tail the log stays finite
	assert.InDelta(t, -2000.0, LogFermi(-2000, FermiDirac), 1e-9)
	assert.Greater(t, Fermi(5, Boltzmann), Fermi(5, FermiDirac))
}

func TestDilogTrilog(t *testing.T) {
	ln2 := math.Ln2
	assert.InDelta(t, -math.Pi*math.Pi/12, Dilog(-1), 1e-15)
	assert.InDelta(t, math.Pi*math.Pi/12-ln2*ln2/2, Dilog(0.5), 1e-15)
	assert.InDelta(t, math.Pi*math.Pi/6, Dilog(1), 0)
	assert.InDelta(t, -1.9393754207667089, Dilog(-3), 1e-14)
	assert.InDelta(t, 0, Dilog(0), 0)
	assert.InDelta(t, 1e-12, Dilog(1e-12), 1e-24)

	assert.InDelta(t, zeta3, Trilog(1), 0)
	assert.InDelta(t, -0.75*zeta3, Trilog(-1), 1e-15)
	assert.InDelta(t, 7.0/8*zeta3-math.Pi*math.Pi/12*ln2+ln2*ln2*ln2/6, Trilog(0.5), 1e-15)

	// continuity across the branch boundaries
	for _, b := range [][2]float64{{0.5, 1}, {-0.5, -1}, {-1, -2}} {
		x, next := b[0], math.Nextafter(b[0], b[1])
		assert.InDeltaf(t, Dilog(x), Dilog(next), 1e-14, "dilog x=%g", x)
		assert.InDeltaf(t, Trilog(x), Trilog(next), 1e-14, "trilog x=%g", x)
	}
	assert.InDelta(t, Dilog(1), Dilog(1-1e-12), 1e-9)
	assert.InDelta(t, Trilog(1), Trilog(1-1e-12), 1e-10)

	assert.Panics(t, func() { Dilog(1.5) })
	assert.Panics(t, func() { Trilog(2) })
}

func TestLogAndGamma(t *testing.T) {
	assert.InDelta(t, 1e-20, Log1X(1e-20), 1e-36)
	assert.InDelta(t, math.Log(2), Log1X(1), 1e-15)
	assert.InDelta(t, math.Log(2), Log1Div1X(1), 1e-15)
	assert.InDelta(t, 1e-20, Log1Div1X(1e20), 1e-36)
	assert.Equal(t, 0.0, Log1Div1X(math.Inf(1)))
	assert.Panics(t, func() { Log1X(-1) })
	assert.Panics(t, func() { Log1Div1X(0) })

	// gamma(1, x) = 1 - exp(-x)
	assert.InDelta(t, -math.Expm1(-2), IncompGamma(1, 2), 1e-14)
	// gamma(1/2, x) = sqrt(pi) erf(sqrt(x))
	assert.InDelta(t, math.Sqrt(math.Pi)*math.Erf(math.Sqrt(3)), IncompGamma(0.5, 3), 1e-13)
	assert.InDelta(t, math.Exp(-2), IncompGammaComp(1, 2), 1e-14)
	assert.Panics(t, func() { IncompGamma(0, 1) })
}

func TestThermalVoltage(t *testing.T) {
	assert.InDelta(t, 0.025852, ThermalVoltage(300), 1e-6)
	assert.Panics(t, func() { ThermalVoltage(0) })
}
