package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/SimWindows/simwin-sub002/internal/consts"
)

type Statistics int

const (
	Boltzmann Statistics = iota
	FermiDirac
)

func (s Statistics) String() string {
	switch s {
	case Boltzmann:
		return "boltzmann"
	case FermiDirac:
		return "fermi-dirac"
	}
	return fmt.Sprintf("Statistics(%d)", int(s))
}

// HalfOrder is the order of a Fermi-Dirac integral in units of 1/2.
type HalfOrder int

const (
	OrderMinusOne  HalfOrder = -2
	OrderMinusHalf HalfOrder = -1
	OrderZero      HalfOrder = 0
	OrderHalf      HalfOrder = 1
	OrderOne       HalfOrder = 2
	OrderThreeHalf HalfOrder = 3
	OrderTwo       HalfOrder = 4
	OrderFiveHalf  HalfOrder = 5
	OrderThree     HalfOrder = 6
	OrderFour      HalfOrder = 8
)

// Orders lists every supported Fermi integral order.
var Orders = []HalfOrder{
	OrderMinusOne, OrderMinusHalf, OrderZero, OrderHalf, OrderOne,
	OrderThreeHalf, OrderTwo, OrderFiveHalf, OrderThree, OrderFour,
}

func (k HalfOrder) Value() float64 { return float64(k) / 2 }

const (
	seriesLimit     = -1.0
	legendrePoints  = 96
	degenerateSpan  = 10.0
	fermiTailLength = 50.0
)

var legendreNodes, legendreWeights = legendreRule(legendrePoints)

func legendreRule(n int) ([]float64, []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, 1)
	return x, w
}

func integrate(f func(float64) float64, a, b float64) float64 {
	if b <= a {
		return 0
	}
	sum := 0.0
	for i, x := range legendreNodes {
		sum += legendreWeights[i] * f(a+(b-a)*x)
	}
	return sum * (b - a)
}

// FermiIntegral returns the complete Fermi-Dirac integral of order k/2,
// normalised by 1/Gamma(k/2+1), so that FermiIntegral(k, x) -> exp(x) for x << 0.
func FermiIntegral(k HalfOrder, x float64) float64 {
	switch k {
	case OrderMinusOne:
		if x < 0 {
			e := math.Exp(x)
			return e / (1 + e)
		}
		return 1 / (1 + math.Exp(-x))
	case OrderZero:
		if x > 0 {
			return x + Log1Div1X(math.Exp(x))
		}
		return Log1X(math.Exp(x))
	case OrderOne:
		if x > 0 {
			return math.Pi*math.Pi/6 + x*x/2 + Dilog(-math.Exp(-x))
		}
		return -Dilog(-math.Exp(x))
	case OrderTwo:
		if x > 0 {
			return x*x*x/6 + math.Pi*math.Pi*x/6 - Trilog(-math.Exp(-x))
		}
		return -Trilog(-math.Exp(x))
	case OrderMinusHalf, OrderHalf, OrderThreeHalf, OrderFiveHalf, OrderThree, OrderFour:
		j := k.Value()
		if x < seriesLimit {
			return math.Exp(x) * fermiSeries(j, x)
		}
		return fermiQuadrature(j, x)
	}
	panic(fmt.Sprintf("physics: unsupported Fermi integral order %d/2", int(k)))
}

// fermiSeries returns F_j(x)/exp(x) from the alternating series, valid for x < 0.
func fermiSeries(j, x float64) float64 {
	e := math.Exp(x)
	sum, pow := 0.0, 1.0
	for k := 1; k < 200; k++ {
		term := pow / math.Pow(float64(k), j+1)
		if k%2 == 0 {
			sum -= term
		} else {
			sum += term
		}
		if term < 1e-17*sum {
			break
		}
		pow *= e
	}
	return sum
}

// fermiQuadrature integrates 2u^(2j+1)/(1+exp(u^2-x)) in two pieces: the fully
// occupied part below x-10 and the Fermi edge with its tail.
func fermiQuadrature(j, x float64) float64 {
	f := func(u float64) float64 {
		return 2 * math.Pow(u, 2*j+1) / (1 + math.Exp(u*u-x))
	}
	u1 := math.Sqrt(math.Max(x-degenerateSpan, 0))
	u2 := math.Sqrt(math.Max(x, 0) + fermiTailLength)
	return (integrate(f, 0, u1) + integrate(f, u1, u2)) / math.Gamma(j+1)
}

// Fermi returns the carrier occupation integral F_1/2(x) or its
// non-degenerate limit exp(x).
func Fermi(x float64, stats Statistics) float64 {
	switch stats {
	case Boltzmann:
		return math.Exp(x)
	case FermiDirac:
		return FermiIntegral(OrderHalf, x)
	}
	panic(fmt.Sprintf("physics: unknown statistics %d", int(stats)))
}

// DerivFermi returns dFermi/dx.
func DerivFermi(x float64, stats Statistics) float64 {
	switch stats {
	case Boltzmann:
		return math.Exp(x)
	case FermiDirac:
		return FermiIntegral(OrderMinusHalf, x)
	}
	panic(fmt.Sprintf("physics: unknown statistics %d", int(stats)))
}

// LogFermi returns ln(Fermi(x, stats)) without underflow for large negative x.
func LogFermi(x float64, stats Statistics) float64 {
	switch stats {
	case Boltzmann:
		return x
	case FermiDirac:
		if x < seriesLimit {
			return x + math.Log(fermiSeries(0.5, x))
		}
		return math.Log(FermiIntegral(OrderHalf, x))
	}
	panic(fmt.Sprintf("physics: unknown statistics %d", int(stats)))
}

// ThermalVoltage returns kT/q in volts.
func ThermalVoltage(temp float64) float64 {
	if temp <= 0 {
		panic(fmt.Sprintf("physics: non-positive temperature %g", temp))
	}
	return consts.BOLTZMANN_EV * temp
}
