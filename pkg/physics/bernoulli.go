package physics

import "math"

const (
	bernoulliSmall = 1e-3
	bernoulliLarge = 700.0
)

// Bernoulli returns x/(exp(x)-1). Bernoulli(0) is exactly 1.
func Bernoulli(x float64) float64 {
	switch {
	case math.Abs(x) < bernoulliSmall:
		x2 := x * x
		return 1 - x/2 + x2/12 - x2*x2/720
	case x > bernoulliLarge:
		return x * math.Exp(-x)
	default:
		return x / math.Expm1(x)
	}
}

// DerivBernoulli returns dB/dx.
func DerivBernoulli(x float64) float64 {
	switch {
	case math.Abs(x) < bernoulliSmall:
		return -0.5 + x/6 - x*x*x/180
	case x > bernoulliLarge:
		return (1 - x) * math.Exp(-x)
	case x < -bernoulliLarge:
		return -1
	default:
		b := Bernoulli(x)
		return b * (1 - b - x) / x
	}
}
