package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"
)

const (
	zeta2 = math.Pi * math.Pi / 6
	zeta3 = 1.2020569031595942
)

// IncompGamma returns the lower incomplete gamma function gamma(a, x).
func IncompGamma(a, x float64) float64 {
	if a <= 0 || x < 0 {
		panic(fmt.Sprintf("physics: incomplete gamma out of domain (a=%g, x=%g)", a, x))
	}
	return math.Gamma(a) * mathext.GammaIncReg(a, x)
}

// IncompGammaComp returns the regularised upper incomplete gamma function Q(a, x).
func IncompGammaComp(a, x float64) float64 {
	if a <= 0 || x < 0 {
		panic(fmt.Sprintf("physics: incomplete gamma out of domain (a=%g, x=%g)", a, x))
	}
	return mathext.GammaIncRegComp(a, x)
}

// Log1X returns ln(1+x).
func Log1X(x float64) float64 {
	if x <= -1 {
		panic(fmt.Sprintf("physics: log(1+x) out of domain (x=%g)", x))
	}
	return math.Log1p(x)
}

// Log1Div1X returns ln(1+1/x).
func Log1Div1X(x float64) float64 {
	if x <= 0 {
		panic(fmt.Sprintf("physics: log(1+1/x) out of domain (x=%g)", x))
	}
	if math.IsInf(x, 1) {
		return 0
	}
	return math.Log1p(1 / x)
}

// coefficients B_n/(n+1)! of the dilogarithm series in u = -ln(1-x)
var dilogSeries = []struct {
	power int
	coeff float64
}{
	{1, 1.0},
	{2, -0.25},
	{3, 0.027777777777777776},
	{5, -0.0002777777777777778},
	{7, 4.72411186696901e-06},
	{9, -9.185773074661964e-08},
	{11, 1.8978869988971e-09},
	{13, -4.0647616451442256e-11},
	{15, 8.921691020456452e-13},
	{17, -1.9939295860721074e-14},
	{19, 4.518980029619918e-16},
	{21, -1.0356517612181247e-17},
}

// Dilog returns the dilogarithm Li2(x) for x <= 1.
func Dilog(x float64) float64 {
	switch {
	case x > 1 || math.IsNaN(x):
		panic(fmt.Sprintf("physics: dilog out of domain (x=%g)", x))
	case x == 1:
		return zeta2
	case x == 0:
		return 0
	case x > 0.5:
		return zeta2 - math.Log(x)*math.Log1p(-x) - Dilog(1-x)
	case x < -1:
		l := math.Log(-x)
		return -zeta2 - l*l/2 - Dilog(1/x)
	}

	u := -math.Log1p(-x)
	u2 := u * u
	sum := u - u2/4
	pow := u2 * u
	for _, c := range dilogSeries[2:] {
		sum += c.coeff * pow
		pow *= u2
	}
	return sum
}

// Trilog returns the trilogarithm Li3(x) for x <= 1.
func Trilog(x float64) float64 {
	switch {
	case x > 1 || math.IsNaN(x):
		panic(fmt.Sprintf("physics: trilog out of domain (x=%g)", x))
	case x == 1:
		return zeta3
	case x == 0:
		return 0
	case x > 0.5:
		return trilogNearOne(math.Log(x))
	case x < -1:
		l := math.Log(-x)
		return Trilog(1/x) - zeta2*l - l*l*l/6
	case x < -0.5:
		return Trilog(x*x)/4 - Trilog(-x)
	}

	sum, pow := 0.0, x
	for k := 1; k < 100; k++ {
		term := pow / float64(k*k*k)
		sum += term
		if math.Abs(term) < 1e-17*math.Abs(sum) {
			break
		}
		pow *= x
	}
	return sum
}

// trilogNearOne expands Li3(exp(l)) around l = 0 for l < 0.
func trilogNearOne(l float64) float64 {
	l2 := l * l
	sum := zeta3 + zeta2*l + (1.5-math.Log(-l))*l2/2 - l2*l/12 - l2*l2/288
	// zeta(3-k)/k! for even k >= 6
	coeff := []float64{
		1.0 / 86400,
		-1.0 / 10160640,
		1.0 / 870912000,
		-1.0 / 63228211200,
		691.0 / 32760 / 87178291200,
	}
	pow := l2 * l2 * l2
	for _, c := range coeff {
		sum += c * pow
		pow *= l2
	}
	return sum
}
