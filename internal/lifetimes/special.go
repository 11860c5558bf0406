package lifetimes

import "math"

// lgamma is math.Lgamma without the sign: every argument in the likelihoods
// is positive, where the gamma function is positive too.
func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// logAddExp computes ln(exp(a) + exp(b)) without overflow.
func logAddExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	m := math.Max(a, b)
	return m + math.Log(math.Exp(a-m)+math.Exp(b-m))
}

// hyp2f1 evaluates the Gaussian hypergeometric function 2F1(a, b; c; z) by
// its power series. Every call site passes z = t/(alpha+T+t) in [0, 1), for
// which the series converges.
func hyp2f1(a, b, c, z float64) float64 {
	const (
		maxTerms = 10000
		eps      = 1e-12
	)

	sum := 1.0
	term := 1.0
	for n := 0; n < maxTerms; n++ {
		fn := float64(n)
		term *= (a + fn) * (b + fn) / ((c + fn) * (fn + 1)) * z
		sum += term
		if math.Abs(term) < eps*math.Abs(sum) {
			break
		}
	}
	return sum
}
