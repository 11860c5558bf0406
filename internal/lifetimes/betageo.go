// Package lifetimes implements the two probabilistic customer models the
// analytics suite scores customers with: a BG/NBD purchase-process model
// over (frequency, recency, T) triples and a Gamma-Gamma monetary model
// over (frequency, monetary value) pairs of repeat customers.
//
// Expected future revenue decomposes as
//
//	E[revenue] = E[future purchases] x E[average transaction value]
//
// with each factor estimated by its own model. Keeping the two estimations
// separate keeps each numerically well-posed. Models are fit fresh per
// customer population and window; a fitted model must never be shared
// across groups, since each group's population has different optimal
// parameters.
package lifetimes

import (
	"math"
)

// BetaGeoModel holds the fitted shape parameters of the BG/NBD
// frequency/recency purchase-process model.
type BetaGeoModel struct {
	R     float64
	Alpha float64
	A     float64
	B     float64
}

// FitBetaGeo estimates BG/NBD parameters from the population's parallel
// (frequency, recency, T) slices by penalized maximum likelihood.
// Populations of size zero or one short-circuit with ErrInsufficientData
// before the optimizer runs.
func FitBetaGeo(frequency, recency, t []float64, opts FitOptions) (*BetaGeoModel, error) {
	if len(frequency) < 2 || len(frequency) != len(recency) || len(frequency) != len(t) {
		return nil, ErrInsufficientData
	}
	opts = opts.withDefaults()

	negLL := func(logParams []float64) float64 {
		r := math.Exp(logParams[0])
		alpha := math.Exp(logParams[1])
		a := math.Exp(logParams[2])
		b := math.Exp(logParams[3])

		var sum float64
		for i := range frequency {
			x := frequency[i]
			tx := recency[i]
			T := t[i]

			a1 := lgamma(r+x) - lgamma(r) + r*math.Log(alpha)
			a2 := lgamma(a+b) + lgamma(b+x) - lgamma(b) - lgamma(a+b+x)
			a3 := -(r + x) * math.Log(alpha+T)

			ll := a1 + a2
			if x > 0 {
				a4 := math.Log(a) - math.Log(b+x-1) - (r+x)*math.Log(alpha+tx)
				ll += logAddExp(a3, a4)
			} else {
				ll += a3
			}
			sum += ll
		}

		penalty := opts.PenalizerCoef * (r*r + alpha*alpha + a*a + b*b)
		value := -sum/float64(len(frequency)) + penalty
		if math.IsNaN(value) {
			return math.Inf(1)
		}
		return value
	}

	best, value := nelderMead(negLL, []float64{0, 0, 0, 0}, opts.MaxIter, opts.Tol)
	if math.IsInf(value, 1) || math.IsNaN(value) {
		return nil, ErrFitDiverged
	}

	return &BetaGeoModel{
		R:     math.Exp(best[0]),
		Alpha: math.Exp(best[1]),
		A:     math.Exp(best[2]),
		B:     math.Exp(best[3]),
	}, nil
}

// ProbabilityAlive returns the probability that a customer with the given
// purchase history is still active. Always in [0, 1]; a customer with no
// repeat purchases is alive with probability 1 under this model.
func (m *BetaGeoModel) ProbabilityAlive(frequency, recency, t float64) float64 {
	if frequency <= 0 {
		return 1.0
	}
	logOdds := math.Log(m.A) - math.Log(m.B+frequency-1) +
		(m.R+frequency)*(math.Log(m.Alpha+t)-math.Log(m.Alpha+recency))
	return 1.0 / (1.0 + math.Exp(logOdds))
}

// ExpectedPurchases returns the expected number of future purchases over
// the next horizon days for a customer with the given history. A
// non-finite value from a degenerate parameter set is reported as 0.
func (m *BetaGeoModel) ExpectedPurchases(horizon, frequency, recency, t float64) float64 {
	x := frequency
	hyp := hyp2f1(m.R+x, m.B+x, m.A+m.B+x-1, horizon/(m.Alpha+t+horizon))
	numerator := (m.A + m.B + x - 1) / (m.A - 1) *
		(1 - math.Pow((m.Alpha+t)/(m.Alpha+t+horizon), m.R+x)*hyp)

	denominator := 1.0
	if x > 0 {
		denominator = 1 + m.A/(m.B+x-1)*math.Pow((m.Alpha+t)/(m.Alpha+recency), m.R+x)
	}

	expected := numerator / denominator
	if math.IsNaN(expected) || math.IsInf(expected, 0) || expected < 0 {
		return 0
	}
	return expected
}

// ExpectedPurchasesNewCustomer returns the expected number of purchases a
// brand-new customer makes over the next horizon days.
func (m *BetaGeoModel) ExpectedPurchasesNewCustomer(horizon float64) float64 {
	hyp := hyp2f1(m.R, m.B, m.A+m.B-1, horizon/(m.Alpha+horizon))
	expected := (m.A + m.B - 1) / (m.A - 1) *
		(1 - math.Pow(m.Alpha/(m.Alpha+horizon), m.R)*hyp)
	if math.IsNaN(expected) || math.IsInf(expected, 0) || expected < 0 {
		return 0
	}
	return expected
}
