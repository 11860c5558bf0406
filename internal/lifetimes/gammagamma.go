package lifetimes

import (
	"math"
)

// GammaGammaModel holds the fitted shape parameters of the Gamma-Gamma
// monetary-value model.
type GammaGammaModel struct {
	P float64
	Q float64
	V float64
}

// FitGammaGamma estimates Gamma-Gamma parameters from (frequency, monetary
// value) pairs of repeat customers. One-time customers carry no variance
// information and must be filtered out by the caller; they still receive
// predictions through PopulationExpectedValue.
func FitGammaGamma(frequency, monetaryValue []float64, opts FitOptions) (*GammaGammaModel, error) {
	if len(frequency) < 2 || len(frequency) != len(monetaryValue) {
		return nil, ErrInsufficientData
	}
	opts = opts.withDefaults()

	negLL := func(logParams []float64) float64 {
		p := math.Exp(logParams[0])
		q := math.Exp(logParams[1])
		v := math.Exp(logParams[2])

		var sum float64
		for i := range frequency {
			x := frequency[i]
			mv := monetaryValue[i]
			if x <= 0 || mv <= 0 {
				return math.Inf(1)
			}
			ll := lgamma(p*x+q) - lgamma(p*x) - lgamma(q) +
				q*math.Log(v) + (p*x-1)*math.Log(mv) + p*x*math.Log(x) -
				(p*x+q)*math.Log(v+mv*x)
			sum += ll
		}

		penalty := opts.PenalizerCoef * (p*p + q*q + v*v)
		value := -sum/float64(len(frequency)) + penalty
		if math.IsNaN(value) {
			return math.Inf(1)
		}
		return value
	}

	best, value := nelderMead(negLL, []float64{0, 0, 0}, opts.MaxIter, opts.Tol)
	if math.IsInf(value, 1) || math.IsNaN(value) {
		return nil, ErrFitDiverged
	}

	return &GammaGammaModel{
		P: math.Exp(best[0]),
		Q: math.Exp(best[1]),
		V: math.Exp(best[2]),
	}, nil
}

// ExpectedAverageValue returns the expected average future transaction
// value for a repeat customer with the given frequency and observed
// average. A customer with frequency 0 gets the population expectation.
func (m *GammaGammaModel) ExpectedAverageValue(frequency, monetaryValue float64) float64 {
	if frequency <= 0 {
		return m.PopulationExpectedValue()
	}
	denominator := m.P*frequency + m.Q - 1
	if denominator <= 0 {
		return 0
	}
	return m.P * (m.V + monetaryValue*frequency) / denominator
}

// PopulationExpectedValue is the closed-form population mean p*v/(q-1),
// the fallback prediction for customers excluded from fitting. A fitted q
// at or below 1 makes the mean undefined; the neutral fallback is 0.
func (m *GammaGammaModel) PopulationExpectedValue() float64 {
	if m.Q <= 1 {
		return 0
	}
	return m.P * m.V / (m.Q - 1)
}
