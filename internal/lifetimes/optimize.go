package lifetimes

import (
	"errors"
	"math"
	"sort"
)

var (
	// ErrInsufficientData is returned when a population is too small to fit
	// a model; callers degrade to their zero record instead of optimizing.
	ErrInsufficientData = errors.New("lifetimes: population too small to fit a model")

	// ErrFitDiverged is returned when the optimizer fails to reach a finite
	// parameter set within its iteration budget.
	ErrFitDiverged = errors.New("lifetimes: model fit did not converge")
)

// FitOptions bounds the iterative maximum-likelihood search. Zero values
// fall back to the defaults the reporting pipeline has always used.
type FitOptions struct {
	// PenalizerCoef is the L2 regularization weight on the (natural-scale)
	// parameters, added to the mean negative log-likelihood.
	PenalizerCoef float64

	// MaxIter caps optimizer iterations.
	MaxIter int

	// Tol is the convergence tolerance on the simplex objective spread.
	Tol float64
}

func (o FitOptions) withDefaults() FitOptions {
	if o.MaxIter <= 0 {
		o.MaxIter = 10000
	}
	if o.Tol <= 0 {
		o.Tol = 1e-6
	}
	return o
}

// nelderMead minimizes fn starting from x0 using the downhill simplex
// method. Parameters are unconstrained; the likelihood functions map them
// through exp, keeping the natural-scale parameters positive.
func nelderMead(fn func([]float64) float64, x0 []float64, maxIter int, tol float64) ([]float64, float64) {
	const (
		reflect  = 1.0
		expand   = 2.0
		contract = 0.5
		shrink   = 0.5
	)

	n := len(x0)
	simplex := make([][]float64, n+1)
	values := make([]float64, n+1)
	for i := range simplex {
		point := make([]float64, n)
		copy(point, x0)
		if i > 0 {
			if point[i-1] != 0 {
				point[i-1] *= 1.05
			} else {
				point[i-1] = 0.00025
			}
		}
		simplex[i] = point
		values[i] = fn(point)
	}

	order := func() {
		idx := make([]int, n+1)
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
		newSimplex := make([][]float64, n+1)
		newValues := make([]float64, n+1)
		for i, j := range idx {
			newSimplex[i] = simplex[j]
			newValues[i] = values[j]
		}
		simplex, values = newSimplex, newValues
	}

	centroid := make([]float64, n)
	trial := make([]float64, n)

	for iter := 0; iter < maxIter; iter++ {
		order()

		if math.Abs(values[n]-values[0]) <= tol*(math.Abs(values[0])+tol) {
			break
		}

		// Centroid of all points except the worst.
		for j := 0; j < n; j++ {
			centroid[j] = 0
			for i := 0; i < n; i++ {
				centroid[j] += simplex[i][j]
			}
			centroid[j] /= float64(n)
		}

		// Reflection.
		for j := 0; j < n; j++ {
			trial[j] = centroid[j] + reflect*(centroid[j]-simplex[n][j])
		}
		reflected := fn(trial)

		switch {
		case reflected < values[0]:
			// Expansion.
			expanded := make([]float64, n)
			for j := 0; j < n; j++ {
				expanded[j] = centroid[j] + expand*(trial[j]-centroid[j])
			}
			if ev := fn(expanded); ev < reflected {
				copy(simplex[n], expanded)
				values[n] = ev
			} else {
				copy(simplex[n], trial)
				values[n] = reflected
			}
		case reflected < values[n-1]:
			copy(simplex[n], trial)
			values[n] = reflected
		default:
			// Contraction toward the better of worst/reflected.
			worst := simplex[n]
			worstValue := values[n]
			if reflected < worstValue {
				worst = trial
				worstValue = reflected
			}
			contracted := make([]float64, n)
			for j := 0; j < n; j++ {
				contracted[j] = centroid[j] + contract*(worst[j]-centroid[j])
			}
			if cv := fn(contracted); cv < worstValue {
				copy(simplex[n], contracted)
				values[n] = cv
			} else {
				// Shrink toward the best point.
				for i := 1; i <= n; i++ {
					for j := 0; j < n; j++ {
						simplex[i][j] = simplex[0][j] + shrink*(simplex[i][j]-simplex[0][j])
					}
					values[i] = fn(simplex[i])
				}
			}
		}
	}

	order()
	return simplex[0], values[0]
}
