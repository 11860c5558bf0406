package services

import (
	"fmt"
	"log/slog"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/lifetimes"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

// ScoredPopulation is a customer feature table with lifetime-value
// predictions attached, plus the fitted models that produced them. Monetary
// is nil when the population had too few repeat customers to fit it; every
// monetary prediction is then zero.
type ScoredPopulation struct {
	Customers []models.CustomerFeatures
	Purchase  *lifetimes.BetaGeoModel
	Monetary  *lifetimes.GammaGammaModel
}

type lifetimeValueService struct {
	horizonDays float64
	fitOpts     lifetimes.FitOptions
}

// NewLifetimeValueService creates the lifetime-value scorer from the
// analytics configuration.
func NewLifetimeValueService(cfg config.AnalyticsConfig) LifetimeValueServiceInterface {
	return &lifetimeValueService{
		horizonDays: cfg.HorizonDays,
		fitOpts: lifetimes.FitOptions{
			PenalizerCoef: cfg.PenalizerCoef,
			MaxIter:       cfg.FitMaxIter,
			Tol:           cfg.FitTol,
		},
	}
}

// Score fits the purchase model on the whole population and the monetary
// model on its repeat customers, then attaches p_alive, expected purchases,
// expected average value, CLV and pCLV to every customer. A purchase-model
// fit failure fails the whole scoring; a monetary-model failure degrades to
// zero monetary predictions.
func (s *lifetimeValueService) Score(customers []models.CustomerFeatures) (*ScoredPopulation, error) {
	frequency := make([]float64, len(customers))
	recency := make([]float64, len(customers))
	t := make([]float64, len(customers))
	for i, c := range customers {
		frequency[i] = c.Frequency
		recency[i] = c.Recency
		t[i] = c.T
	}

	purchase, err := lifetimes.FitBetaGeo(frequency, recency, t, s.fitOpts)
	if err != nil {
		slog.Warn("purchase model fit failed",
			"n_customers", len(customers),
			"error", err)
		return nil, fmt.Errorf("fitting purchase model: %w", err)
	}

	var repeatFrequency, repeatMonetary []float64
	for _, c := range customers {
		if c.IsRepeat() && c.MonetaryValue > 0 {
			repeatFrequency = append(repeatFrequency, c.Frequency)
			repeatMonetary = append(repeatMonetary, c.MonetaryValue)
		}
	}

	var monetary *lifetimes.GammaGammaModel
	if len(repeatFrequency) >= 2 {
		monetary, err = lifetimes.FitGammaGamma(repeatFrequency, repeatMonetary, s.fitOpts)
		if err != nil {
			slog.Warn("monetary model fit failed, monetary predictions default to zero",
				"n_repeat_customers", len(repeatFrequency),
				"error", err)
			monetary = nil
		}
	} else {
		slog.Info("too few repeat customers for the monetary model, predictions default to zero",
			"n_repeat_customers", len(repeatFrequency))
	}

	scored := make([]models.CustomerFeatures, len(customers))
	for i, c := range customers {
		c.PredictedPAlive = purchase.ProbabilityAlive(c.Frequency, c.Recency, c.T)
		c.PredictedF = purchase.ExpectedPurchases(s.horizonDays, c.Frequency, c.Recency, c.T)
		if monetary != nil {
			c.PredictedMAvg = monetary.ExpectedAverageValue(c.Frequency, c.MonetaryValue)
		}
		c.CLV = c.PredictedF * c.PredictedMAvg
		c.PCLV = c.PredictedPAlive * c.CLV
		scored[i] = c
	}

	return &ScoredPopulation{
		Customers: scored,
		Purchase:  purchase,
		Monetary:  monetary,
	}, nil
}
