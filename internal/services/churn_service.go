package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

type churnService struct {
	features FeatureServiceInterface
	cfg      config.AnalyticsConfig
}

// NewChurnService creates the churn-rate engine.
func NewChurnService(features FeatureServiceInterface, cfg config.AnalyticsConfig) ChurnServiceInterface {
	return &churnService{features: features, cfg: cfg}
}

// ChurnRates computes the observed churn rate at a sequence of month-end
// boundaries, per grouping value. The boundaries cover the trailing
// ChurnBoundaries months of each group's own data range, clamped to the
// months the group actually has.
//
// At a boundary, the reference population is the survivors: customers who
// transacted before the boundary and transact again after it. Churned are
// those whose last transaction fell in the month just ended while their
// history started before that month. A boundary with no survivors reports 0.
func (s *churnService) ChurnRates(transactions []models.Transaction, dimension string) (*models.ChurnResult, error) {
	if !models.ValidGroupDimension(dimension) {
		return nil, fmt.Errorf("churn analysis: %w: %q", models.ErrInvalidGroupDimension, dimension)
	}

	captures := s.features.CaptureOnly(transactions)
	if len(captures) == 0 {
		return &models.ChurnResult{HasData: false}, nil
	}

	groups, err := partitionByDimension(captures, dimension)
	if err != nil {
		return nil, err
	}

	result := &models.ChurnResult{HasData: true}
	for _, g := range groups {
		result.Series = append(result.Series, s.groupSeries(g))
	}

	slog.Info("churn analysis completed",
		"dimension", dimension,
		"n_groups", len(result.Series),
		"n_transactions", len(captures))

	return result, nil
}

func (s *churnService) groupSeries(g transactionGroup) models.ChurnSeries {
	first := make(map[string]time.Time)
	last := make(map[string]time.Time)
	for _, tx := range g.transactions {
		if t, ok := first[tx.CustomerID]; !ok || tx.OccurredAt.Before(t) {
			first[tx.CustomerID] = tx.OccurredAt
		}
		if t, ok := last[tx.CustomerID]; !ok || tx.OccurredAt.After(t) {
			last[tx.CustomerID] = tx.OccurredAt
		}
	}

	minDate, maxDate := transactionDateRange(g.transactions)
	months := boundaryMonths(minDate, maxDate, s.cfg.ChurnBoundaries)

	series := models.ChurnSeries{
		FilterValue: g.value,
		Months:      make([]string, 0, len(months)),
		Rates:       make([]float64, 0, len(months)),
	}

	prev := monthKeyTime(months[0])
	for _, m := range months {
		boundary := monthKeyTime(m + 1)
		series.Months = append(series.Months, cohortMonthLabel(m))
		series.Rates = append(series.Rates, churnRateAt(first, last, prev, boundary))
		prev = boundary
	}
	return series
}

// churnRateAt evaluates one boundary. prev is the previous boundary and
// boundary the exclusive end of the month under evaluation.
func churnRateAt(first, last map[string]time.Time, prev, boundary time.Time) float64 {
	var survivors, churned int
	for customerID, firstTx := range first {
		lastTx := last[customerID]
		if firstTx.Before(boundary) && !lastTx.Before(boundary) {
			survivors++
		}
		if lastTx.Before(boundary) && !lastTx.Before(prev) && firstTx.Before(prev) {
			churned++
		}
	}
	if survivors == 0 {
		return 0
	}
	return float64(churned) / float64(survivors)
}

// boundaryMonths returns the trailing n month keys of [minDate, maxDate],
// oldest first.
func boundaryMonths(minDate, maxDate time.Time, n int) []int {
	end := monthKey(maxDate)
	start := end - (n - 1)
	if earliest := monthKey(minDate); start < earliest {
		start = earliest
	}
	months := make([]int, 0, end-start+1)
	for m := start; m <= end; m++ {
		months = append(months, m)
	}
	return months
}
