package services

import (
	"fmt"
	"log/slog"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

// noFilterGroup labels the single group of an ungrouped run.
const noFilterGroup = "no filter"

type cohortService struct {
	features FeatureServiceInterface
}

// NewCohortService creates the retention-cohort engine.
func NewCohortService(features FeatureServiceInterface) CohortServiceInterface {
	return &cohortService{features: features}
}

// Cohorts forms one cohort per calendar month out of the customers whose
// first capture ever fell in that month, then tracks how many of them come
// back in each later month of the range. Formation months come from the
// full transaction set even when the analysis is partitioned, so a customer
// acquired through one merchant never counts as new under another.
func (s *cohortService) Cohorts(transactions []models.Transaction, dimension string) (*models.CohortResult, error) {
	if !models.ValidGroupDimension(dimension) {
		return nil, fmt.Errorf("cohort analysis: %w: %q", models.ErrInvalidGroupDimension, dimension)
	}

	captures := s.features.CaptureOnly(transactions)
	if len(captures) == 0 {
		return &models.CohortResult{HasData: false}, nil
	}

	formationMonth := make(map[string]int, len(captures))
	for _, tx := range captures {
		key := monthKey(tx.OccurredAt)
		if existing, ok := formationMonth[tx.CustomerID]; !ok || key < existing {
			formationMonth[tx.CustomerID] = key
		}
	}

	groups, err := partitionByDimension(captures, dimension)
	if err != nil {
		return nil, err
	}

	result := &models.CohortResult{HasData: true}
	for _, g := range groups {
		result.Groups = append(result.Groups, models.CohortGroup{
			FilterValue: g.value,
			Cohorts:     buildCohorts(g.transactions, formationMonth),
		})
	}

	slog.Info("cohort analysis completed",
		"dimension", dimension,
		"n_groups", len(result.Groups),
		"n_transactions", len(captures))

	return result, nil
}

// buildCohorts walks the month range of the group and derives each month's
// cohort: its first-time customers, the per-month returning counts, and the
// cumulative retention built from the union of all later activity. Seen in
// month m+3 counts toward the cumulative share at m+2 as well.
func buildCohorts(transactions []models.Transaction, formationMonth map[string]int) []models.Cohort {
	minDate, maxDate := transactionDateRange(transactions)
	months := monthRange(minDate, maxDate)

	activity := make(map[int]map[string]bool, len(months))
	for _, tx := range transactions {
		key := monthKey(tx.OccurredAt)
		if activity[key] == nil {
			activity[key] = make(map[string]bool)
		}
		activity[key][tx.CustomerID] = true
	}

	cohorts := make([]models.Cohort, 0, len(months))
	for i, m := range months {
		members := make(map[string]bool)
		for customerID := range activity[m] {
			if formationMonth[customerID] == m {
				members[customerID] = true
			}
		}
		size := len(members)

		later := months[i+1:]
		returning := make([]map[string]bool, len(later))
		for j, lm := range later {
			back := make(map[string]bool)
			for customerID := range activity[lm] {
				if members[customerID] {
					back[customerID] = true
				}
			}
			returning[j] = back
		}

		cohort := models.Cohort{
			FormationMonth:    cohortMonthLabel(m),
			Size:              size,
			Months:            make([]string, 0, len(later)+1),
			CustomersPerMonth: make([]int, 0, len(later)+1),
			Percents:          make([]float64, 0, len(later)+1),
			PercentsCum:       make([]float64, 0, len(later)+1),
		}
		cohort.Months = append(cohort.Months, cohortMonthLabel(m))
		cohort.CustomersPerMonth = append(cohort.CustomersPerMonth, size)
		cohort.Percents = append(cohort.Percents, 1.0)
		cohort.PercentsCum = append(cohort.PercentsCum, 1.0)

		for j, lm := range later {
			cohort.Months = append(cohort.Months, cohortMonthLabel(lm))
			cohort.CustomersPerMonth = append(cohort.CustomersPerMonth, len(returning[j]))
			cohort.Percents = append(cohort.Percents, cohortShare(len(returning[j]), size))
		}

		// Cumulative retention is the union of activity from each month
		// onward, built backwards so every customer counts once per tail.
		cumulative := make([]float64, len(later))
		union := make(map[string]bool)
		for j := len(later) - 1; j >= 0; j-- {
			for customerID := range returning[j] {
				union[customerID] = true
			}
			cumulative[j] = cohortShare(len(union), size)
		}
		cohort.PercentsCum = append(cohort.PercentsCum, cumulative...)

		cohorts = append(cohorts, cohort)
	}
	return cohorts
}

func cohortShare(count, size int) float64 {
	if size == 0 {
		return 0
	}
	return float64(count) / float64(size)
}

// cohortMonthLabel renders a month key as "6-2017".
func cohortMonthLabel(key int) string {
	t := monthKeyTime(key)
	return fmt.Sprintf("%d-%d", int(t.Month()), t.Year())
}

type transactionGroup struct {
	value        string
	transactions []models.Transaction
}

// partitionByDimension splits transactions by their grouping-dimension
// value, groups ordered by first appearance. An empty dimension yields one
// group holding everything.
func partitionByDimension(transactions []models.Transaction, dimension string) ([]transactionGroup, error) {
	if dimension == models.GroupByNone {
		return []transactionGroup{{value: noFilterGroup, transactions: transactions}}, nil
	}

	index := make(map[string]int)
	var groups []transactionGroup
	for _, tx := range transactions {
		value, err := tx.GroupValue(dimension)
		if err != nil {
			return nil, err
		}
		i, ok := index[value]
		if !ok {
			i = len(groups)
			index[value] = i
			groups = append(groups, transactionGroup{value: value})
		}
		groups[i].transactions = append(groups[i].transactions, tx)
	}
	return groups, nil
}
