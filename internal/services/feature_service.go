package services

import (
	"sort"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/shopspring/decimal"
)

const hoursPerDay = 24.0

type featureService struct{}

// NewFeatureService creates the customer feature extractor.
func NewFeatureService() FeatureServiceInterface {
	return &featureService{}
}

// CaptureOnly filters the input down to captured payments. Refusals,
// authorizations without capture and returns never enter an analysis.
func (s *featureService) CaptureOnly(transactions []models.Transaction) []models.Transaction {
	captures := make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if tx.IsCapture && !tx.IsReturn {
			captures = append(captures, tx)
		}
	}
	return captures
}

type customerAccumulator struct {
	first models.Transaction
	last  models.Transaction
	count int
	total decimal.Decimal
}

// Extract groups transactions by customer and derives the feature row of
// each: transaction count, spending totals and the frequency/recency/T
// triple against the given period end. Customers come back ordered by ID so
// repeated runs over the same input produce the same table.
func (s *featureService) Extract(transactions []models.Transaction, periodEnd time.Time) []models.CustomerFeatures {
	if len(transactions) == 0 {
		return []models.CustomerFeatures{}
	}

	accumulators := make(map[string]*customerAccumulator)
	for _, tx := range transactions {
		acc, ok := accumulators[tx.CustomerID]
		if !ok {
			accumulators[tx.CustomerID] = &customerAccumulator{
				first: tx,
				last:  tx,
				count: 1,
				total: tx.Amount,
			}
			continue
		}
		acc.count++
		acc.total = acc.total.Add(tx.Amount)
		if tx.OccurredAt.Before(acc.first.OccurredAt) {
			acc.first = tx
		}
		if tx.OccurredAt.After(acc.last.OccurredAt) {
			acc.last = tx
		}
	}

	customerIDs := make([]string, 0, len(accumulators))
	for id := range accumulators {
		customerIDs = append(customerIDs, id)
	}
	sort.Strings(customerIDs)

	features := make([]models.CustomerFeatures, 0, len(customerIDs))
	for _, id := range customerIDs {
		acc := accumulators[id]
		total := acc.total.InexactFloat64()
		frequency := float64(acc.count - 1)

		row := models.CustomerFeatures{
			CustomerID:           id,
			CustomerName:         acc.first.CustomerName,
			CustomerEmail:        acc.first.CustomerEmail,
			CustomerCity:         acc.first.CustomerCity,
			MerchantCountry:      acc.first.MerchantCountry,
			FirstTransactionDate: acc.first.OccurredAt,
			LastTransactionDate:  acc.last.OccurredAt,
			NTransactions:        acc.count,
			TotalSpending:        total,
			AvgSpending:          total / float64(acc.count),
			Frequency:            frequency,
			Recency:              daysBetween(acc.first.OccurredAt, acc.last.OccurredAt),
			T:                    daysBetween(acc.first.OccurredAt, periodEnd),
		}
		if frequency > 0 {
			row.MonetaryValue = total / frequency
		}
		features = append(features, row)
	}
	return features
}

func daysBetween(from, to time.Time) float64 {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from).Hours() / hoursPerDay
}
