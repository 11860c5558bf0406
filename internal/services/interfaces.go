package services

import (
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

// FeatureServiceInterface derives the per-customer feature table from raw
// transactions.
type FeatureServiceInterface interface {
	CaptureOnly(transactions []models.Transaction) []models.Transaction
	Extract(transactions []models.Transaction, periodEnd time.Time) []models.CustomerFeatures
}

// LifetimeValueServiceInterface fits the purchase and monetary models on a
// customer population and attaches per-customer predictions.
type LifetimeValueServiceInterface interface {
	Score(customers []models.CustomerFeatures) (*ScoredPopulation, error)
}

// SegmentationServiceInterface runs the clustering-based customer
// segmentation over the trailing observation window.
type SegmentationServiceInterface interface {
	Segment(transactions []models.Transaction) (*models.SegmentationResult, error)
}

// CohortServiceInterface builds monthly retention cohorts, optionally
// partitioned by a grouping dimension.
type CohortServiceInterface interface {
	Cohorts(transactions []models.Transaction, dimension string) (*models.CohortResult, error)
}

// ChurnServiceInterface computes monthly churn-rate series, optionally
// partitioned by a grouping dimension.
type ChurnServiceInterface interface {
	ChurnRates(transactions []models.Transaction, dimension string) (*models.ChurnResult, error)
}

// BenchmarkServiceInterface compares customer-base composition between a
// benchmark window and a target window across the values of a grouping
// dimension.
type BenchmarkServiceInterface interface {
	Benchmark(transactions []models.Transaction, dimension string, benchmark, target models.TimeWindow) (*models.BenchmarkResult, error)
}

// TransactionGeneratorInterface produces synthetic payment transactions for
// development and load seeding.
type TransactionGeneratorInterface interface {
	GenerateTransactions(count int) []models.Transaction
	GenerateTransactionsInWindow(count int, window models.TimeWindow) []models.Transaction
}
