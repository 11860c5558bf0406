package services

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

// allFilterValue is the synthetic aggregate appended after the real
// grouping values.
const allFilterValue = "ALL"

type benchmarkService struct {
	features FeatureServiceInterface
	ltv      LifetimeValueServiceInterface
}

// NewBenchmarkService creates the two-window benchmarking comparator.
func NewBenchmarkService(features FeatureServiceInterface, ltv LifetimeValueServiceInterface) BenchmarkServiceInterface {
	return &benchmarkService{features: features, ltv: ltv}
}

// Benchmark analyzes the benchmark and target windows independently: per
// grouping value it measures volume, revenue and market share, scores the
// window's customers with the lifetime-value models and buckets them into
// one-time/repeating and active/lost/churning/retained. Cross-window deltas
// are left to the report-rendering layer.
func (s *benchmarkService) Benchmark(
	transactions []models.Transaction,
	dimension string,
	benchmark, target models.TimeWindow,
) (*models.BenchmarkResult, error) {
	if dimension == models.GroupByNone || !models.ValidGroupDimension(dimension) {
		return nil, fmt.Errorf("benchmarking: %w: %q", models.ErrInvalidGroupDimension, dimension)
	}
	if !benchmark.Valid() {
		return nil, fmt.Errorf("benchmarking: benchmark window: %w", models.ErrInvalidTimeWindow)
	}
	if !target.Valid() {
		return nil, fmt.Errorf("benchmarking: target window: %w", models.ErrInvalidTimeWindow)
	}

	captures := s.features.CaptureOnly(transactions)
	if len(captures) == 0 {
		return &models.BenchmarkResult{HasData: false}, nil
	}

	values, labels, err := filterAxis(captures, dimension)
	if err != nil {
		return nil, err
	}

	result := &models.BenchmarkResult{
		HasData:         true,
		FilterDimension: dimension,
		FilterValues:    values,
		FilterLabels:    labels,
	}
	result.Benchmark = s.analyzeWindow(captures, dimension, values, labels, benchmark)
	result.Target = s.analyzeWindow(captures, dimension, values, labels, target)

	slog.Info("benchmarking completed",
		"dimension", dimension,
		"n_filter_values", len(values),
		"benchmark_start", result.Benchmark.PeriodStart,
		"target_start", result.Target.PeriodStart)

	return result, nil
}

// filterAxis derives the sorted grouping values of the transaction set and
// appends the "ALL" aggregate.
func filterAxis(transactions []models.Transaction, dimension string) ([]string, []string, error) {
	seen := make(map[string]bool)
	var values []string
	for _, tx := range transactions {
		v, err := tx.GroupValue(dimension)
		if err != nil {
			return nil, nil, err
		}
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	sort.Strings(values)

	labels := make([]string, len(values))
	copy(labels, values)

	values = append(values, allFilterValue)
	labels = append(labels, "All "+dimension+"s")
	return values, labels, nil
}

func (s *benchmarkService) analyzeWindow(
	captures []models.Transaction,
	dimension string,
	values, labels []string,
	window models.TimeWindow,
) models.BenchmarkWindow {
	windowTxs := make([]models.Transaction, 0, len(captures))
	var totalRevenue float64
	for _, tx := range captures {
		if window.Contains(tx.OccurredAt) {
			windowTxs = append(windowTxs, tx)
			totalRevenue += tx.Amount.InexactFloat64()
		}
	}

	out := models.BenchmarkWindow{
		PeriodStart: window.Start.Format(dateLayout),
		PeriodEnd:   window.End.Format(dateLayout),
		Analyses:    make([]models.FilterAnalysis, 0, len(values)),
	}

	for i, value := range values {
		txs := windowTxs
		if value != allFilterValue {
			txs = make([]models.Transaction, 0, len(windowTxs))
			for _, tx := range windowTxs {
				if v, _ := tx.GroupValue(dimension); v == value {
					txs = append(txs, tx)
				}
			}
		}
		out.Analyses = append(out.Analyses, s.analyzeSlice(txs, value, labels[i], totalRevenue, window))
	}
	return out
}

// analyzeSlice produces the per-filter record of one window slice. Every
// degenerate case (no revenue, no customers, model-fit failure, no repeat
// customers) falls back to the zero record with only the measured volume
// fields kept where the original data supports them.
func (s *benchmarkService) analyzeSlice(
	txs []models.Transaction,
	value, label string,
	totalRevenue float64,
	window models.TimeWindow,
) models.FilterAnalysis {
	record := models.NewZeroFilterAnalysis(value, label)

	var revenue float64
	for _, tx := range txs {
		revenue += tx.Amount.InexactFloat64()
	}
	record.NTransactions = len(txs)
	record.Revenue = round2(revenue)
	if totalRevenue > 0 {
		record.MarketShare = round4(revenue / totalRevenue)
	}

	if revenue == 0 {
		return record
	}

	customers := s.features.Extract(txs, window.End)
	if len(customers) == 0 {
		return record
	}

	scored, err := s.ltv.Score(customers)
	if err != nil {
		slog.Warn("benchmarking slice degraded to zero record",
			"filter_value", value,
			"error", err)
		return record
	}

	record.NCustomers = len(scored.Customers)

	var oneTime, repeating, active, lost, churning, retained []models.CustomerFeatures
	for _, c := range scored.Customers {
		if !c.IsRepeat() {
			oneTime = append(oneTime, c)
			continue
		}
		repeating = append(repeating, c)
		if !models.IsActivePAlive(c.PredictedPAlive) {
			lost = append(lost, c)
			continue
		}
		active = append(active, c)
		if models.IsChurningPAlive(c.PredictedPAlive) {
			churning = append(churning, c)
		} else {
			retained = append(retained, c)
		}
	}

	total := len(scored.Customers)
	record.OneTime = bucketOf(oneTime, total)
	record.Repeating = bucketOf(repeating, total)
	if len(repeating) > 0 {
		record.Active = bucketOf(active, total)
		record.Lost = bucketOf(lost, total)
		if len(active) > 0 {
			record.Churning = bucketOf(churning, total)
			record.Retained = bucketOf(retained, total)
		}
	}
	return record
}

func bucketOf(members []models.CustomerFeatures, totalCustomers int) models.CustomerBucket {
	bucket := models.CustomerBucket{Count: len(members)}
	if totalCustomers > 0 {
		bucket.Pct = round4(float64(len(members)) / float64(totalCustomers))
	}
	for _, c := range members {
		bucket.TotalSpending += c.TotalSpending
		bucket.CLV += c.CLV
		bucket.PCLV += c.PCLV
	}
	bucket.TotalSpending = round2(bucket.TotalSpending)
	bucket.CLV = round2(bucket.CLV)
	bucket.PCLV = round2(bucket.PCLV)
	return bucket
}
