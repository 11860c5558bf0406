package services

import (
	"math/rand"
	"testing"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/stretchr/testify/suite"
)

type BenchmarkServiceTestSuite struct {
	suite.Suite
	service BenchmarkServiceInterface
}

func (s *BenchmarkServiceTestSuite) SetupTest() {
	features := NewFeatureService()
	s.service = NewBenchmarkService(features, NewLifetimeValueService(config.Load().Analytics))
}

func TestBenchmarkServiceSuite(t *testing.T) {
	suite.Run(t, new(BenchmarkServiceTestSuite))
}

func (s *BenchmarkServiceTestSuite) window(startDays, endDays int) models.TimeWindow {
	return models.TimeWindow{
		Start: testBase.AddDate(0, 0, startDays),
		End:   testBase.AddDate(0, 0, endDays),
	}
}

// benchmarkTransactions builds two merchant accounts with activity in the
// first half year; the second account goes quiet after day 90.
func (s *BenchmarkServiceTestSuite) benchmarkTransactions() []models.Transaction {
	rng := rand.New(rand.NewSource(7))
	var txs []models.Transaction
	for i := 0; i < 40; i++ {
		id := "bm-" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		n := 2 + rng.Intn(8)
		day := rng.Intn(30)
		for j := 0; j < n; j++ {
			if day > 181 {
				break
			}
			tx := testTransaction(id, day, 15+rng.Float64()*60)
			if i%3 == 0 {
				tx.MerchantAccount = "QUIET-001"
				if day > 90 {
					tx.OccurredAt = testBase.AddDate(0, 0, rng.Intn(90))
				}
			}
			txs = append(txs, tx)
			day += 4 + rng.Intn(20)
		}
	}
	return txs
}

func (s *BenchmarkServiceTestSuite) TestFilterAxisEndsWithAll() {
	result, err := s.service.Benchmark(
		s.benchmarkTransactions(),
		models.GroupByMerchantAccount,
		s.window(0, 90),
		s.window(91, 181),
	)
	s.Require().NoError(err)
	s.Require().True(result.HasData)

	s.Require().NotEmpty(result.FilterValues)
	s.Equal("ALL", result.FilterValues[len(result.FilterValues)-1])
	s.Equal("All merchant_accounts", result.FilterLabels[len(result.FilterLabels)-1])
	s.Len(result.Benchmark.Analyses, len(result.FilterValues))
	s.Len(result.Target.Analyses, len(result.FilterValues))
}

func (s *BenchmarkServiceTestSuite) TestMarketSharesSumToOne() {
	result, err := s.service.Benchmark(
		s.benchmarkTransactions(),
		models.GroupByMerchantAccount,
		s.window(0, 90),
		s.window(91, 181),
	)
	s.Require().NoError(err)

	var share float64
	for _, a := range result.Benchmark.Analyses {
		if a.FilterValue == "ALL" {
			s.InDelta(1.0, a.MarketShare, 1e-9)
			continue
		}
		share += a.MarketShare
	}
	s.InDelta(1.0, share, 1e-3)
}

// Shares are reported at four decimals, the same way the monetary fields are
// reported at two.
func (s *BenchmarkServiceTestSuite) TestSharesAreRoundedToFourDecimals() {
	result, err := s.service.Benchmark(
		s.benchmarkTransactions(),
		models.GroupByMerchantAccount,
		s.window(0, 90),
		s.window(91, 181),
	)
	s.Require().NoError(err)

	for _, a := range result.Benchmark.Analyses {
		s.Equal(round4(a.MarketShare), a.MarketShare, "filter %s", a.FilterValue)
		s.Equal(round4(a.OneTime.Pct), a.OneTime.Pct, "filter %s", a.FilterValue)
		s.Equal(round4(a.Repeating.Pct), a.Repeating.Pct, "filter %s", a.FilterValue)
	}
}

func (s *BenchmarkServiceTestSuite) TestBucketsPartitionTheCustomers() {
	result, err := s.service.Benchmark(
		s.benchmarkTransactions(),
		models.GroupByMerchantAccount,
		s.window(0, 90),
		s.window(91, 181),
	)
	s.Require().NoError(err)

	for _, a := range result.Benchmark.Analyses {
		if a.NCustomers == 0 {
			continue
		}
		s.Equal(a.NCustomers, a.OneTime.Count+a.Repeating.Count,
			"filter %s", a.FilterValue)
		s.Equal(a.Repeating.Count, a.Active.Count+a.Lost.Count,
			"filter %s", a.FilterValue)
		s.Equal(a.Active.Count, a.Churning.Count+a.Retained.Count,
			"filter %s", a.FilterValue)
		s.InDelta(1.0, a.OneTime.Pct+a.Repeating.Pct, 1e-3)
	}
}

// A grouping value with no sales in the window short-circuits to the zero
// record; market share stays 0 even when total revenue is 0 too.
func (s *BenchmarkServiceTestSuite) TestZeroRevenueSliceShortCircuits() {
	result, err := s.service.Benchmark(
		s.benchmarkTransactions(),
		models.GroupByMerchantAccount,
		s.window(0, 90),
		s.window(200, 290),
	)
	s.Require().NoError(err)

	for _, a := range result.Target.Analyses {
		s.Zero(a.Revenue, "filter %s", a.FilterValue)
		s.Zero(a.MarketShare, "filter %s", a.FilterValue)
		s.Zero(a.NCustomers, "filter %s", a.FilterValue)
		s.Zero(a.OneTime.Count, "filter %s", a.FilterValue)
		s.Zero(a.Retained.CLV, "filter %s", a.FilterValue)
	}
}

func (s *BenchmarkServiceTestSuite) TestDimensionRequired() {
	_, err := s.service.Benchmark(s.benchmarkTransactions(), models.GroupByNone, s.window(0, 90), s.window(91, 181))
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrInvalidGroupDimension)
}

func (s *BenchmarkServiceTestSuite) TestMalformedWindowRejected() {
	_, err := s.service.Benchmark(s.benchmarkTransactions(), models.GroupByMerchantAccount, s.window(90, 0), s.window(91, 181))
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrInvalidTimeWindow)

	_, err = s.service.Benchmark(s.benchmarkTransactions(), models.GroupByMerchantAccount, s.window(0, 90), models.TimeWindow{Start: testBase})
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrInvalidTimeWindow)
}

func (s *BenchmarkServiceTestSuite) TestNoCapturesYieldsSentinel() {
	refused := testTransaction("c1", 0, 10)
	refused.IsCapture = false

	result, err := s.service.Benchmark([]models.Transaction{refused}, models.GroupByMerchantAccount, s.window(0, 90), s.window(91, 181))
	s.Require().NoError(err)
	s.False(result.HasData)
}
