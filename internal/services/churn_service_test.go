package services

import (
	"testing"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/stretchr/testify/suite"
)

type ChurnServiceTestSuite struct {
	suite.Suite
	service ChurnServiceInterface
}

func (s *ChurnServiceTestSuite) SetupTest() {
	s.service = NewChurnService(NewFeatureService(), config.Load().Analytics)
}

func TestChurnServiceSuite(t *testing.T) {
	suite.Run(t, new(ChurnServiceTestSuite))
}

func (s *ChurnServiceTestSuite) TestBoundariesFollowDataRange() {
	txs := []models.Transaction{
		monthTransaction("A", time.January, 10),
		monthTransaction("A", time.April, 10),
	}

	result, err := s.service.ChurnRates(txs, models.GroupByNone)
	s.Require().NoError(err)
	s.Require().True(result.HasData)
	s.Require().Len(result.Series, 1)

	series := result.Series[0]
	s.Equal("no filter", series.FilterValue)
	s.Equal([]string{"1-2024", "2-2024", "3-2024", "4-2024"}, series.Months)
	s.Len(series.Rates, 4)
}

// One established customer stops in March while another keeps buying. At
// the March boundary the stopped customer churns against one survivor.
func (s *ChurnServiceTestSuite) TestEstablishedCustomerChurns() {
	txs := []models.Transaction{
		monthTransaction("stopper", time.January, 10),
		monthTransaction("stopper", time.March, 10),
		monthTransaction("stayer", time.January, 10),
		monthTransaction("stayer", time.February, 10),
		monthTransaction("stayer", time.June, 10),
	}

	result, err := s.service.ChurnRates(txs, models.GroupByNone)
	s.Require().NoError(err)
	series := result.Series[0]
	s.Require().Equal([]string{"1-2024", "2-2024", "3-2024", "4-2024", "5-2024", "6-2024"}, series.Months)

	// March: stopper's last purchase fell inside the month and their
	// history began before it; stayer survives past the boundary.
	s.InDelta(1.0, series.Rates[2], 1e-9)
	// No boundary before March sees an established customer stop.
	s.Zero(series.Rates[0])
	s.Zero(series.Rates[1])
}

// A boundary where nobody survives past it reports 0, never a division
// error.
func (s *ChurnServiceTestSuite) TestZeroSurvivorsReportsZero() {
	txs := []models.Transaction{
		monthTransaction("A", time.January, 10),
		monthTransaction("B", time.January, 10),
	}

	result, err := s.service.ChurnRates(txs, models.GroupByNone)
	s.Require().NoError(err)
	series := result.Series[0]
	s.Require().Len(series.Rates, 1)
	s.Zero(series.Rates[0])
}

func (s *ChurnServiceTestSuite) TestGroupedSeries() {
	other := monthTransaction("B", time.February, 10)
	other.MerchantAccount = "OTHER-001"
	txs := []models.Transaction{
		monthTransaction("A", time.January, 10),
		monthTransaction("A", time.February, 10),
		other,
	}

	result, err := s.service.ChurnRates(txs, models.GroupByMerchantAccount)
	s.Require().NoError(err)
	s.Require().Len(result.Series, 2)
	s.Equal("ACME-001", result.Series[0].FilterValue)
	s.Equal("OTHER-001", result.Series[1].FilterValue)
	s.Equal([]string{"2-2024"}, result.Series[1].Months)
}

func (s *ChurnServiceTestSuite) TestInvalidDimensionRejected() {
	_, err := s.service.ChurnRates([]models.Transaction{monthTransaction("A", time.January, 10)}, "weekday")
	s.Require().Error(err)
	s.ErrorIs(err, models.ErrInvalidGroupDimension)
}

func (s *ChurnServiceTestSuite) TestNoTransactionsYieldsSentinel() {
	result, err := s.service.ChurnRates(nil, models.GroupByNone)
	s.Require().NoError(err)
	s.False(result.HasData)
	s.Empty(result.Series)
}
