package services

import (
	"testing"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

var testBase = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// testTransaction builds a capture at testBase+days with the given amount.
func testTransaction(customerID string, days int, amount float64) models.Transaction {
	return models.Transaction{
		ID:              uuid.New(),
		CustomerID:      customerID,
		OccurredAt:      testBase.AddDate(0, 0, days),
		Amount:          decimal.NewFromFloat(amount),
		IsCapture:       true,
		MerchantAccount: "ACME-001",
		MerchantName:    "Acme Shop",
		OrgUnit:         "Retail Europe",
		MerchantCountry: "DE",
	}
}

type FeatureServiceTestSuite struct {
	suite.Suite
	service FeatureServiceInterface
}

func (s *FeatureServiceTestSuite) SetupTest() {
	s.service = NewFeatureService()
}

func TestFeatureServiceSuite(t *testing.T) {
	suite.Run(t, new(FeatureServiceTestSuite))
}

func (s *FeatureServiceTestSuite) TestCaptureOnlyFiltersRefusalsAndReturns() {
	refused := testTransaction("c1", 0, 10)
	refused.IsCapture = false
	returned := testTransaction("c1", 1, 10)
	returned.IsReturn = true

	captures := s.service.CaptureOnly([]models.Transaction{
		refused,
		returned,
		testTransaction("c1", 2, 10),
	})

	s.Len(captures, 1)
	s.Equal("c1", captures[0].CustomerID)
}

func (s *FeatureServiceTestSuite) TestExtractSingleCustomer() {
	end := testBase.AddDate(0, 0, 30)
	features := s.service.Extract([]models.Transaction{
		testTransaction("c1", 0, 100),
		testTransaction("c1", 10, 50),
		testTransaction("c1", 20, 30),
	}, end)

	s.Require().Len(features, 1)
	c := features[0]
	s.Equal(3, c.NTransactions)
	s.InDelta(180.0, c.TotalSpending, 1e-9)
	s.InDelta(60.0, c.AvgSpending, 1e-9)
	s.InDelta(2.0, c.Frequency, 1e-9)
	s.InDelta(20.0, c.Recency, 1e-9)
	s.InDelta(30.0, c.T, 1e-9)
	s.InDelta(90.0, c.MonetaryValue, 1e-9)
}

func (s *FeatureServiceTestSuite) TestOneTimeCustomerHasZeroFrequencyAndMonetaryValue() {
	features := s.service.Extract([]models.Transaction{
		testTransaction("c1", 0, 100),
	}, testBase.AddDate(0, 0, 10))

	s.Require().Len(features, 1)
	s.Zero(features[0].Frequency)
	s.Zero(features[0].Recency)
	s.Zero(features[0].MonetaryValue)
	s.False(features[0].IsRepeat())
}

func (s *FeatureServiceTestSuite) TestRecencyNeverExceedsAge() {
	txs := []models.Transaction{
		testTransaction("c1", 0, 10),
		testTransaction("c1", 45, 20),
		testTransaction("c2", 3, 15),
		testTransaction("c2", 7, 15),
		testTransaction("c2", 60, 15),
		testTransaction("c3", 12, 99),
	}
	features := s.service.Extract(txs, testBase.AddDate(0, 0, 90))

	s.Require().Len(features, 3)
	for _, c := range features {
		s.LessOrEqual(c.Recency, c.T, "customer %s", c.CustomerID)
		s.Equal(float64(c.NTransactions-1), c.Frequency, "customer %s", c.CustomerID)
		s.GreaterOrEqual(c.Frequency, 0.0)
	}
}

func (s *FeatureServiceTestSuite) TestExtractIsIdempotent() {
	txs := []models.Transaction{
		testTransaction("c2", 5, 20),
		testTransaction("c1", 0, 10),
		testTransaction("c2", 15, 25),
	}
	end := testBase.AddDate(0, 0, 30)

	first := s.service.Extract(txs, end)
	second := s.service.Extract(txs, end)

	s.Equal(first, second)
}

func (s *FeatureServiceTestSuite) TestExtractOrdersByCustomerID() {
	features := s.service.Extract([]models.Transaction{
		testTransaction("zeta", 0, 10),
		testTransaction("alpha", 1, 10),
		testTransaction("mid", 2, 10),
	}, testBase.AddDate(0, 0, 10))

	s.Require().Len(features, 3)
	s.Equal("alpha", features[0].CustomerID)
	s.Equal("mid", features[1].CustomerID)
	s.Equal("zeta", features[2].CustomerID)
}

func (s *FeatureServiceTestSuite) TestExtractEmptyInput() {
	features := s.service.Extract(nil, testBase)
	s.Empty(features)
}
