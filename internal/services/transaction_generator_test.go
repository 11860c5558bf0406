package services

import (
	"testing"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/stretchr/testify/suite"
)

type TransactionGeneratorTestSuite struct {
	suite.Suite
	generator TransactionGeneratorInterface
}

func (s *TransactionGeneratorTestSuite) SetupTest() {
	s.generator = NewTransactionGenerator()
}

func TestTransactionGeneratorSuite(t *testing.T) {
	suite.Run(t, new(TransactionGeneratorTestSuite))
}

func (s *TransactionGeneratorTestSuite) TestGeneratesRequestedCount() {
	txs := s.generator.GenerateTransactions(500)
	s.Len(txs, 500)
}

func (s *TransactionGeneratorTestSuite) TestTransactionsStayInWindow() {
	window := models.TimeWindow{
		Start: testBase,
		End:   testBase.AddDate(0, 6, 0),
	}
	txs := s.generator.GenerateTransactionsInWindow(300, window)

	s.Require().Len(txs, 300)
	for _, tx := range txs {
		s.True(window.Contains(tx.OccurredAt), "transaction at %s outside window", tx.OccurredAt)
		s.False(tx.Amount.IsNegative())
		s.NotEmpty(tx.CustomerID)
		s.NotEmpty(tx.MerchantAccount)
		s.NotEmpty(tx.MerchantCountry)
	}
}

func (s *TransactionGeneratorTestSuite) TestPopulationContainsRepeatCustomers() {
	txs := s.generator.GenerateTransactions(600)

	perCustomer := make(map[string]int)
	for _, tx := range txs {
		perCustomer[tx.CustomerID]++
	}

	var repeaters int
	for _, n := range perCustomer {
		if n > 1 {
			repeaters++
		}
	}
	s.Greater(repeaters, 0, "expected at least one repeat customer")
	s.Greater(len(perCustomer), 1)
}

func (s *TransactionGeneratorTestSuite) TestMostTransactionsAreCaptures() {
	txs := s.generator.GenerateTransactions(1000)

	var captures int
	for _, tx := range txs {
		if tx.IsCapture {
			captures++
		}
	}
	s.Greater(captures, 800)
	s.Less(captures, 1000)
}

func (s *TransactionGeneratorTestSuite) TestZeroCountYieldsEmptySlice() {
	s.Empty(s.generator.GenerateTransactions(0))
}
