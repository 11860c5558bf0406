package handlers

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/database"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/repositories"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// noopMetrics satisfies the metrics recorder without touching the global
// Prometheus registry, which only tolerates one registration per process.
type noopMetrics struct{}

func (noopMetrics) RecordAnalysis(analysis, status string, duration time.Duration) {}
func (noopMetrics) RecordPopulationSize(analysis string, nCustomers int)           {}
func (noopMetrics) RecordIngestedTransactions(count int)                           {}
func (noopMetrics) RecordIngestRejected(reason string, count int)                  {}
func (noopMetrics) SetStoredTransactions(count int64)                              {}

var handlerTestBase = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type AnalyticsHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	db      *database.DB
	repo    repositories.TransactionRepositoryInterface
	handler *AnalyticsHandler
}

func (s *AnalyticsHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.Validator = NewValidator()

	s.db = database.SetupTestDB(s.T())
	s.repo = repositories.NewTransactionRepository(s.db.DB)

	cfg := config.Load().Analytics
	features := services.NewFeatureService()
	ltv := services.NewLifetimeValueService(cfg)

	s.handler = NewAnalyticsHandler(
		s.repo,
		services.NewSegmentationService(features, ltv, cfg),
		services.NewCohortService(features),
		services.NewChurnService(features, cfg),
		services.NewBenchmarkService(features, ltv),
		noopMetrics{},
	)
}

func (s *AnalyticsHandlerTestSuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func TestAnalyticsHandlerSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsHandlerTestSuite))
}

func (s *AnalyticsHandlerTestSuite) storedTransaction(customerID string, days int, amount float64) models.Transaction {
	return models.Transaction{
		CustomerID:      customerID,
		CustomerName:    "Customer " + customerID,
		CustomerEmail:   customerID + "@example.com",
		CustomerCity:    "Berlin",
		MerchantAccount: "ACME-001",
		MerchantName:    "Acme Shop",
		OrgUnit:         "Retail Europe",
		MerchantCountry: "DE",
		CardCategory:    "credit",
		Amount:          decimal.NewFromFloat(amount),
		IsCapture:       true,
		OccurredAt:      handlerTestBase.AddDate(0, 0, days),
	}
}

// seedPopulation stores a mixed population of loyal and one-time customers
// spread over 14 months.
func (s *AnalyticsHandlerTestSuite) seedPopulation(nCustomers int) {
	rng := rand.New(rand.NewSource(99))

	var txs []models.Transaction
	for i := 0; i < nCustomers; i++ {
		id := "cust-" + string(rune('a'+i%26)) + string(rune('a'+(i/26)%26))
		n := 1
		if rng.Float64() < 0.7 {
			n = 2 + rng.Intn(14)
		}
		day := rng.Intn(120)
		for j := 0; j < n; j++ {
			tx := s.storedTransaction(id, day, 10+rng.Float64()*150)
			if i%3 == 0 {
				tx.MerchantAccount = "OTHER-001"
				tx.MerchantCountry = "FR"
			}
			txs = append(txs, tx)
			day += 7 + rng.Intn(30)
		}
	}
	txs = append(txs, s.storedTransaction("cust-anchor", 0, 25))
	txs = append(txs, s.storedTransaction("cust-anchor", 14*30, 25))

	s.Require().NoError(s.repo.CreateBatch(txs))
}

func (s *AnalyticsHandlerTestSuite) request(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return s.echo.NewContext(req, rec), rec
}

func (s *AnalyticsHandlerTestSuite) decodeData(rec *httptest.ResponseRecorder) map[string]interface{} {
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

func (s *AnalyticsHandlerTestSuite) TestSegmentCustomersReturnsSegments() {
	s.seedPopulation(80)

	c, rec := s.request(http.MethodPost, "/api/v1/analyses/rfm", "")
	s.Require().NoError(s.handler.SegmentCustomers(c))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	data := s.decodeData(rec)
	s.Equal(true, data["has_data"])
	s.NotEmpty(data["segments"])
}

func (s *AnalyticsHandlerTestSuite) TestSegmentCustomersEmptyStore() {
	c, rec := s.request(http.MethodPost, "/api/v1/analyses/rfm", "")
	s.Require().NoError(s.handler.SegmentCustomers(c))

	s.Equal(http.StatusUnprocessableEntity, rec.Code)
	s.Contains(rec.Body.String(), "ANALYSIS_004")
}

func (s *AnalyticsHandlerTestSuite) TestCohortRetentionUngrouped() {
	s.seedPopulation(40)

	c, rec := s.request(http.MethodPost, "/api/v1/analyses/cohorts", "")
	s.Require().NoError(s.handler.CohortRetention(c))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	data := s.decodeData(rec)
	s.Equal(true, data["has_data"])
}

func (s *AnalyticsHandlerTestSuite) TestCohortRetentionGrouped() {
	s.seedPopulation(40)

	c, rec := s.request(http.MethodPost, "/api/v1/analyses/cohorts", `{"dimension":"merchant_account"}`)
	s.Require().NoError(s.handler.CohortRetention(c))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

func (s *AnalyticsHandlerTestSuite) TestCohortRetentionUnknownDimension() {
	s.seedPopulation(10)

	c, rec := s.request(http.MethodPost, "/api/v1/analyses/cohorts", `{"dimension":"card_color"}`)
	s.Require().NoError(s.handler.CohortRetention(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "ANALYSIS_002")
}

func (s *AnalyticsHandlerTestSuite) TestChurnRatesGrouped() {
	s.seedPopulation(40)

	c, rec := s.request(http.MethodPost, "/api/v1/analyses/churn", `{"dimension":"merchant_country"}`)
	s.Require().NoError(s.handler.ChurnRates(c))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	data := s.decodeData(rec)
	s.Equal(true, data["has_data"])
}

func (s *AnalyticsHandlerTestSuite) TestBenchmarkWindows() {
	s.seedPopulation(60)

	body := `{
		"dimension": "merchant_account",
		"benchmark": {"start": "2024-01-01", "end": "2024-07-01"},
		"target": {"start": "2024-07-02", "end": "2025-03-01"}
	}`
	c, rec := s.request(http.MethodPost, "/api/v1/analyses/benchmark", body)
	s.Require().NoError(s.handler.BenchmarkWindows(c))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	data := s.decodeData(rec)
	s.Equal(true, data["has_data"])
	s.NotEmpty(data["filter_value"])
}

func (s *AnalyticsHandlerTestSuite) TestBenchmarkRequiresDimension() {
	s.seedPopulation(10)

	body := `{
		"benchmark": {"start": "2024-01-01", "end": "2024-07-01"},
		"target": {"start": "2024-07-02", "end": "2025-03-01"}
	}`
	c, rec := s.request(http.MethodPost, "/api/v1/analyses/benchmark", body)
	s.Require().NoError(s.handler.BenchmarkWindows(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "VALIDATION_001")
}

func (s *AnalyticsHandlerTestSuite) TestBenchmarkRejectsInvertedWindow() {
	s.seedPopulation(10)

	body := `{
		"dimension": "merchant_account",
		"benchmark": {"start": "2024-07-01", "end": "2024-01-01"},
		"target": {"start": "2024-07-02", "end": "2025-03-01"}
	}`
	c, rec := s.request(http.MethodPost, "/api/v1/analyses/benchmark", body)
	s.Require().NoError(s.handler.BenchmarkWindows(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), "ANALYSIS_003")
}
