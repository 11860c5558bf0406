package handlers

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/dto"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/errors"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/repositories"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/services"

	"github.com/labstack/echo/v4"
)

// Analysis names used for metrics labels.
const (
	analysisRFM       = "rfm"
	analysisCohorts   = "cohorts"
	analysisChurn     = "churn"
	analysisBenchmark = "benchmark"
)

// windowDateLayout is the wire format for benchmark window boundaries.
const windowDateLayout = "2006-01-02"

// AnalyticsHandler exposes the batch analyses over HTTP. Every endpoint
// loads the stored transactions and runs one analysis on them; results are
// computed fresh per request.
type AnalyticsHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface
	segmentation    services.SegmentationServiceInterface
	cohorts         services.CohortServiceInterface
	churn           services.ChurnServiceInterface
	benchmark       services.BenchmarkServiceInterface
	metrics         services.MetricsRecorderInterface
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	transactionRepo repositories.TransactionRepositoryInterface,
	segmentation services.SegmentationServiceInterface,
	cohorts services.CohortServiceInterface,
	churn services.ChurnServiceInterface,
	benchmark services.BenchmarkServiceInterface,
	metrics services.MetricsRecorderInterface,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		transactionRepo: transactionRepo,
		segmentation:    segmentation,
		cohorts:         cohorts,
		churn:           churn,
		benchmark:       benchmark,
		metrics:         metrics,
	}
}

// SegmentCustomers runs the clustering-based RFM segmentation
// @Summary Customer segmentation
// @Description Segment the customer base by recency, frequency and spending, with lifetime-value predictions per segment
// @Tags Analyses
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.SegmentationResult} "Segmentation result"
// @Failure 422 {object} errors.ErrorResponse "ANALYSIS_004 - No transactions stored"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses/rfm [post]
func (h *AnalyticsHandler) SegmentCustomers(c echo.Context) error {
	start := time.Now()

	transactions, err := h.transactionRepo.GetAll()
	if err != nil {
		h.metrics.RecordAnalysis(analysisRFM, "error", time.Since(start))
		return SendSystemError(c, err)
	}
	if len(transactions) == 0 {
		h.metrics.RecordAnalysis(analysisRFM, "empty", time.Since(start))
		return SendError(c, errors.AnalysisNoTransactions)
	}

	result, err := h.segmentation.Segment(transactions)
	if err != nil {
		h.metrics.RecordAnalysis(analysisRFM, "error", time.Since(start))
		return SendSystemError(c, err)
	}

	h.metrics.RecordAnalysis(analysisRFM, analysisStatus(result.HasData), time.Since(start))
	h.metrics.RecordPopulationSize(analysisRFM, result.NCustomers)

	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// CohortRetention runs the monthly retention cohort analysis
// @Summary Retention cohorts
// @Description Build monthly acquisition cohorts and their plain and cumulative retention shares, optionally grouped
// @Tags Analyses
// @Accept json
// @Produce json
// @Param request body dto.GroupedAnalysisRequest false "Optional grouping dimension"
// @Success 200 {object} SuccessResponse{data=models.CohortResult} "Cohort result"
// @Failure 400 {object} errors.ErrorResponse "ANALYSIS_002 - Unknown grouping dimension"
// @Failure 422 {object} errors.ErrorResponse "ANALYSIS_004 - No transactions stored"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses/cohorts [post]
func (h *AnalyticsHandler) CohortRetention(c echo.Context) error {
	start := time.Now()

	request, err := h.bindGroupedRequest(c)
	if err != nil {
		return SendError(c, errors.AnalysisInvalidDimension, errors.WithDetails(err.Error()))
	}

	transactions, err := h.transactionRepo.GetAll()
	if err != nil {
		h.metrics.RecordAnalysis(analysisCohorts, "error", time.Since(start))
		return SendSystemError(c, err)
	}
	if len(transactions) == 0 {
		h.metrics.RecordAnalysis(analysisCohorts, "empty", time.Since(start))
		return SendError(c, errors.AnalysisNoTransactions)
	}

	result, err := h.cohorts.Cohorts(transactions, request.Dimension)
	if err != nil {
		if stderrors.Is(err, models.ErrInvalidGroupDimension) {
			return SendError(c, errors.AnalysisInvalidDimension)
		}
		h.metrics.RecordAnalysis(analysisCohorts, "error", time.Since(start))
		return SendSystemError(c, err)
	}

	h.metrics.RecordAnalysis(analysisCohorts, analysisStatus(result.HasData), time.Since(start))

	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// ChurnRates runs the monthly churn-rate analysis
// @Summary Churn rates
// @Description Compute the monthly churn-rate series over the trailing month boundaries, optionally grouped
// @Tags Analyses
// @Accept json
// @Produce json
// @Param request body dto.GroupedAnalysisRequest false "Optional grouping dimension"
// @Success 200 {object} SuccessResponse{data=models.ChurnResult} "Churn result"
// @Failure 400 {object} errors.ErrorResponse "ANALYSIS_002 - Unknown grouping dimension"
// @Failure 422 {object} errors.ErrorResponse "ANALYSIS_004 - No transactions stored"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses/churn [post]
func (h *AnalyticsHandler) ChurnRates(c echo.Context) error {
	start := time.Now()

	request, err := h.bindGroupedRequest(c)
	if err != nil {
		return SendError(c, errors.AnalysisInvalidDimension, errors.WithDetails(err.Error()))
	}

	transactions, err := h.transactionRepo.GetAll()
	if err != nil {
		h.metrics.RecordAnalysis(analysisChurn, "error", time.Since(start))
		return SendSystemError(c, err)
	}
	if len(transactions) == 0 {
		h.metrics.RecordAnalysis(analysisChurn, "empty", time.Since(start))
		return SendError(c, errors.AnalysisNoTransactions)
	}

	result, err := h.churn.ChurnRates(transactions, request.Dimension)
	if err != nil {
		if stderrors.Is(err, models.ErrInvalidGroupDimension) {
			return SendError(c, errors.AnalysisInvalidDimension)
		}
		h.metrics.RecordAnalysis(analysisChurn, "error", time.Since(start))
		return SendSystemError(c, err)
	}

	h.metrics.RecordAnalysis(analysisChurn, analysisStatus(result.HasData), time.Since(start))

	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// BenchmarkWindows runs the two-window customer-base benchmark
// @Summary Customer-base benchmarking
// @Description Compare customer-base composition between a benchmark window and a target window across the values of a grouping dimension
// @Tags Analyses
// @Accept json
// @Produce json
// @Param request body dto.BenchmarkRequest true "Benchmark configuration"
// @Success 200 {object} SuccessResponse{data=models.BenchmarkResult} "Benchmark result"
// @Failure 400 {object} errors.ErrorResponse "ANALYSIS_002 - Unknown dimension or ANALYSIS_003 - Malformed window"
// @Failure 422 {object} errors.ErrorResponse "ANALYSIS_004 - No transactions stored"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses/benchmark [post]
func (h *AnalyticsHandler) BenchmarkWindows(c echo.Context) error {
	start := time.Now()

	var request dto.BenchmarkRequest
	if err := c.Bind(&request); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&request); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	benchmarkWindow, err := parseWindow(request.Benchmark)
	if err != nil {
		return SendError(c, errors.AnalysisInvalidWindow, errors.WithDetails(err.Error()))
	}
	targetWindow, err := parseWindow(request.Target)
	if err != nil {
		return SendError(c, errors.AnalysisInvalidWindow, errors.WithDetails(err.Error()))
	}

	transactions, err := h.transactionRepo.GetAll()
	if err != nil {
		h.metrics.RecordAnalysis(analysisBenchmark, "error", time.Since(start))
		return SendSystemError(c, err)
	}
	if len(transactions) == 0 {
		h.metrics.RecordAnalysis(analysisBenchmark, "empty", time.Since(start))
		return SendError(c, errors.AnalysisNoTransactions)
	}

	result, err := h.benchmark.Benchmark(transactions, request.Dimension, benchmarkWindow, targetWindow)
	if err != nil {
		switch {
		case stderrors.Is(err, models.ErrInvalidGroupDimension):
			return SendError(c, errors.AnalysisInvalidDimension)
		case stderrors.Is(err, models.ErrInvalidTimeWindow):
			return SendError(c, errors.AnalysisInvalidWindow)
		}
		h.metrics.RecordAnalysis(analysisBenchmark, "error", time.Since(start))
		return SendSystemError(c, err)
	}

	h.metrics.RecordAnalysis(analysisBenchmark, analysisStatus(result.HasData), time.Since(start))

	return c.JSON(http.StatusOK, SuccessResponse{Data: result})
}

// bindGroupedRequest binds the optional grouping request. A missing or
// empty body selects the ungrouped analysis.
func (h *AnalyticsHandler) bindGroupedRequest(c echo.Context) (dto.GroupedAnalysisRequest, error) {
	var request dto.GroupedAnalysisRequest

	if c.Request().ContentLength == 0 {
		return request, nil
	}
	if err := c.Bind(&request); err != nil {
		return request, err
	}
	if err := c.Validate(&request); err != nil {
		return request, err
	}
	return request, nil
}

func parseWindow(w dto.TimeWindowRequest) (models.TimeWindow, error) {
	start, err := time.Parse(windowDateLayout, w.Start)
	if err != nil {
		return models.TimeWindow{}, err
	}
	end, err := time.Parse(windowDateLayout, w.End)
	if err != nil {
		return models.TimeWindow{}, err
	}
	window := models.TimeWindow{Start: start, End: end}
	if !window.Valid() {
		return models.TimeWindow{}, models.ErrInvalidTimeWindow
	}
	return window, nil
}

func analysisStatus(hasData bool) string {
	if hasData {
		return "ok"
	}
	return "empty"
}
