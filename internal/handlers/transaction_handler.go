package handlers

import (
	stderrors "errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/dto"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/errors"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/ingest"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/repositories"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/services"

	"github.com/labstack/echo/v4"
)

const (
	// defaultRecentLimit is the page size of the recent-transactions listing
	// when the caller does not ask for one.
	defaultRecentLimit = 50
	// maxRecentLimit caps the listing; the analyses read the full table
	// through their own endpoints.
	maxRecentLimit = 500
)

// TransactionHandler handles transaction ingestion and inspection requests
type TransactionHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface
	adapter         *ingest.CSVAdapter
	metrics         services.MetricsRecorderInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	transactionRepo repositories.TransactionRepositoryInterface,
	adapter *ingest.CSVAdapter,
	metrics services.MetricsRecorderInterface,
) *TransactionHandler {
	return &TransactionHandler{
		transactionRepo: transactionRepo,
		adapter:         adapter,
		metrics:         metrics,
	}
}

// ImportTransactions ingests a CSV transaction export
// @Summary Import transactions
// @Description Parse a CSV transaction export through the column adapter and store the accepted rows. Send the file as the multipart field "file" or as the raw request body
// @Tags Transactions
// @Accept mpfd
// @Produce json
// @Param file formData file false "CSV export"
// @Success 200 {object} dto.ImportResponse "Import summary"
// @Failure 400 {object} errors.ErrorResponse "INGEST_001 - Required columns missing"
// @Failure 422 {object} errors.ErrorResponse "INGEST_003 - No transaction rows"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Database error"
// @Router /transactions/import [post]
func (h *TransactionHandler) ImportTransactions(c echo.Context) error {
	reader, closer, err := importStream(c)
	if err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	if closer != nil {
		defer closer.Close()
	}

	result, err := h.adapter.Parse(reader)
	if err != nil {
		var missing *ingest.MissingColumnsError
		switch {
		case stderrors.As(err, &missing):
			return SendError(c, errors.IngestMissingColumns, errors.WithDetails(missing.Columns...))
		case stderrors.Is(err, ingest.ErrEmptyInput):
			return SendError(c, errors.IngestEmptyFile)
		}
		return SendError(c, errors.IngestMalformedRow, errors.WithDetails(err.Error()))
	}

	if err := h.transactionRepo.CreateBatch(result.Transactions); err != nil {
		return SendSystemError(c, err)
	}

	h.metrics.RecordIngestedTransactions(result.Accepted)
	for reason, count := range rejectionsByReason(result.Rejected) {
		h.metrics.RecordIngestRejected(reason, count)
	}

	stored, err := h.transactionRepo.Count()
	if err != nil {
		return SendSystemError(c, err)
	}
	h.metrics.SetStoredTransactions(stored)

	slog.Info("transactions imported",
		"accepted", result.Accepted,
		"rejected", len(result.Rejected),
		"stored", stored,
		"client_ip", getClientIP(c))

	return c.JSON(http.StatusOK, dto.ImportResponse{
		Accepted: result.Accepted,
		Rejected: convertRejections(result.Rejected),
		Stored:   stored,
	})
}

// CountTransactions reports the stored transaction total
// @Summary Count transactions
// @Description Report how many transactions are stored
// @Tags Transactions
// @Produce json
// @Success 200 {object} dto.TransactionCountResponse "Stored transaction count"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Database error"
// @Router /transactions/count [get]
func (h *TransactionHandler) CountTransactions(c echo.Context) error {
	count, err := h.transactionRepo.Count()
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, dto.TransactionCountResponse{Count: count})
}

// ListRecentTransactions lists the most recently occurred transactions
// @Summary List recent transactions
// @Description List the most recently occurred transactions, newest first. Intended for spot-checking an import
// @Tags Transactions
// @Produce json
// @Param limit query int false "Page size, 1 to 500" default(50)
// @Success 200 {object} dto.TransactionListResponse "Recent transactions"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Database error"
// @Router /transactions/recent [get]
func (h *TransactionHandler) ListRecentTransactions(c echo.Context) error {
	limit := getIntParam(c, "limit", defaultRecentLimit)
	if limit < 1 || limit > maxRecentLimit {
		limit = defaultRecentLimit
	}

	transactions, err := h.transactionRepo.GetRecent(limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.TransactionListResponse{
		Count:        len(transactions),
		Transactions: transactions,
	})
}

// importStream selects the CSV source: the multipart "file" field when
// present, the raw request body otherwise.
func importStream(c echo.Context) (io.Reader, multipart.File, error) {
	fileHeader, err := c.FormFile("file")
	if err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, nil, err
		}
		return file, file, nil
	}
	return c.Request().Body, nil, nil
}

func rejectionsByReason(rejected []ingest.RejectedRow) map[string]int {
	counts := make(map[string]int, len(rejected))
	for _, row := range rejected {
		counts[row.Reason]++
	}
	return counts
}

func convertRejections(rejected []ingest.RejectedRow) []dto.RejectedRow {
	if len(rejected) == 0 {
		return nil
	}
	rows := make([]dto.RejectedRow, 0, len(rejected))
	for _, row := range rejected {
		rows = append(rows, dto.RejectedRow{
			Line:   row.Line,
			Reason: row.Reason,
			Detail: row.Detail,
		})
	}
	return rows
}
