package handlers

import (
	"net/http"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/dto"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/errors"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/repositories"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/services"

	"github.com/labstack/echo/v4"
)

const defaultSeedCount = 10000

// DevHandler exposes development-only endpoints. Routes are registered
// only outside production.
type DevHandler struct {
	transactionRepo repositories.TransactionRepositoryInterface
	generator       services.TransactionGeneratorInterface
	metrics         services.MetricsRecorderInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(
	transactionRepo repositories.TransactionRepositoryInterface,
	generator services.TransactionGeneratorInterface,
	metrics services.MetricsRecorderInterface,
) *DevHandler {
	return &DevHandler{
		transactionRepo: transactionRepo,
		generator:       generator,
		metrics:         metrics,
	}
}

// SeedTransactions fills the store with synthetic transactions
// @Summary Seed synthetic transactions
// @Description Generate synthetic payment transactions for local development. Set reset to replace the stored data
// @Tags Development
// @Accept json
// @Produce json
// @Param request body dto.SeedRequest false "Seeding configuration"
// @Success 200 {object} dto.SeedResponse "Seeding summary"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Malformed request"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_002 - Database error"
// @Router /dev/seed [post]
func (h *DevHandler) SeedTransactions(c echo.Context) error {
	request := dto.SeedRequest{Count: defaultSeedCount}

	if c.Request().ContentLength > 0 {
		if err := c.Bind(&request); err != nil {
			return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
		}
		if request.Count == 0 {
			request.Count = defaultSeedCount
		}
		if err := c.Validate(&request); err != nil {
			return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
		}
	}

	if request.Reset {
		if err := h.transactionRepo.DeleteAll(); err != nil {
			return SendSystemError(c, err)
		}
	}

	transactions := h.generator.GenerateTransactions(request.Count)
	if err := h.transactionRepo.CreateBatch(transactions); err != nil {
		return SendSystemError(c, err)
	}

	stored, err := h.transactionRepo.Count()
	if err != nil {
		return SendSystemError(c, err)
	}
	h.metrics.SetStoredTransactions(stored)

	return c.JSON(http.StatusOK, dto.SeedResponse{
		Generated: len(transactions),
		Stored:    stored,
	})
}
