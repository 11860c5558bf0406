package repositories

import (
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface defines transaction persistence operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	CreateBatch(transactions []models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetAll() ([]models.Transaction, error)
	GetByPeriod(start, end time.Time) ([]models.Transaction, error)
	GetByCustomerID(customerID string) ([]models.Transaction, error)
	GetRecent(limit int) ([]models.Transaction, error)
	Count() (int64, error)
	DeleteAll() error
}
