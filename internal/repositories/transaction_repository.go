package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// insertBatchSize bounds the row count per INSERT during bulk imports.
const insertBatchSize = 500

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create stores a single transaction
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch stores a set of transactions in bounded insert batches
func (r *transactionRepository) CreateBatch(transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(transactions, insertBatchSize).Error; err != nil {
		return fmt.Errorf("failed to create transaction batch: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	transaction := &models.Transaction{ID: id}
	if err := r.db.First(transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return transaction, nil
}

// GetAll retrieves every stored transaction ordered by occurrence time.
// The analyses work on the full table; they filter in memory.
func (r *transactionRepository) GetAll() ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Order("occurred_at ASC").Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}

// GetByPeriod retrieves the transactions of a closed time interval
func (r *transactionRepository) GetByPeriod(start, end time.Time) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("occurred_at >= ? AND occurred_at <= ?", start, end).
		Order("occurred_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions by period: %w", err)
	}
	return transactions, nil
}

// GetByCustomerID retrieves the transaction history of one customer
func (r *transactionRepository) GetByCustomerID(customerID string) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("customer_id = ?", customerID).
		Order("occurred_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get customer transactions: %w", err)
	}
	return transactions, nil
}

// GetRecent retrieves the most recently occurred transactions, newest first.
// Backs the import spot-check endpoint.
func (r *transactionRepository) GetRecent(limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Order("occurred_at DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get recent transactions: %w", err)
	}
	return transactions, nil
}

// Count returns the number of stored transactions
func (r *transactionRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Transaction{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

// DeleteAll removes every stored transaction. Used by the development
// seeding endpoint before re-import.
func (r *transactionRepository) DeleteAll() error {
	if err := r.db.Where("1 = 1").Delete(&models.Transaction{}).Error; err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}
