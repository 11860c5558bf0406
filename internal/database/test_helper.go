package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CreateTestTransaction(t *testing.T, db *DB, customerID string, occurredAt time.Time, amount float64) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		CustomerID:      customerID,
		CustomerName:    "Test Customer",
		CustomerEmail:   customerID + "@example.com",
		CustomerCity:    "Berlin",
		MerchantAccount: "TEST-001",
		MerchantName:    "Test Merchant",
		OrgUnit:         "Retail Europe",
		MerchantCountry: "DE",
		CardCategory:    "credit",
		Amount:          decimal.NewFromFloat(amount),
		IsCapture:       true,
		OccurredAt:      occurredAt,
	}

	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}

	return transaction
}

type TestDB struct {
	*DB
	t *testing.T
}

func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	return &TestDB{
		DB: SetupTestDB(t),
		t:  t,
	}
}

func (tdb *TestDB) Cleanup() {
	tdb.t.Helper()

	CleanupTestDB(tdb.t, tdb.DB)
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
