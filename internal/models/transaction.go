package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Grouping dimensions supported by the grouped analyses (cohorts, churn,
// benchmarking). The value selects which transaction column the analysis
// partitions by.
const (
	GroupByNone            = ""
	GroupByMerchantAccount = "merchant_account"
	GroupByMerchantName    = "merchant_name"
	GroupByOrgUnit         = "org_unit"
	GroupByMerchantCountry = "merchant_country"
)

var (
	ErrInvalidGroupDimension = errors.New("invalid grouping dimension")
	ErrNegativeAmount        = errors.New("transaction amount must not be negative")
)

// Transaction is one payment event in the reporting currency (EUR).
// Transactions are immutable inputs: the analyses derive filtered and
// aggregated copies and never write back.
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	CustomerID      string          `gorm:"type:varchar(100);not null;index" json:"customer_id"`
	CustomerName    string          `gorm:"type:varchar(255)" json:"customer_name,omitempty"`
	CustomerEmail   string          `gorm:"type:varchar(255)" json:"customer_email,omitempty"`
	CustomerCity    string          `gorm:"type:varchar(100)" json:"customer_city,omitempty"`
	OccurredAt      time.Time       `gorm:"not null;index" json:"occurred_at"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	IsCapture       bool            `gorm:"not null;index" json:"is_capture"`
	IsReturn        bool            `gorm:"not null" json:"is_return"`
	MerchantAccount string          `gorm:"type:varchar(255);index" json:"merchant_account,omitempty"`
	MerchantName    string          `gorm:"type:varchar(255)" json:"merchant_name,omitempty"`
	OrgUnit         string          `gorm:"type:varchar(255)" json:"org_unit,omitempty"`
	MerchantCountry string          `gorm:"type:varchar(3)" json:"merchant_country,omitempty"`
	CardCategory    string          `gorm:"type:varchar(50)" json:"card_category,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

// GroupValue returns the transaction's value for the given grouping
// dimension. An empty dimension means "no grouping" and returns "".
func (t *Transaction) GroupValue(dimension string) (string, error) {
	switch dimension {
	case GroupByNone:
		return "", nil
	case GroupByMerchantAccount:
		return t.MerchantAccount, nil
	case GroupByMerchantName:
		return t.MerchantName, nil
	case GroupByOrgUnit:
		return t.OrgUnit, nil
	case GroupByMerchantCountry:
		return t.MerchantCountry, nil
	default:
		return "", ErrInvalidGroupDimension
	}
}

// ValidGroupDimension reports whether the dimension names a partitionable
// transaction column.
func ValidGroupDimension(dimension string) bool {
	switch dimension {
	case GroupByNone, GroupByMerchantAccount, GroupByMerchantName,
		GroupByOrgUnit, GroupByMerchantCountry:
		return true
	}
	return false
}
