package models

import (
	"time"
)

// CustomerFeatures is one row of the derived customer feature table: the
// per-customer summary of the capture-only transaction set within an
// observation window. It is rebuilt per analysis run and per window, never
// persisted as a system of record.
//
// Conventions follow the standard frequency/recency decomposition:
// Frequency counts repeat purchases (NTransactions - 1), Recency is the
// span between first and last purchase in days, and T is the customer's
// age in the observation window (first purchase to window end, in days).
// Invariants: Recency <= T, Frequency >= 0.
type CustomerFeatures struct {
	CustomerID           string    `json:"customer_id"`
	CustomerName         string    `json:"customer_name,omitempty"`
	CustomerEmail        string    `json:"customer_email,omitempty"`
	CustomerCity         string    `json:"customer_city,omitempty"`
	MerchantCountry      string    `json:"merchant_country,omitempty"`
	FirstTransactionDate time.Time `json:"first_transaction_date"`
	LastTransactionDate  time.Time `json:"last_transaction_date"`
	NTransactions        int       `json:"n_transactions"`
	TotalSpending        float64   `json:"total_spending"`
	AvgSpending          float64   `json:"avg_spending"`
	Frequency            float64   `json:"frequency"`
	Recency              float64   `json:"recency"`
	T                    float64   `json:"T"`

	// MonetaryValue is TotalSpending / Frequency for repeat customers and 0
	// for one-time customers, whose average transaction value carries no
	// variance information for the monetary model.
	MonetaryValue float64 `json:"monetary_value"`

	// Lifetime-value predictions, attached by the scoring step.
	PredictedPAlive float64 `json:"predicted_p_alive"`
	PredictedF      float64 `json:"predicted_F"`
	PredictedMAvg   float64 `json:"predicted_M_avg"`
	CLV             float64 `json:"CLV"`
	PCLV            float64 `json:"pCLV"`
}

// IsRepeat reports whether the customer made more than one purchase in the
// observation window. Only repeat customers enter monetary-model fitting.
func (c *CustomerFeatures) IsRepeat() bool {
	return c.NTransactions > 1
}

// CustomerSummary is the serializable projection of a scored customer used
// in best/worst rankings.
type CustomerSummary struct {
	CustomerID    string  `json:"customer_unique_id"`
	CustomerName  string  `json:"customer_name,omitempty"`
	NTransactions int     `json:"n_transactions"`
	TotalSpending float64 `json:"total_spending"`
	CLV           float64 `json:"CLV"`
	PCLV          float64 `json:"pCLV"`
}
