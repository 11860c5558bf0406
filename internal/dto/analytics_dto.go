package dto

import (
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

// GroupedAnalysisRequest selects the optional grouping dimension for the
// cohort and churn analyses. An empty dimension runs the analysis over the
// whole population as a single "no filter" group.
type GroupedAnalysisRequest struct {
	Dimension string `json:"dimension" validate:"omitempty,group_dimension"`
}

// TimeWindowRequest is a closed date interval in YYYY-MM-DD form.
type TimeWindowRequest struct {
	Start string `json:"start" validate:"required,analysis_date"`
	End   string `json:"end" validate:"required,analysis_date"`
}

// BenchmarkRequest configures a two-window benchmark run. The dimension is
// mandatory: benchmarking always compares across grouping values.
type BenchmarkRequest struct {
	Dimension string            `json:"dimension" validate:"required,group_dimension"`
	Benchmark TimeWindowRequest `json:"benchmark" validate:"required"`
	Target    TimeWindowRequest `json:"target" validate:"required"`
}

// ImportResponse summarizes one CSV import.
type ImportResponse struct {
	Accepted int           `json:"accepted"`
	Rejected []RejectedRow `json:"rejected,omitempty"`
	Stored   int64         `json:"stored"`
}

// RejectedRow mirrors the ingestion adapter's rejection record on the API
// surface.
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// SeedRequest configures the development data seeder.
type SeedRequest struct {
	Count int  `json:"count" validate:"omitempty,min=1,max=1000000"`
	Reset bool `json:"reset"`
}

// SeedResponse reports the outcome of a seeding run.
type SeedResponse struct {
	Generated int   `json:"generated"`
	Stored    int64 `json:"stored"`
}

// TransactionCountResponse reports the stored transaction total.
type TransactionCountResponse struct {
	Count int64 `json:"count"`
}

// TransactionListResponse carries a page of stored transactions, newest
// first. Used to spot-check an import.
type TransactionListResponse struct {
	Count        int                  `json:"count"`
	Transactions []models.Transaction `json:"transactions"`
}
