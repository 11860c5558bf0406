package models

// CustomerBucket aggregates one customer category (one-time, repeating,
// active, lost, churning, retained) within a filter slice.
type CustomerBucket struct {
	Count         int     `json:"n"`
	Pct           float64 `json:"pct"`
	TotalSpending float64 `json:"total_spending"`
	CLV           float64 `json:"clv"`
	PCLV          float64 `json:"pclv"`
}

// FilterAnalysis is the full per-grouping-value record of one benchmarking
// window: volume, revenue, market share, and the customer-category
// breakdown produced by the lifetime-value scoring.
type FilterAnalysis struct {
	FilterValue string `json:"filter_value"`
	FilterLabel string `json:"filter_label"`

	NTransactions int     `json:"n_transactions"`
	Revenue       float64 `json:"revenue"`
	MarketShare   float64 `json:"market_share"`
	NCustomers    int     `json:"n_customers"`

	OneTime   CustomerBucket `json:"onetime_customers"`
	Repeating CustomerBucket `json:"repeating_customers"`
	Active    CustomerBucket `json:"active_customers"`
	Lost      CustomerBucket `json:"lost_customers"`
	Churning  CustomerBucket `json:"churning_customers"`
	Retained  CustomerBucket `json:"retained_customers"`
}

// NewZeroFilterAnalysis returns the record for a degenerate slice: every
// counter at zero, full schema present. All fallback paths (no revenue, no
// customers, no repeat customers, model-fit failure) share this single
// constructor.
func NewZeroFilterAnalysis(filterValue, filterLabel string) FilterAnalysis {
	return FilterAnalysis{
		FilterValue: filterValue,
		FilterLabel: filterLabel,
	}
}

// BenchmarkWindow is one time window's analysis across every grouping value
// plus the synthetic "ALL" aggregate appended at the end.
type BenchmarkWindow struct {
	PeriodStart string           `json:"period_start"`
	PeriodEnd   string           `json:"period_end"`
	Analyses    []FilterAnalysis `json:"per_filter_analysis"`
}

// BenchmarkResult is the serializable output of one benchmarking run. The
// first window is the benchmark period, the second the target period;
// cross-window deltas belong to the report-rendering layer.
type BenchmarkResult struct {
	HasData bool `json:"has_data"`

	FilterDimension string   `json:"filter_dimension,omitempty"`
	FilterValues    []string `json:"filter_value,omitempty"`
	FilterLabels    []string `json:"filter_label,omitempty"`

	Benchmark BenchmarkWindow `json:"benchmark_window"`
	Target    BenchmarkWindow `json:"target_window"`
}
