package models

// Cohort tracks the customers whose first qualifying purchase fell in the
// formation month. Months[0] is the formation month itself, so Percents[0]
// and PercentsCum[0] are always 1.0 for a non-empty cohort.
//
// PercentsCum[k] is the share of the cohort seen again in month k or any
// later month of the range: a customer retained in month m+3 but silent in
// m+2 still counts toward the cumulative value at m+2. The per-month
// customer-ID sets used to build it are discarded after the percentages are
// computed.
type Cohort struct {
	FormationMonth string `json:"formation_month"`
	Size           int    `json:"n_customers"`

	Months            []string  `json:"months"`
	CustomersPerMonth []int     `json:"n_customers_per_month"`
	Percents          []float64 `json:"percents"`
	PercentsCum       []float64 `json:"percents_cum"`
}

// CohortGroup holds the cohorts of one grouping value ("no filter" when the
// analysis runs ungrouped).
type CohortGroup struct {
	FilterValue string   `json:"filter_value"`
	Cohorts     []Cohort `json:"cohorts"`
}

// CohortResult is the serializable output of a retention-cohort run.
type CohortResult struct {
	HasData bool          `json:"has_data"`
	Groups  []CohortGroup `json:"groups,omitempty"`
}
