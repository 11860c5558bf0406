package models

// ChurnSeries is the churn rate of one grouping value over a sequence of
// monthly boundaries. Rates[i] belongs to Months[i], labeled "M-YYYY".
type ChurnSeries struct {
	FilterValue string    `json:"filter_value"`
	Months      []string  `json:"months"`
	Rates       []float64 `json:"churn_rates"`
}

// ChurnResult is the serializable output of a churn-rate run.
type ChurnResult struct {
	HasData bool          `json:"has_data"`
	Series  []ChurnSeries `json:"filter_values,omitempty"`
}
