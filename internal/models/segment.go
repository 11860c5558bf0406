package models

// Segment summarizes one customer cluster produced by the segmentation
// engine. The index is positional output of the clustering run, not a
// stable identity across runs.
type Segment struct {
	Index         int `json:"segment_index"`
	CustomerCount int `json:"customer_count"`

	// Window-scoped R/F/M averages over the cluster members.
	RAvg    float64 `json:"R_avg"`
	FAvg    float64 `json:"F_avg"`
	MAvgSum float64 `json:"M_avg_sum"`
	MAvgAvg float64 `json:"M_avg_avg"`

	// Model-feature averages (lifetime-value-model conventions).
	RecencyAvg       float64 `json:"recency_avg"`
	FrequencyAvg     float64 `json:"frequency_avg"`
	TAvg             float64 `json:"T_avg"`
	MonetaryValueAvg float64 `json:"monetary_value_avg"`

	// Observed and predicted revenue.
	SegmentRevenue   float64 `json:"segment_revenue"`
	PredictedRevenue float64 `json:"predicted_revenue"`

	// Averages of the per-member predictions.
	PredictedF      float64 `json:"predicted_F"`
	PredictedPAlive float64 `json:"predicted_p_alive"`
	PredictedMAvg   float64 `json:"predicted_M_avg"`
	CLV             float64 `json:"CLV"`
	PredictedFM     float64 `json:"predicted_FM"`
	PredictedPFM    float64 `json:"predicted_pFM"`

	// Persona predictions: the models evaluated at the segment's average
	// feature vector instead of averaged per-member scores.
	PredictedFPersona      float64 `json:"predicted_F_persona"`
	PredictedPAlivePersona float64 `json:"predicted_p_alive_persona"`
	PredictedMAvgPersona   float64 `json:"predicted_M_avg_persona"`
	PredictedFMPersona     float64 `json:"predicted_FM_persona"`
	PredictedPFMPersona    float64 `json:"predicted_pFM_persona"`

	// Monthly revenue evolution over the segmentation window. Months carries
	// the full month axis of the window; a month without activity for this
	// segment holds a zero.
	Evolution RevenueEvolution `json:"evolution"`

	CustomerEmails []string `json:"customers_emails,omitempty"`
}

// RevenueEvolution is a monthly revenue series labeled "Jan-06" style.
type RevenueEvolution struct {
	Months  []string  `json:"x"`
	Revenue []float64 `json:"y"`
}

// SegmentCountryDistribution is the per-segment customer count across the
// countries observed in the window. Country axes are shared by all segments
// and ordered by total customer count, descending.
type SegmentCountryDistribution struct {
	SegmentIndex   int       `json:"segment_index"`
	CountryCodes   []string  `json:"country_code"`
	CountryNames   []string  `json:"country_name"`
	NCustomers     []int     `json:"n_customers"`
	NCustomersPct  []float64 `json:"n_customers_pct"`
	CustomerEmails []string  `json:"emails,omitempty"`
	NEmails        []int     `json:"n_emails,omitempty"`
}

// SegmentCityDistribution is the per-segment customer count per city,
// ordered by segment-local customer count, descending.
type SegmentCityDistribution struct {
	SegmentIndex int      `json:"segment_index"`
	Cities       []string `json:"city"`
	NCustomers   []int    `json:"n_customers"`
}

// SegmentationConfig echoes the scalar knobs a segmentation run used, so a
// rendered report can state them.
type SegmentationConfig struct {
	HorizonDays    float64 `json:"churn_t_horizon"`
	NClusters      int     `json:"n_clusters"`
	NBestCustomers int     `json:"n_best_predicted_customers"`
}

// SegmentationResult is the serializable output of one segmentation run.
type SegmentationResult struct {
	HasData bool `json:"has_data"`

	PeriodStart string `json:"period_start,omitempty"`
	PeriodEnd   string `json:"period_end,omitempty"`

	Segments []Segment `json:"segments,omitempty"`

	NCustomers    int     `json:"n_customers"`
	NTransactions int     `json:"n_transactions"`
	Revenue       float64 `json:"revenue"`

	// Expected behavior of a brand-new customer under the fitted models.
	PredNewCustomerFrequency float64 `json:"pred_new_customer_frequency"`
	PastNewCustomerMonetary  float64 `json:"past_new_customer_monetary"`
	PredNewCustomerMonetary  float64 `json:"pred_new_customer_monetary"`

	BestCustomers  []CustomerSummary `json:"best_customers_lastyear,omitempty"`
	WorstCustomers []CustomerSummary `json:"worst_customers_lastyear,omitempty"`

	CountryDistribution []SegmentCountryDistribution `json:"country_distribution,omitempty"`
	CityDistribution    []SegmentCityDistribution    `json:"city_distribution,omitempty"`

	Config SegmentationConfig `json:"config"`
}
