package services

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/cluster"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/config"
	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"
)

const dateLayout = "2006-01-02"

type segmentationService struct {
	features FeatureServiceInterface
	ltv      LifetimeValueServiceInterface
	cfg      config.AnalyticsConfig
}

// NewSegmentationService creates the segmentation engine.
func NewSegmentationService(
	features FeatureServiceInterface,
	ltv LifetimeValueServiceInterface,
	cfg config.AnalyticsConfig,
) SegmentationServiceInterface {
	return &segmentationService{
		features: features,
		ltv:      ltv,
		cfg:      cfg,
	}
}

// Segment clusters the customers of the trailing observation window on
// standardized R/F/M features, scores every cluster with the lifetime-value
// models and derives segment personas, revenue evolution, best and worst
// customers and geographic distributions.
//
// Predictions are fit on the full transaction history; clustering features
// are recomputed over the trailing window only. A customer inactive for
// longer than the lookback drops out of the clustering but still informs the
// model fit.
func (s *segmentationService) Segment(transactions []models.Transaction) (*models.SegmentationResult, error) {
	captures := s.features.CaptureOnly(transactions)
	if len(captures) == 0 {
		return &models.SegmentationResult{HasData: false}, nil
	}

	minDate, maxDate := transactionDateRange(captures)

	fullFeatures := s.features.Extract(captures, maxDate)
	scored, err := s.ltv.Score(fullFeatures)
	if err != nil {
		slog.Warn("segmentation degraded to empty result", "error", err)
		return &models.SegmentationResult{HasData: false}, nil
	}

	windowStart := maxDate.AddDate(0, -s.cfg.LookbackMonths, 0)
	periodStart := windowStart
	windowTxs := captures
	if minDate.Before(windowStart) {
		windowTxs = make([]models.Transaction, 0, len(captures))
		for _, tx := range captures {
			if !tx.OccurredAt.Before(windowStart) {
				windowTxs = append(windowTxs, tx)
			}
		}
	} else {
		periodStart = minDate
	}
	if len(windowTxs) == 0 {
		return &models.SegmentationResult{HasData: false}, nil
	}

	windowCustomers := s.features.Extract(windowTxs, maxDate)
	predictions := indexByCustomer(scored.Customers)
	for i := range windowCustomers {
		if p, ok := predictions[windowCustomers[i].CustomerID]; ok {
			windowCustomers[i].PredictedPAlive = p.PredictedPAlive
			windowCustomers[i].PredictedF = p.PredictedF
			windowCustomers[i].PredictedMAvg = p.PredictedMAvg
			windowCustomers[i].CLV = p.CLV
			windowCustomers[i].PCLV = p.PCLV
		}
	}

	labels, err := s.clusterCustomers(windowCustomers, windowStart)
	if err != nil {
		return nil, fmt.Errorf("clustering customers: %w", err)
	}

	segments := s.buildSegments(windowCustomers, windowTxs, labels, windowStart, scored)

	var revenue float64
	for _, seg := range segments {
		revenue += seg.SegmentRevenue
	}

	result := &models.SegmentationResult{
		HasData:       true,
		PeriodStart:   periodStart.Format(dateLayout),
		PeriodEnd:     maxDate.Format(dateLayout),
		Segments:      segments,
		NCustomers:    len(windowCustomers),
		NTransactions: len(windowTxs),
		Revenue:       round2(revenue),
		Config: models.SegmentationConfig{
			HorizonDays:    s.cfg.HorizonDays,
			NClusters:      s.cfg.NClusters,
			NBestCustomers: s.cfg.NBestCustomers,
		},
	}

	s.addNewCustomerExpectations(result, scored, windowCustomers)
	result.BestCustomers, result.WorstCustomers = s.rankCustomers(windowCustomers)
	result.CountryDistribution = countryDistribution(windowCustomers, labels, s.cfg.NClusters)
	result.CityDistribution = cityDistribution(windowCustomers, labels, s.cfg.NClusters)

	slog.Info("segmentation completed",
		"n_customers", result.NCustomers,
		"n_transactions", result.NTransactions,
		"n_segments", len(segments))

	return result, nil
}

// clusterCustomers standardizes the window R/F/M features and assigns a
// cluster label to every customer.
func (s *segmentationService) clusterCustomers(customers []models.CustomerFeatures, windowStart time.Time) ([]int, error) {
	points := make([][]float64, len(customers))
	for i, c := range customers {
		points[i] = []float64{
			daysBetween(windowStart, c.LastTransactionDate),
			float64(c.NTransactions),
			c.TotalSpending,
		}
	}

	km := cluster.NewKMeans(s.cfg.NClusters, s.cfg.ClusterMaxIter, s.cfg.ClusterTol, s.cfg.ClusterSeed)
	return km.Fit(cluster.Standardize(points))
}

// buildSegments aggregates per-cluster averages, revenue, predictions and
// persona scores, plus the monthly revenue evolution of each segment.
func (s *segmentationService) buildSegments(
	customers []models.CustomerFeatures,
	windowTxs []models.Transaction,
	labels []int,
	windowStart time.Time,
	scored *ScoredPopulation,
) []models.Segment {
	minTx, maxTx := transactionDateRange(windowTxs)
	monthAxis := monthRange(minTx, maxTx)
	monthLabels := make([]string, len(monthAxis))
	monthIndex := make(map[int]int, len(monthAxis))
	for i, m := range monthAxis {
		monthLabels[i] = monthLabel(m)
		monthIndex[m] = i
	}

	clusterOf := make(map[string]int, len(customers))
	for i, c := range customers {
		clusterOf[c.CustomerID] = labels[i]
	}

	revenueByMonth := make([][]float64, s.cfg.NClusters)
	for c := range revenueByMonth {
		revenueByMonth[c] = make([]float64, len(monthAxis))
	}
	for _, tx := range windowTxs {
		c, ok := clusterOf[tx.CustomerID]
		if !ok {
			continue
		}
		revenueByMonth[c][monthIndex[monthKey(tx.OccurredAt)]] += tx.Amount.InexactFloat64()
	}

	segments := make([]models.Segment, s.cfg.NClusters)
	for c := 0; c < s.cfg.NClusters; c++ {
		seg := models.Segment{Index: c + 1}

		var emails []string
		seen := make(map[string]bool)
		for i, cust := range customers {
			if labels[i] != c {
				continue
			}
			seg.CustomerCount++
			seg.RAvg += daysBetween(windowStart, cust.LastTransactionDate)
			seg.FAvg += float64(cust.NTransactions)
			seg.MAvgSum += cust.TotalSpending
			seg.MAvgAvg += cust.AvgSpending
			seg.RecencyAvg += cust.Recency
			seg.FrequencyAvg += cust.Frequency
			seg.TAvg += cust.T
			seg.MonetaryValueAvg += cust.MonetaryValue
			seg.SegmentRevenue += cust.TotalSpending
			seg.PredictedRevenue += cust.PCLV
			seg.PredictedF += cust.PredictedF
			seg.PredictedPAlive += cust.PredictedPAlive
			seg.PredictedMAvg += cust.PredictedMAvg
			seg.CLV += cust.CLV
			if cust.CustomerEmail != "" && !seen[cust.CustomerEmail] {
				seen[cust.CustomerEmail] = true
				emails = append(emails, cust.CustomerEmail)
			}
		}

		if n := float64(seg.CustomerCount); n > 0 {
			seg.RAvg /= n
			seg.FAvg /= n
			seg.MAvgSum /= n
			seg.MAvgAvg /= n
			seg.RecencyAvg /= n
			seg.FrequencyAvg /= n
			seg.TAvg /= n
			seg.MonetaryValueAvg /= n
			seg.PredictedF /= n
			seg.PredictedPAlive /= n
			seg.PredictedMAvg /= n
		}
		seg.SegmentRevenue = round2(seg.SegmentRevenue)
		seg.PredictedRevenue = round2(seg.PredictedRevenue)
		seg.PredictedFM = seg.PredictedF * seg.PredictedMAvg * float64(seg.CustomerCount)
		seg.PredictedPFM = seg.PredictedPAlive * seg.PredictedFM

		if seg.CustomerCount > 0 {
			roundedF := math.Round(seg.FrequencyAvg)
			seg.PredictedFPersona = scored.Purchase.ExpectedPurchases(s.cfg.HorizonDays, roundedF, seg.RecencyAvg, seg.TAvg)
			seg.PredictedPAlivePersona = scored.Purchase.ProbabilityAlive(roundedF, seg.RecencyAvg, seg.TAvg)
			if scored.Monetary != nil {
				seg.PredictedMAvgPersona = scored.Monetary.ExpectedAverageValue(roundedF, seg.MonetaryValueAvg)
			}
			seg.PredictedFMPersona = seg.PredictedFPersona * seg.PredictedMAvgPersona
			seg.PredictedPFMPersona = seg.PredictedPAlivePersona * seg.PredictedFMPersona
		}

		revenue := make([]float64, len(monthAxis))
		for i, v := range revenueByMonth[c] {
			revenue[i] = round2(v)
		}
		seg.Evolution = models.RevenueEvolution{Months: monthLabels, Revenue: revenue}
		sort.Strings(emails)
		seg.CustomerEmails = emails

		segments[c] = seg
	}
	return segments
}

// addNewCustomerExpectations fills the expected behavior of a brand-new
// customer: model-predicted purchase count and average value over the
// horizon, plus the observed repeat-customer average as the empirical
// reference.
func (s *segmentationService) addNewCustomerExpectations(
	result *models.SegmentationResult,
	scored *ScoredPopulation,
	windowCustomers []models.CustomerFeatures,
) {
	result.PredNewCustomerFrequency = round2(scored.Purchase.ExpectedPurchasesNewCustomer(s.cfg.HorizonDays))

	var sum float64
	var n int
	for _, c := range windowCustomers {
		if c.IsRepeat() {
			sum += c.MonetaryValue
			n++
		}
	}
	if n > 0 {
		result.PastNewCustomerMonetary = round2(sum / float64(n))
	}
	if scored.Monetary != nil {
		result.PredNewCustomerMonetary = round2(scored.Monetary.PopulationExpectedValue())
	}
}

// rankCustomers orders the repeat customers of the window by CLV and
// returns the top and bottom slices. Worst customers come back in
// ascending CLV order.
func (s *segmentationService) rankCustomers(customers []models.CustomerFeatures) ([]models.CustomerSummary, []models.CustomerSummary) {
	repeat := make([]models.CustomerFeatures, 0, len(customers))
	for _, c := range customers {
		if c.IsRepeat() {
			repeat = append(repeat, c)
		}
	}
	sort.SliceStable(repeat, func(i, j int) bool { return repeat[i].CLV > repeat[j].CLV })

	n := s.cfg.NBestCustomers
	if n > len(repeat) {
		n = len(repeat)
	}

	best := make([]models.CustomerSummary, 0, n)
	for _, c := range repeat[:n] {
		best = append(best, summarize(c))
	}
	worst := make([]models.CustomerSummary, 0, n)
	for i := len(repeat) - 1; i >= len(repeat)-n; i-- {
		worst = append(worst, summarize(repeat[i]))
	}
	return best, worst
}

func summarize(c models.CustomerFeatures) models.CustomerSummary {
	return models.CustomerSummary{
		CustomerID:    c.CustomerID,
		CustomerName:  c.CustomerName,
		NTransactions: c.NTransactions,
		TotalSpending: round2(c.TotalSpending),
		CLV:           round2(c.CLV),
		PCLV:          round2(c.PCLV),
	}
}

// countryDistribution counts the customers of every segment per merchant
// country. All segments share one country axis, ordered by total customer
// count descending.
func countryDistribution(customers []models.CustomerFeatures, labels []int, nClusters int) []models.SegmentCountryDistribution {
	totals := make(map[string]int)
	perSegment := make([]map[string]int, nClusters)
	emailsPerSegment := make([]map[string]int, nClusters)
	for c := range perSegment {
		perSegment[c] = make(map[string]int)
		emailsPerSegment[c] = make(map[string]int)
	}
	for i, cust := range customers {
		country := cust.MerchantCountry
		if country == "" {
			country = "Unknown"
		}
		totals[country]++
		perSegment[labels[i]][country]++
		if cust.CustomerEmail != "" {
			emailsPerSegment[labels[i]][country]++
		}
	}

	axis := make([]string, 0, len(totals))
	for country := range totals {
		axis = append(axis, country)
	}
	sort.Slice(axis, func(i, j int) bool {
		if totals[axis[i]] != totals[axis[j]] {
			return totals[axis[i]] > totals[axis[j]]
		}
		return axis[i] < axis[j]
	})

	out := make([]models.SegmentCountryDistribution, nClusters)
	for c := 0; c < nClusters; c++ {
		counts := make([]int, len(axis))
		pcts := make([]float64, len(axis))
		nEmails := make([]int, len(axis))
		var segTotal int
		for _, n := range perSegment[c] {
			segTotal += n
		}
		for i, country := range axis {
			counts[i] = perSegment[c][country]
			nEmails[i] = emailsPerSegment[c][country]
			if segTotal > 0 {
				pcts[i] = round2(100 * float64(counts[i]) / float64(segTotal))
			}
		}
		out[c] = models.SegmentCountryDistribution{
			SegmentIndex:  c + 1,
			CountryCodes:  axis,
			CountryNames:  axis,
			NCustomers:    counts,
			NCustomersPct: pcts,
			NEmails:       nEmails,
		}
	}
	return out
}

// cityDistribution counts the customers of every segment per normalized
// city, ordered by segment-local count descending.
func cityDistribution(customers []models.CustomerFeatures, labels []int, nClusters int) []models.SegmentCityDistribution {
	perSegment := make([]map[string]int, nClusters)
	for c := range perSegment {
		perSegment[c] = make(map[string]int)
	}
	for i, cust := range customers {
		perSegment[labels[i]][cityKey(cust.CustomerCity, cust.MerchantCountry)]++
	}

	out := make([]models.SegmentCityDistribution, nClusters)
	for c := 0; c < nClusters; c++ {
		cities := make([]string, 0, len(perSegment[c]))
		for city := range perSegment[c] {
			cities = append(cities, city)
		}
		sort.Slice(cities, func(i, j int) bool {
			if perSegment[c][cities[i]] != perSegment[c][cities[j]] {
				return perSegment[c][cities[i]] > perSegment[c][cities[j]]
			}
			return cities[i] < cities[j]
		})
		counts := make([]int, len(cities))
		for i, city := range cities {
			counts[i] = perSegment[c][city]
		}
		out[c] = models.SegmentCityDistribution{
			SegmentIndex: c + 1,
			Cities:       cities,
			NCustomers:   counts,
		}
	}
	return out
}

// cityKey normalizes free-form city names ("CITY OF LONDON", "london") to a
// single "London (GB)" style key.
func cityKey(city, country string) string {
	normalized := strings.ToLower(strings.TrimSpace(city))
	normalized = strings.TrimPrefix(normalized, "city of ")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		normalized = "unknown"
	}
	words := strings.Fields(normalized)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")
	if country == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, country)
}

func indexByCustomer(customers []models.CustomerFeatures) map[string]models.CustomerFeatures {
	out := make(map[string]models.CustomerFeatures, len(customers))
	for _, c := range customers {
		out[c.CustomerID] = c
	}
	return out
}

func transactionDateRange(transactions []models.Transaction) (time.Time, time.Time) {
	min, max := transactions[0].OccurredAt, transactions[0].OccurredAt
	for _, tx := range transactions[1:] {
		if tx.OccurredAt.Before(min) {
			min = tx.OccurredAt
		}
		if tx.OccurredAt.After(max) {
			max = tx.OccurredAt
		}
	}
	return min, max
}

// monthKey folds a date to a sortable year*12+month integer.
func monthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func monthKeyTime(key int) time.Time {
	return time.Date(key/12, time.Month(key%12+1), 1, 0, 0, 0, 0, time.UTC)
}

func monthRange(from, to time.Time) []int {
	start, end := monthKey(from), monthKey(to)
	months := make([]int, 0, end-start+1)
	for m := start; m <= end; m++ {
		months = append(months, m)
	}
	return months
}

func monthLabel(key int) string {
	return monthKeyTime(key).Format("Jan-06")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round4 is for fractional shares, round2 for monetary amounts.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
