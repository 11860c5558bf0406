package services

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	captureShare     = 0.92
	returnShare      = 0.03
	txPerCustomer    = 6
	minAmount        = 5.0
	maxAmount        = 450.0
	defaultSpanYears = 1
)

type merchantProfile struct {
	Account string
	Name    string
	OrgUnit string
	Country string
}

type transactionGenerator struct {
	merchantPool []merchantProfile
	faker        *gofakeit.Faker
	rng          *rand.Rand
}

// NewTransactionGenerator creates a synthetic transaction generator for
// development seeding.
func NewTransactionGenerator() TransactionGeneratorInterface {
	seed := time.Now().UnixNano()
	faker := gofakeit.New(uint64(seed))
	return &transactionGenerator{
		merchantPool: initializeMerchantPool(faker),
		faker:        faker,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// initializeMerchantPool builds a fixed set of merchant accounts spread
// over a handful of organizational units and countries, so every grouping
// dimension has a few distinct values to partition by.
func initializeMerchantPool(faker *gofakeit.Faker) []merchantProfile {
	orgUnits := []string{"Retail Europe", "Retail Nordics", "Travel", "Digital Goods"}
	countries := []string{"DE", "FR", "NL", "GB", "SE", "ES"}

	pool := make([]merchantProfile, 0, 24)
	for i := 0; i < 24; i++ {
		name := faker.Company()
		pool = append(pool, merchantProfile{
			Account: fmt.Sprintf("%s-%03d", abbreviate(name), i+1),
			Name:    name,
			OrgUnit: orgUnits[i%len(orgUnits)],
			Country: countries[i%len(countries)],
		})
	}
	return pool
}

func abbreviate(name string) string {
	out := make([]rune, 0, 3)
	for _, r := range name {
		if r >= 'A' && r <= 'Z' {
			out = append(out, r)
		}
		if len(out) == 3 {
			break
		}
	}
	if len(out) == 0 {
		return "MRC"
	}
	return string(out)
}

// GenerateTransactions produces count transactions over the default one
// year span ending now.
func (g *transactionGenerator) GenerateTransactions(count int) []models.Transaction {
	end := time.Now().UTC().Truncate(time.Hour)
	start := end.AddDate(-defaultSpanYears, 0, 0)
	return g.GenerateTransactionsInWindow(count, models.TimeWindow{Start: start, End: end})
}

type customerProfile struct {
	id      string
	name    string
	email   string
	city    string
	weight  int
	regular *merchantProfile
}

// GenerateTransactionsInWindow produces count transactions within the
// window. Customers follow a skewed loyalty distribution: a few heavy
// repeaters, a long tail of one-time buyers, which gives the analysis
// engines realistic one-time/repeat splits to chew on.
func (g *transactionGenerator) GenerateTransactionsInWindow(count int, window models.TimeWindow) []models.Transaction {
	if count <= 0 {
		return []models.Transaction{}
	}

	nCustomers := count / txPerCustomer
	if nCustomers < 1 {
		nCustomers = 1
	}

	customers := make([]customerProfile, nCustomers)
	var totalWeight int
	for i := range customers {
		weight := 1
		if g.rng.Float64() < 0.4 {
			weight = 2 + g.rng.Intn(12)
		}
		customers[i] = customerProfile{
			id:      uuid.NewString(),
			name:    g.faker.Name(),
			email:   g.faker.Email(),
			city:    g.faker.City(),
			weight:  weight,
			regular: &g.merchantPool[g.rng.Intn(len(g.merchantPool))],
		}
		totalWeight += weight
	}

	span := window.End.Sub(window.Start)
	transactions := make([]models.Transaction, 0, count)
	for i := 0; i < count; i++ {
		customer := customers[g.pickWeighted(customers, totalWeight)]

		merchant := customer.regular
		if g.rng.Float64() < 0.25 {
			merchant = &g.merchantPool[g.rng.Intn(len(g.merchantPool))]
		}

		occurredAt := window.Start.Add(time.Duration(g.rng.Int63n(int64(span))))
		roll := g.rng.Float64()

		transactions = append(transactions, models.Transaction{
			ID:              uuid.New(),
			CustomerID:      customer.id,
			CustomerName:    customer.name,
			CustomerEmail:   customer.email,
			CustomerCity:    customer.city,
			OccurredAt:      occurredAt,
			Amount:          decimal.NewFromFloat(g.faker.Price(minAmount, maxAmount)),
			IsCapture:       roll < captureShare,
			IsReturn:        roll >= captureShare && roll < captureShare+returnShare,
			MerchantAccount: merchant.Account,
			MerchantName:    merchant.Name,
			OrgUnit:         merchant.OrgUnit,
			MerchantCountry: merchant.Country,
			CardCategory:    g.faker.RandomString([]string{"credit", "debit", "prepaid"}),
			CreatedAt:       occurredAt,
		})
	}
	return transactions
}

func (g *transactionGenerator) pickWeighted(customers []customerProfile, totalWeight int) int {
	target := g.rng.Intn(totalWeight)
	var cumulative int
	for i, c := range customers {
		cumulative += c.weight
		if cumulative > target {
			return i
		}
	}
	return len(customers) - 1
}
