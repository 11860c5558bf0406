// Package ingest binds external tabular transaction exports onto the fixed
// transaction schema. Column labels are resolved once, against the header
// row; rows are parsed against that binding and never re-resolved.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/CassandraOfTroy/analytics-customer-fintech-analysis/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyInput = errors.New("input contains no transaction rows")
)

// Rejection reasons attached to rows that could not be converted.
const (
	ReasonMalformedRow    = "malformed_row"
	ReasonInvalidAmount   = "invalid_amount"
	ReasonInvalidDate     = "invalid_date"
	ReasonNegativeAmount  = "negative_amount"
	ReasonMissingCustomer = "missing_customer_id"
)

// MissingColumnsError reports the required columns absent from the header
// row. Detected before any row is parsed.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("required columns missing: %s", strings.Join(e.Columns, ", "))
}

// RejectedRow records one input row that was skipped, with the line number
// of the row in the source file (header is line 1).
type RejectedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of one import: the accepted transactions plus the
// rows that were skipped. A partially rejected file is not an error.
type Result struct {
	Transactions []models.Transaction `json:"-"`
	Accepted     int                  `json:"accepted"`
	Rejected     []RejectedRow        `json:"rejected,omitempty"`
}

// Header labels recognized for each schema field. Matching is
// case-insensitive after trimming; the first listed alias that appears in
// the header wins.
var (
	requiredColumns = map[string][]string{
		"customer_id": {"customer_id", "psp_customer_id", "customer id"},
		"occurred_at": {"occurred_at", "transaction_date", "creation_date", "transaction date"},
		"amount":      {"amount", "amount_eur", "amount_in_eur", "amount (eur)"},
		"is_capture":  {"is_capture", "transaction_is_capture", "captured"},
		"is_return":   {"is_return", "transaction_is_return", "refunded"},
	}
	optionalColumns = map[string][]string{
		"customer_name":    {"customer_name", "shopper_name", "customer name"},
		"customer_email":   {"customer_email", "shopper_email", "customer email"},
		"customer_city":    {"customer_city", "shopper_city", "customer city"},
		"merchant_account": {"merchant_account", "account_name", "shop_name", "merchant account"},
		"merchant_name":    {"merchant_name", "merchant name"},
		"org_unit":         {"org_unit", "org unit"},
		"merchant_country": {"merchant_country", "shop_country", "merchant country"},
		"card_category":    {"card_category", "card category"},
	}
)

// Timestamp layouts tried in order when parsing the occurrence date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-01-2006",
}

// columnBinding maps schema fields to header positions. Optional fields
// absent from the header map to -1.
type columnBinding map[string]int

// CSVAdapter converts CSV exports into transaction records.
type CSVAdapter struct{}

// NewCSVAdapter creates a new CSV ingestion adapter
func NewCSVAdapter() *CSVAdapter {
	return &CSVAdapter{}
}

// Parse reads the full CSV stream and converts each row. It returns a
// MissingColumnsError when the header lacks required columns and
// ErrEmptyInput when the file holds a header but no data rows. Individual
// bad rows are collected as rejections, never a run-wide failure.
func (a *CSVAdapter) Parse(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	binding, missing := bindColumns(header)
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	result := &Result{}
	line := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedRow{
				Line:   line,
				Reason: ReasonMalformedRow,
				Detail: err.Error(),
			})
			continue
		}

		tx, reject := convertRow(record, binding)
		if reject != nil {
			reject.Line = line
			result.Rejected = append(result.Rejected, *reject)
			continue
		}

		result.Transactions = append(result.Transactions, *tx)
	}

	if len(result.Transactions) == 0 && len(result.Rejected) == 0 {
		return nil, ErrEmptyInput
	}

	result.Accepted = len(result.Transactions)
	if len(result.Rejected) > 0 {
		slog.Warn("import skipped rows", "accepted", result.Accepted, "rejected", len(result.Rejected))
	}

	return result, nil
}

// bindColumns resolves header labels onto schema fields. Returns the
// binding and the list of required fields with no matching column.
func bindColumns(header []string) (columnBinding, []string) {
	index := make(map[string]int, len(header))
	for i, label := range header {
		index[normalizeLabel(label)] = i
	}

	binding := make(columnBinding)
	var missing []string

	for field, aliases := range requiredColumns {
		if pos, ok := lookupAlias(index, aliases); ok {
			binding[field] = pos
		} else {
			missing = append(missing, field)
		}
	}
	for field, aliases := range optionalColumns {
		if pos, ok := lookupAlias(index, aliases); ok {
			binding[field] = pos
		} else {
			binding[field] = -1
		}
	}

	sort.Strings(missing)
	return binding, missing
}

func lookupAlias(index map[string]int, aliases []string) (int, bool) {
	for _, alias := range aliases {
		if pos, ok := index[alias]; ok {
			return pos, true
		}
	}
	return 0, false
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

func convertRow(record []string, binding columnBinding) (*models.Transaction, *RejectedRow) {
	field := func(name string) string {
		pos := binding[name]
		if pos < 0 || pos >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[pos])
	}

	customerID := field("customer_id")
	if customerID == "" {
		return nil, &RejectedRow{Reason: ReasonMissingCustomer}
	}

	occurredAt, err := parseDate(field("occurred_at"))
	if err != nil {
		return nil, &RejectedRow{Reason: ReasonInvalidDate, Detail: err.Error()}
	}

	amount, err := decimal.NewFromString(field("amount"))
	if err != nil {
		return nil, &RejectedRow{Reason: ReasonInvalidAmount, Detail: err.Error()}
	}
	if amount.IsNegative() {
		return nil, &RejectedRow{Reason: ReasonNegativeAmount}
	}

	return &models.Transaction{
		CustomerID:      customerID,
		CustomerName:    field("customer_name"),
		CustomerEmail:   field("customer_email"),
		CustomerCity:    field("customer_city"),
		MerchantAccount: field("merchant_account"),
		MerchantName:    field("merchant_name"),
		OrgUnit:         field("org_unit"),
		MerchantCountry: field("merchant_country"),
		CardCategory:    field("card_category"),
		Amount:          amount,
		IsCapture:       parseBool(field("is_capture")),
		IsReturn:        parseBool(field("is_return")),
		OccurredAt:      occurredAt,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1", "yes", "y", "t":
		return true
	}
	return false
}
