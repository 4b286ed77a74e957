package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// TopUpLabel is the merchant bucket for incoming top-ups that carry no
// merchant or counterparty name.
const TopUpLabel = "Top-up"

// Breakdown is a two-level month -> label -> amount map. Absent keys read
// as zero, so callers never need to pre-populate months.
type Breakdown map[string]map[string]decimal.Decimal

// Add accumulates amt under the given month and label.
func (b Breakdown) Add(month, label string, amt decimal.Decimal) {
	row, ok := b[month]
	if !ok {
		row = make(map[string]decimal.Decimal)
		b[month] = row
	}
	row[label] = row[label].Add(amt)
}

// Get returns the accumulated amount for month/label, zero when absent.
func (b Breakdown) Get(month, label string) decimal.Decimal {
	return b[month][label]
}

// Labels returns the labels recorded for a month in sorted order.
func (b Breakdown) Labels(month string) []string {
	row := b[month]
	labels := make([]string, 0, len(row))
	for l := range row {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Summary is the derived monthly view of a ledger: inbound and outbound
// totals plus category and merchant breakdowns, all keyed by "YYYY-MM".
type Summary struct {
	Inbound    map[string]decimal.Decimal
	Outbound   map[string]decimal.Decimal
	Categories Breakdown
	Merchants  Breakdown
}

// Months returns every month present in the summary, ascending. "YYYY-MM"
// keys sort lexicographically into chronological order.
func (s Summary) Months() []string {
	seen := make(map[string]struct{})
	for m := range s.Inbound {
		seen[m] = struct{}{}
	}
	for m := range s.Outbound {
		seen[m] = struct{}{}
	}
	months := make([]string, 0, len(seen))
	for m := range seen {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

// MonthKey formats a timestamp as "YYYY-MM" in the timestamp's own
// location. No timezone conversion happens here.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// aggregatable reports whether an item participates in sums and matching.
// Zero-amount and declined items stay in the ledger but count nowhere.
func aggregatable(it TransactionItem) bool {
	return !it.Amount.IsZero() && it.DeclineReason == ""
}

// MatchName resolves the name used for transfer matching: the merchant
// name, else the counterparty name. Items with neither are not matchable.
func MatchName(it TransactionItem) (string, bool) {
	if it.Merchant != "" {
		return it.Merchant, true
	}
	if it.Counterparty != "" {
		return it.Counterparty, true
	}
	return "", false
}

// MerchantLabel resolves the display bucket for the merchant breakdown:
// merchant name, else counterparty name, else "Top-up" for loads, else "".
func MerchantLabel(it TransactionItem) string {
	if name, ok := MatchName(it); ok {
		return name
	}
	if it.IsLoad {
		return TopUpLabel
	}
	return ""
}

// Aggregate recomputes the monthly summary from the full item list. It is a
// pure function: callers pass the ledger's current items on every cycle.
func Aggregate(items []TransactionItem) Summary {
	s := Summary{
		Inbound:    make(map[string]decimal.Decimal),
		Outbound:   make(map[string]decimal.Decimal),
		Categories: make(Breakdown),
		Merchants:  make(Breakdown),
	}
	for _, it := range items {
		if !aggregatable(it) {
			continue
		}
		month := MonthKey(it.Created)
		if it.Amount.Sign() > 0 {
			s.Inbound[month] = s.Inbound[month].Add(it.Amount)
		} else {
			s.Outbound[month] = s.Outbound[month].Add(it.Amount)
		}
		s.Categories.Add(month, it.Category, it.Amount)
		s.Merchants.Add(month, MerchantLabel(it), it.Amount)
	}
	return s
}
