package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}

func item(t *testing.T, id, created string, minor int64) TransactionItem {
	t.Helper()
	return TransactionItem{
		ID:         id,
		Created:    mustTime(t, created),
		RawCreated: created,
		Amount:     FromMinorUnits(minor),
	}
}

func TestMonthKey(t *testing.T) {
	cases := []struct {
		created string
		want    string
	}{
		{"2023-01-31T23:59:59Z", "2023-01"},
		{"2023-02-01T00:00:00.500Z", "2023-02"},
		// The embedded offset is used as-is, never converted.
		{"2023-03-01T00:30:00+02:00", "2023-03"},
	}
	for i, tc := range cases {
		if got := MonthKey(mustTime(t, tc.created)); got != tc.want {
			t.Fatalf("case %d: MonthKey(%s) = %q, want %q", i, tc.created, got, tc.want)
		}
	}
}

func TestAggregateInboundOutbound(t *testing.T) {
	items := []TransactionItem{
		item(t, "a", "2023-01-02T10:00:00Z", 500),
		item(t, "b", "2023-01-05T10:00:00Z", -300),
		item(t, "c", "2023-01-08T10:00:00Z", 0), // zero amount, skipped
		item(t, "d", "2023-02-01T10:00:00Z", 1200),
	}
	items[1].Category = "groceries"
	declined := item(t, "e", "2023-02-02T10:00:00Z", -900)
	declined.DeclineReason = "INSUFFICIENT_FUNDS"
	items = append(items, declined)

	s := Aggregate(items)

	if got := s.Inbound["2023-01"].StringFixed(2); got != "5.00" {
		t.Fatalf("inbound 2023-01 = %s, want 5.00", got)
	}
	if got := s.Outbound["2023-01"].StringFixed(2); got != "-3.00" {
		t.Fatalf("outbound 2023-01 = %s, want -3.00", got)
	}
	if got := s.Inbound["2023-02"].StringFixed(2); got != "12.00" {
		t.Fatalf("inbound 2023-02 = %s, want 12.00", got)
	}
	// Declined item contributes nowhere.
	if got := s.Outbound["2023-02"]; !got.IsZero() {
		t.Fatalf("outbound 2023-02 = %s, want zero", got)
	}
	if got := s.Categories.Get("2023-01", "groceries").StringFixed(2); got != "-3.00" {
		t.Fatalf("categories[2023-01][groceries] = %s, want -3.00", got)
	}
	if months := s.Months(); len(months) != 2 || months[0] != "2023-01" || months[1] != "2023-02" {
		t.Fatalf("months = %v, want [2023-01 2023-02]", months)
	}
}

// The inbound totals over all months must equal the sum of every positive
// eligible amount; symmetric for outbound and negatives.
func TestAggregateSumProperty(t *testing.T) {
	items := []TransactionItem{
		item(t, "a", "2022-11-01T00:00:00Z", 1),
		item(t, "b", "2022-12-31T23:59:59Z", 250),
		item(t, "c", "2023-01-01T00:00:00Z", -99),
		item(t, "d", "2023-01-15T12:00:00Z", -1),
		item(t, "e", "2023-03-01T08:00:00Z", 123456),
		item(t, "f", "2023-03-02T08:00:00Z", 0),
	}
	s := Aggregate(items)

	var inbound, outbound decimal.Decimal
	for _, m := range s.Months() {
		inbound = inbound.Add(s.Inbound[m])
		outbound = outbound.Add(s.Outbound[m])
	}
	var wantIn, wantOut decimal.Decimal
	for _, it := range items {
		if it.Amount.IsZero() || it.DeclineReason != "" {
			continue
		}
		if it.Amount.Sign() > 0 {
			wantIn = wantIn.Add(it.Amount)
		} else {
			wantOut = wantOut.Add(it.Amount)
		}
	}
	if !inbound.Equal(wantIn) {
		t.Fatalf("inbound total = %s, want %s", inbound, wantIn)
	}
	if !outbound.Equal(wantOut) {
		t.Fatalf("outbound total = %s, want %s", outbound, wantOut)
	}
}

func TestMerchantResolution(t *testing.T) {
	base := "2023-01-01T00:00:00Z"
	cases := []struct {
		merchant, counterparty string
		isLoad                 bool
		want                   string
	}{
		{"Acme", "Bob", false, "Acme"},
		{"", "Bob", false, "Bob"},
		{"", "", true, TopUpLabel},
		{"", "", false, ""},
	}
	for i, tc := range cases {
		it := item(t, "x", base, 100)
		it.Merchant = tc.merchant
		it.Counterparty = tc.counterparty
		it.IsLoad = tc.isLoad
		if got := MerchantLabel(it); got != tc.want {
			t.Fatalf("case %d: MerchantLabel = %q, want %q", i, got, tc.want)
		}
		s := Aggregate([]TransactionItem{it})
		if got := s.Merchants.Get("2023-01", tc.want).StringFixed(2); got != "1.00" {
			t.Fatalf("case %d: merchants[2023-01][%q] = %s, want 1.00", i, tc.want, got)
		}
	}
}

func TestBreakdownDefaults(t *testing.T) {
	b := make(Breakdown)
	if got := b.Get("2023-01", "missing"); !got.IsZero() {
		t.Fatalf("absent key = %s, want zero", got)
	}
	b.Add("2023-01", "b", FromMinorUnits(100))
	b.Add("2023-01", "a", FromMinorUnits(200))
	b.Add("2023-01", "a", FromMinorUnits(50))
	if got := b.Get("2023-01", "a").StringFixed(2); got != "2.50" {
		t.Fatalf("accumulated = %s, want 2.50", got)
	}
	if labels := b.Labels("2023-01"); len(labels) != 2 || labels[0] != "a" || labels[1] != "b" {
		t.Fatalf("labels = %v, want [a b]", labels)
	}
}
