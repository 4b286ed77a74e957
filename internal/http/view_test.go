package http

import (
	"testing"
	"time"

	"mondash/internal/core"
)

func tx(id, created string, minor int64, merchant string) core.TransactionItem {
	ts, _ := time.Parse(time.RFC3339, created)
	return core.TransactionItem{
		ID:         id,
		Created:    ts,
		RawCreated: created,
		Amount:     core.FromMinorUnits(minor),
		Merchant:   merchant,
		Category:   "general",
	}
}

func TestBuildDashboard(t *testing.T) {
	led := core.Ledger{
		Accounts: []core.Account{
			{ID: "acc_closed", Closed: true, Description: "Old"},
			{ID: "acc_open", Description: "Current"},
		},
		Pots: []core.Pot{{ID: "pot_1", Name: "Savings", Balance: core.FromMinorUnits(1000)}},
		Items: []core.TransactionItem{
			tx("tx_1", "2023-04-10T08:00:00Z", -500, "Shop"),
			tx("tx_2", "2023-05-10T08:00:00Z", 500, "Shop"),
			tx("tx_3", "2023-05-11T08:00:00Z", -500, "Shop"),
		},
	}
	balances := map[string]core.Balance{
		"acc_open": {Balance: core.FromMinorUnits(12345), Currency: "GBP"},
	}
	summary := core.Aggregate(led.Items)
	dupes := core.MatchTransfers(led.Items)

	data := buildDashboard("user_1", led, balances, summary, dupes)

	if len(data.Accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(data.Accounts))
	}
	if data.Accounts[0].Default || !data.Accounts[1].Default {
		t.Fatalf("default should be the first non-closed account: %+v", data.Accounts)
	}
	if data.Accounts[1].Balance != "123.45" {
		t.Fatalf("balance = %q", data.Accounts[1].Balance)
	}

	// Months newest first.
	if len(data.Months) != 2 || data.Months[0].Key != "2023-05" || data.Months[1].Key != "2023-04" {
		t.Fatalf("months out of order: %+v", data.Months)
	}
	if data.Months[0].Title != "May 2023" {
		t.Fatalf("month title = %q", data.Months[0].Title)
	}

	// Items newest first. The earliest -5.00 pairs with the +5.00, so the
	// trailing -5.00 stays unflagged.
	if data.Items[0].Date != "11 May 2023" {
		t.Fatalf("items not newest first: %+v", data.Items[0])
	}
	if data.Items[0].Duplicate || !data.Items[1].Duplicate || !data.Items[2].Duplicate {
		t.Fatalf("duplicate flags wrong: %+v", data.Items)
	}
	if data.DuplicateCount != 2 {
		t.Fatalf("duplicate count = %d, want 2", data.DuplicateCount)
	}
}

func TestValidSessionID(t *testing.T) {
	cases := []struct {
		id string
		ok bool
	}{
		{"0123456789abcdef0123456789abcdef", true},
		{"sess_1700000000000000000", true},
		{"", false},
		{"short", false},
		{"<script>alert(1)</script>", false},
		{"0123456789ABCDEF0123456789ABCDEF", false},
	}
	for i, tc := range cases {
		if got := validSessionID(tc.id); got != tc.ok {
			t.Fatalf("case %d (%q): got %v, want %v", i, tc.id, got, tc.ok)
		}
	}
}
