package core

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Account is a bank account as reported upstream. Description and Type
	// are pass-through display metadata.
	Account struct {
		ID          string
		Closed      bool
		Description string
		Type        string
	}

	// Pot is a savings pot with its balance already normalized to a
	// decimal currency value.
	Pot struct {
		ID      string
		Name    string
		Balance decimal.Decimal
		Deleted bool
	}

	// Balance is the current balance of a single account.
	Balance struct {
		Balance      decimal.Decimal
		TotalBalance decimal.Decimal
		SpendToday   decimal.Decimal
		Currency     string
	}

	// TransactionItem is one normalized ledger entry. Amount is signed:
	// positive is inbound, negative is outbound. RawCreated keeps the
	// upstream timestamp string untouched so it can serve as a fetch cursor.
	TransactionItem struct {
		ID            string
		Created       time.Time
		RawCreated    string
		Amount        decimal.Decimal
		Currency      string
		Description   string
		Merchant      string
		Counterparty  string
		Category      string
		DeclineReason string
		IsLoad        bool
	}

	// Ledger is the per-user cached collection: accounts, pots and the full
	// transaction list in ascending created order.
	Ledger struct {
		Accounts []Account
		Pots     []Pot
		Items    []TransactionItem
	}
)

// DefaultAccount returns the first account that is not closed.
func (l Ledger) DefaultAccount() (Account, bool) {
	for _, a := range l.Accounts {
		if !a.Closed {
			return a, true
		}
	}
	return Account{}, false
}

// AccountIDs returns the ids of all accounts in order.
func (l Ledger) AccountIDs() []string {
	ids := make([]string, len(l.Accounts))
	for i, a := range l.Accounts {
		ids[i] = a.ID
	}
	return ids
}

// LastCursor returns the raw created timestamp of the newest cached item,
// or "" when the ledger holds no items yet.
func (l Ledger) LastCursor() string {
	if len(l.Items) == 0 {
		return ""
	}
	return l.Items[len(l.Items)-1].RawCreated
}
