package monzo

import (
	"fmt"
	"time"

	"mondash/internal/core"
)

// The upstream emits timestamps in two ISO-8601 forms, with and without
// fractional seconds. Anything else is a contract change and must fail.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
}

// ParseError reports an upstream value that matched none of the accepted
// formats. It is never silently coerced.
type ParseError struct {
	Field string
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("monzo: cannot parse %s %q", e.Field, e.Value)
}

func parseTimestamp(field, value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &ParseError{Field: field, Value: value}
}

type accountPayload struct {
	ID          string `json:"id"`
	Closed      bool   `json:"closed"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func (p accountPayload) normalize() core.Account {
	return core.Account{
		ID:          p.ID,
		Closed:      p.Closed,
		Description: p.Description,
		Type:        p.Type,
	}
}

type potPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
	Deleted bool   `json:"deleted"`
}

func (p potPayload) normalize() core.Pot {
	return core.Pot{
		ID:      p.ID,
		Name:    p.Name,
		Balance: core.FromMinorUnits(p.Balance),
		Deleted: p.Deleted,
	}
}

type balancePayload struct {
	Balance      int64  `json:"balance"`
	TotalBalance int64  `json:"total_balance"`
	SpendToday   int64  `json:"spend_today"`
	Currency     string `json:"currency"`
}

func (p balancePayload) normalize() core.Balance {
	return core.Balance{
		Balance:      core.FromMinorUnits(p.Balance),
		TotalBalance: core.FromMinorUnits(p.TotalBalance),
		SpendToday:   core.FromMinorUnits(p.SpendToday),
		Currency:     p.Currency,
	}
}

type namedParty struct {
	Name string `json:"name"`
}

type transactionPayload struct {
	ID            string      `json:"id"`
	Created       string      `json:"created"`
	Amount        int64       `json:"amount"`
	Currency      string      `json:"currency"`
	Description   string      `json:"description"`
	Merchant      *namedParty `json:"merchant"`
	Counterparty  *namedParty `json:"counterparty"`
	Category      string      `json:"category"`
	DeclineReason string      `json:"decline_reason"`
	IsLoad        bool        `json:"is_load"`
}

func (p transactionPayload) normalize() (core.TransactionItem, error) {
	created, err := parseTimestamp("transaction created", p.Created)
	if err != nil {
		return core.TransactionItem{}, err
	}
	it := core.TransactionItem{
		ID:            p.ID,
		Created:       created,
		RawCreated:    p.Created,
		Amount:        core.FromMinorUnits(p.Amount),
		Currency:      p.Currency,
		Description:   p.Description,
		Category:      p.Category,
		DeclineReason: p.DeclineReason,
		IsLoad:        p.IsLoad,
	}
	if p.Merchant != nil {
		it.Merchant = p.Merchant.Name
	}
	if p.Counterparty != nil {
		it.Counterparty = p.Counterparty.Name
	}
	return it, nil
}
