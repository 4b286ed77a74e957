package http

import (
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"mondash/internal/core"
)

// View model passed to dashboard.html. All amounts arrive pre-formatted so
// the template stays presentation-only.
type dashboardData struct {
	UserID         string
	Accounts       []accountView
	Pots           []potView
	Months         []monthView
	Items          []itemView
	DuplicateCount int
}

type accountView struct {
	ID          string
	Description string
	Type        string
	Default     bool
	Closed      bool
	Balance     string
	SpendToday  string
	Currency    string
}

type potView struct {
	Name    string
	Balance string
}

type breakdownRow struct {
	Label    string
	Amount   string
	Negative bool
}

type monthView struct {
	Key         string
	Title       string
	Inbound     string
	Outbound    string
	Net         string
	NetNegative bool
	Categories  []breakdownRow
	Merchants   []breakdownRow
}

type itemView struct {
	Date        string
	Description string
	Merchant    string
	Category    string
	Amount      string
	Negative    bool
	Declined    bool
	Duplicate   bool
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}
}

func amountString(d decimal.Decimal) string {
	return core.FormatAmount(d, true)
}

// monthTitle renders a "YYYY-MM" key as "January 2006". Keys come from
// MonthKey so a parse failure cannot happen in practice; fall back to the
// raw key anyway.
func monthTitle(key string) string {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return t.Format("January 2006")
}

func buildDashboard(userID string, led core.Ledger, balances map[string]core.Balance, summary core.Summary, dupes core.DuplicateSet) dashboardData {
	data := dashboardData{
		UserID:         userID,
		DuplicateCount: len(dupes),
	}

	defaultAcc, hasDefault := led.DefaultAccount()
	for _, a := range led.Accounts {
		av := accountView{
			ID:          a.ID,
			Description: a.Description,
			Type:        a.Type,
			Default:     hasDefault && a.ID == defaultAcc.ID,
			Closed:      a.Closed,
		}
		if b, ok := balances[a.ID]; ok {
			av.Balance = amountString(b.Balance)
			av.SpendToday = amountString(b.SpendToday)
			av.Currency = b.Currency
		}
		data.Accounts = append(data.Accounts, av)
	}

	for _, p := range led.Pots {
		data.Pots = append(data.Pots, potView{Name: p.Name, Balance: amountString(p.Balance)})
	}

	// Newest month first.
	months := summary.Months()
	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		in, out := summary.Inbound[m], summary.Outbound[m]
		net := in.Add(out)
		mv := monthView{
			Key:         m,
			Title:       monthTitle(m),
			Inbound:     amountString(in),
			Outbound:    amountString(out),
			Net:         amountString(net),
			NetNegative: net.Sign() < 0,
		}
		for _, label := range summary.Categories.Labels(m) {
			amt := summary.Categories.Get(m, label)
			mv.Categories = append(mv.Categories, breakdownRow{
				Label:    label,
				Amount:   amountString(amt),
				Negative: amt.Sign() < 0,
			})
		}
		for _, label := range summary.Merchants.Labels(m) {
			amt := summary.Merchants.Get(m, label)
			mv.Merchants = append(mv.Merchants, breakdownRow{
				Label:    label,
				Amount:   amountString(amt),
				Negative: amt.Sign() < 0,
			})
		}
		data.Months = append(data.Months, mv)
	}

	// Newest item first.
	for i := len(led.Items) - 1; i >= 0; i-- {
		it := led.Items[i]
		data.Items = append(data.Items, itemView{
			Date:        it.Created.Format("02 Jan 2006"),
			Description: it.Description,
			Merchant:    core.MerchantLabel(it),
			Category:    it.Category,
			Amount:      amountString(it.Amount),
			Negative:    it.Amount.Sign() < 0,
			Declined:    it.DeclineReason != "",
			Duplicate:   dupes.Has(it.ID),
		})
	}

	return data
}
