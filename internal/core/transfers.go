package core

// DuplicateSet holds ids of transactions flagged as the two halves of a
// likely duplicate transfer. It is informational only: flagged items are
// never removed from the ledger or subtracted from the summary.
type DuplicateSet map[string]struct{}

// Has reports whether the given transaction id was flagged.
func (s DuplicateSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

type pairKey struct {
	name   string
	amount string
}

// MatchTransfers scans items in ascending created order and pairs opposite
// signed amounts against the same merchant or counterparty name, the way a
// pot withdrawal mirrors a pot deposit. Matching is greedy: each item pairs
// with the earliest still-unmatched complement and matches at most once.
// Items that are zero, declined or nameless never participate. Unmatched
// leftovers are discarded, not flagged.
func MatchTransfers(items []TransactionItem) DuplicateSet {
	dupes := make(DuplicateSet)
	pending := make(map[pairKey]string)
	for _, it := range items {
		if !aggregatable(it) {
			continue
		}
		name, ok := MatchName(it)
		if !ok {
			continue
		}
		amount := it.Amount.StringFixed(2)
		complement := pairKey{name: name, amount: it.Amount.Neg().StringFixed(2)}
		if other, found := pending[complement]; found {
			delete(pending, complement)
			dupes[it.ID] = struct{}{}
			dupes[other] = struct{}{}
			continue
		}
		// Keep the earliest candidate per key so the oldest complement
		// is the one consumed by a later match.
		key := pairKey{name: name, amount: amount}
		if _, taken := pending[key]; !taken {
			pending[key] = it.ID
		}
	}
	return dupes
}
