// Package ledger holds the per-user cache of accounts, pots and the full
// ascending transaction list, and orchestrates full and incremental
// refreshes against the upstream client.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"mondash/internal/core"
)

// Fetcher is the upstream port the cache refreshes through. *monzo.Client
// satisfies it.
type Fetcher interface {
	Accounts(ctx context.Context) ([]core.Account, error)
	Pots(ctx context.Context) ([]core.Pot, error)
	TransactionsSince(ctx context.Context, accountIDs []string, since string) ([]core.TransactionItem, error)
}

type entry struct {
	mu        sync.Mutex
	populated bool
	ledger    core.Ledger
}

// Cache keys ledgers by opaque user id. Refreshes for the same user hold
// that user's lock across the whole read-fetch-append cycle, so concurrent
// requests serialize instead of losing appends; different users never
// contend. Entries live until Invalidate — there is no expiry.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

func (c *Cache) entryFor(userID string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok {
		e = &entry{}
		c.entries[userID] = e
	}
	return e
}

// GetOrRefresh returns the user's ledger after syncing it with upstream,
// along with the number of newly appended items. The first call performs a
// full fetch; later calls refresh accounts and pots wholesale and append
// only transactions newer than the last cached item. The returned ledger
// is a snapshot: callers may read it without holding any lock.
func (c *Cache) GetOrRefresh(ctx context.Context, userID string, f Fetcher) (core.Ledger, int, error) {
	e := c.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	var (
		accounts []core.Account
		pots     []core.Pot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accounts, err = f.Accounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		pots, err = f.Pots(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Ledger{}, 0, fmt.Errorf("refresh accounts and pots: %w", err)
	}
	e.ledger.Accounts = accounts
	e.ledger.Pots = pots

	cursor := ""
	if e.populated {
		cursor = e.ledger.LastCursor()
	}
	items, err := f.TransactionsSince(ctx, e.ledger.AccountIDs(), cursor)
	if err != nil {
		return core.Ledger{}, 0, fmt.Errorf("fetch transactions since %q: %w", cursor, err)
	}
	appended := e.appendItems(items)
	e.populated = true

	slog.DebugContext(ctx, "Ledger refreshed",
		"user", userID,
		"new_items", appended,
		"total_items", len(e.ledger.Items))
	return e.snapshot(), appended, nil
}

// appendItems grows the ascending item list, skipping any id already
// cached, and returns how many items were added. The fetch cursor keeps
// the merge exclusive; the id check holds the no-duplicate invariant even
// against a misbehaving upstream.
func (e *entry) appendItems(items []core.TransactionItem) int {
	if len(items) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(e.ledger.Items))
	for _, it := range e.ledger.Items {
		seen[it.ID] = struct{}{}
	}
	appended := 0
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		e.ledger.Items = append(e.ledger.Items, it)
		appended++
	}
	return appended
}

func (e *entry) snapshot() core.Ledger {
	return core.Ledger{
		Accounts: append([]core.Account(nil), e.ledger.Accounts...),
		Pots:     append([]core.Pot(nil), e.ledger.Pots...),
		Items:    append([]core.TransactionItem(nil), e.ledger.Items...),
	}
}

// Invalidate drops the user's entry unconditionally. Absent entries are a
// no-op.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// Size returns the number of cached users.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
