// Package monzo is the normalizing client for the upstream banking API.
// Wire payloads (minor-unit integers, textual timestamps) are converted to
// domain values at this boundary; nothing loosely typed leaks downstream.
package monzo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"mondash/internal/core"
)

// DefaultAPIURL is the upstream REST host.
const DefaultAPIURL = "https://api.monzo.com"

// ErrNotAuthorized marks an upstream 401: the stored credential was
// rejected and the caller must re-run authentication. Every other
// non-success response surfaces as an *APIError.
var ErrNotAuthorized = errors.New("monzo: not authorized")

// APIError is any non-success upstream response other than a 401. It is
// fatal for the current request and never retried.
type APIError struct {
	Status int
	Path   string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("monzo: GET %s: unexpected status %d", e.Path, e.Status)
}

// Client calls the upstream API with a bearer token and returns normalized
// domain values. One attempt per operation; no retries.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// New returns a client for the default upstream host.
func New(token string) *Client {
	return NewWithBaseURL(DefaultAPIURL, token)
}

// NewWithBaseURL returns a client against a specific host. Tests point this
// at an httptest server.
func NewWithBaseURL(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	slog.DebugContext(ctx, "API call", "method", http.MethodGet, "path", path)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrNotAuthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{Status: resp.StatusCode, Path: path, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// WhoAmI returns the opaque user id of the token's owner.
func (c *Client) WhoAmI(ctx context.Context) (string, error) {
	var payload struct {
		UserID string `json:"user_id"`
	}
	if err := c.get(ctx, "/ping/whoami", nil, &payload); err != nil {
		return "", err
	}
	return payload.UserID, nil
}

// Accounts fetches all accounts, open and closed.
func (c *Client) Accounts(ctx context.Context) ([]core.Account, error) {
	var payload struct {
		Accounts []accountPayload `json:"accounts"`
	}
	if err := c.get(ctx, "/accounts", nil, &payload); err != nil {
		return nil, err
	}
	accounts := make([]core.Account, len(payload.Accounts))
	for i, a := range payload.Accounts {
		accounts[i] = a.normalize()
	}
	return accounts, nil
}

// Pots fetches all pots with normalized balances.
func (c *Client) Pots(ctx context.Context) ([]core.Pot, error) {
	var payload struct {
		Pots []potPayload `json:"pots"`
	}
	if err := c.get(ctx, "/pots", nil, &payload); err != nil {
		return nil, err
	}
	pots := make([]core.Pot, 0, len(payload.Pots))
	for _, p := range payload.Pots {
		if p.Deleted {
			continue
		}
		pots = append(pots, p.normalize())
	}
	return pots, nil
}

// Balance fetches the current balance of one account.
func (c *Client) Balance(ctx context.Context, accountID string) (core.Balance, error) {
	var payload balancePayload
	params := url.Values{"account_id": {accountID}}
	if err := c.get(ctx, "/balance", params, &payload); err != nil {
		return core.Balance{}, err
	}
	return payload.normalize(), nil
}

// Balances fetches every account's balance concurrently and joins the
// results into a map keyed by account id.
func (c *Client) Balances(ctx context.Context, accountIDs []string) (map[string]core.Balance, error) {
	balances := make(map[string]core.Balance, len(accountIDs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range accountIDs {
		g.Go(func() error {
			b, err := c.Balance(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			balances[id] = b
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return balances, nil
}

// Transactions fetches one account's transactions, merchant-expanded,
// optionally since a cursor. The upstream treats since as inclusive, so any
// item whose raw created timestamp equals the cursor is dropped here to
// keep the merge cursor-exclusive.
func (c *Client) Transactions(ctx context.Context, accountID, since string) ([]core.TransactionItem, error) {
	params := url.Values{
		"account_id": {accountID},
		"expand[]":   {"merchant"},
	}
	if since != "" {
		params.Set("since", since)
	}
	var payload struct {
		Transactions []transactionPayload `json:"transactions"`
	}
	if err := c.get(ctx, "/transactions", params, &payload); err != nil {
		return nil, err
	}
	items := make([]core.TransactionItem, 0, len(payload.Transactions))
	for _, tx := range payload.Transactions {
		if since != "" && tx.Created == since {
			continue
		}
		it, err := tx.normalize()
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// TransactionsSince fans out one fetch per account and merges the results
// into a single sequence ascending by created time.
func (c *Client) TransactionsSince(ctx context.Context, accountIDs []string, since string) ([]core.TransactionItem, error) {
	perAccount := make([][]core.TransactionItem, len(accountIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range accountIDs {
		g.Go(func() error {
			items, err := c.Transactions(gctx, id, since)
			if err != nil {
				return err
			}
			perAccount[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var merged []core.TransactionItem
	for _, items := range perAccount {
		merged = append(merged, items...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Created.Before(merged[j].Created)
	})
	return merged, nil
}
