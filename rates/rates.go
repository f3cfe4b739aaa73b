// Package rates fetches spot foreign-exchange rates from a public JSON
// endpoint and caches them in the key/value store. Rates are a convenience
// for reporting; every lookup is best effort and callers must tolerate a
// missing rate.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/finbook/finbook/store"
)

// endpoint returns {"result":"success","rates":{"EUR":0.92,...}} for a base
// currency.
const endpoint = "https://open.er-api.com/v6/latest/"

const cachePrefix = "rates:"

// cacheTTL bounds how stale a cached table may be before a refetch.
const cacheTTL = 24 * time.Hour

type cached struct {
	FetchedAt int64              `json:"fetchedAt"`
	Rates     map[string]float64 `json:"rates"`
}

// Service resolves exchange rates, remembering fetched tables in the store.
type Service struct {
	Client *http.Client
	KV     store.KV
	// Now is the clock used for cache expiry; defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Rate returns how many units of quote one unit of base buys.
func (s *Service) Rate(ctx context.Context, base, quote string) (float64, error) {
	if base == quote {
		return 1, nil
	}
	table, err := s.table(ctx, base)
	if err != nil {
		return 0, err
	}
	rate, ok := table[quote]
	if !ok {
		return 0, fmt.Errorf("no %s rate for base %s", quote, base)
	}
	return rate, nil
}

func (s *Service) table(ctx context.Context, base string) (map[string]float64, error) {
	key := cachePrefix + base
	if s.KV != nil {
		var c cached
		err := s.KV.Get(ctx, key, &c)
		if err == nil && s.now().Sub(time.UnixMilli(c.FetchedAt)) < cacheTTL {
			return c.Rates, nil
		}
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	table, err := fetch(ctx, s.Client, base)
	if err != nil {
		return nil, err
	}
	if s.KV != nil {
		// Cache write failures are not worth failing the lookup for.
		_ = s.KV.Put(ctx, key, cached{FetchedAt: s.now().UnixMilli(), Rates: table})
	}
	return table, nil
}

// fetch pulls the rate table for base from the public endpoint.
func fetch(ctx context.Context, client *http.Client, base string) (map[string]float64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+base, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", base, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch rates for %s: status %s", base, resp.Status)
	}

	var jobj any
	if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
		return nil, fmt.Errorf("parse rates for %s: %w", base, err)
	}
	return extract(jobj)
}

// extract pulls the rate map out of the decoded response document.
func extract(jobj any) (map[string]float64, error) {
	const path = "$.rates"
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("rates document: %q %w", path, err)
	}
	jmap, ok := jval.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rates document: %q is not an object", path)
	}
	table := make(map[string]float64, len(jmap))
	for curr, v := range jmap {
		f, ok := v.(float64)
		if !ok {
			continue // skip occasional nulls rather than failing the table
		}
		table[curr] = f
	}
	return table, nil
}
