// Package discovery finds candidate entity names for a query in a market.
//
// Discovery is fail-soft: backends never return errors to the caller. A failing lookup yields an empty [Result] so
// that a hunt can continue with whatever the other markets produced.
package discovery

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MaxEntities bounds the number of entity names a backend returns for one market.
const MaxEntities = 25

// Result lists the entity names found for one market.
type Result struct {
	Entities []string `json:"companies"`
	Count    int      `json:"count"`
}

// Discoverer looks up candidate entities. Implementations must not block the pipeline on failure.
type Discoverer interface {
	Discover(ctx context.Context, query, market string) Result
}

func newResult(entities []string) Result {
	if len(entities) > MaxEntities {
		entities = entities[:MaxEntities]
	}
	if entities == nil {
		entities = []string{}
	}
	return Result{Entities: entities, Count: len(entities)}
}

// AcrossMarkets calls d once per market and returns the result of each market.
//
// At most concurrency lookups run at the same time; concurrency below one means sequential lookups. Because
// backends are fail-soft, one market's failure never affects the results of the others.
func AcrossMarkets(ctx context.Context, d Discoverer, query string, markets []string, concurrency int) map[string]Result {
	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(markets))
		g       errgroup.Group
	)
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)
	for _, market := range markets {
		g.Go(func() error {
			result := d.Discover(ctx, query, market)
			mu.Lock()
			results[market] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // Discoverers never fail.
	return results
}

// Merge collects the distinct entity names of results, visiting markets in the given order, and returns at most
// limit names. A limit below zero means no limit.
func Merge(results map[string]Result, markets []string, limit int) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)
	for _, market := range markets {
		for _, entity := range results[market].Entities {
			if limit >= 0 && len(merged) >= limit {
				return merged
			}
			if _, ok := seen[entity]; ok {
				continue
			}
			seen[entity] = struct{}{}
			merged = append(merged, entity)
		}
	}
	return merged
}
