package discovery

import (
	"context"
)

var stubSuffixes = [...]string{"Inc.", "Solutions", "Global", "Enterprises", "Group"}

// Stub synthesizes deterministic entity names from the query. It is used when no search backend is configured.
type Stub struct{}

// Discover returns five name variants of query regardless of market.
func (Stub) Discover(_ context.Context, query, _ string) Result {
	entities := make([]string, 0, len(stubSuffixes))
	for _, suffix := range stubSuffixes {
		entities = append(entities, query+" "+suffix)
	}
	return newResult(entities)
}
