package sources

import (
	"context"
	"sync"

	"github.com/paperscope/literature-aggregation-service/internal/domain"
)

// SourceOutcome holds the result of a search against one source.
type SourceOutcome struct {
	// Source identifies which literature source produced the outcome.
	Source domain.SourceType

	// Result contains the search results if the search succeeded.
	// Will be nil if Error is non-nil.
	Result *SearchResult

	// Error contains the error if the search failed.
	// Will be nil if Result is non-nil.
	Error error
}

// Registry manages literature sources and coordinates concurrent searches.
// It provides thread-safe registration and retrieval of source clients, as
// well as fan-out search operations across every enabled source.
type Registry struct {
	mu      sync.RWMutex
	clients map[domain.SourceType]SourceClient
}

// NewRegistry creates a new source registry with an empty client map.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[domain.SourceType]SourceClient),
	}
}

// Register adds a source client to the registry. A client with the same
// source type replaces the existing one. This method is thread-safe.
func (r *Registry) Register(client SourceClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[client.SourceType()] = client
}

// Get returns a client by source type, or nil if not registered.
// This method is thread-safe.
func (r *Registry) Get(sourceType domain.SourceType) SourceClient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[sourceType]
}

// EnabledSources returns only enabled source clients. The returned slice is
// a snapshot and is safe to iterate even if clients are registered
// concurrently. This method is thread-safe.
func (r *Registry) EnabledSources() []SourceClient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]SourceClient, 0, len(r.clients))
	for _, client := range r.clients {
		if client.IsEnabled() {
			clients = append(clients, client)
		}
	}
	return clients
}

// SearchAll searches all enabled sources concurrently and returns one
// outcome per source, including failures. Errors are not filtered; the
// caller decides how to handle them. The search respects context
// cancellation: if the context is canceled, in-flight searches are
// interrupted and their errors returned. This method is thread-safe.
func (r *Registry) SearchAll(ctx context.Context, params SearchParams) []SourceOutcome {
	return r.searchClients(ctx, r.EnabledSources(), params)
}

// SearchSources searches only the named sources concurrently. Sources that
// are not registered or not enabled are silently skipped. This method is
// thread-safe.
func (r *Registry) SearchSources(ctx context.Context, sourceTypes []domain.SourceType, params SearchParams) []SourceOutcome {
	clients := make([]SourceClient, 0, len(sourceTypes))
	for _, sourceType := range sourceTypes {
		client := r.Get(sourceType)
		if client != nil && client.IsEnabled() {
			clients = append(clients, client)
		}
	}
	return r.searchClients(ctx, clients, params)
}

// searchClients fans out a search across the given clients and collects
// outcomes in completion order.
func (r *Registry) searchClients(ctx context.Context, clients []SourceClient, params SearchParams) []SourceOutcome {
	if len(clients) == 0 {
		return nil
	}

	outcomeChan := make(chan SourceOutcome, len(clients))
	var wg sync.WaitGroup

	for _, client := range clients {
		wg.Add(1)
		go func(c SourceClient) {
			defer wg.Done()

			result, err := c.Search(ctx, params)
			outcomeChan <- SourceOutcome{
				Source: c.SourceType(),
				Result: result,
				Error:  err,
			}
		}(client)
	}

	go func() {
		wg.Wait()
		close(outcomeChan)
	}()

	outcomes := make([]SourceOutcome, 0, len(clients))
	for outcome := range outcomeChan {
		outcomes = append(outcomes, outcome)
	}

	return outcomes
}
