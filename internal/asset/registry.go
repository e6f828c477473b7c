package asset

import (
	"fmt"
	"sort"
	"sync"
)

// Mapping is a thread-safe registry of quote symbol -> asset pair.
type Mapping struct {
	bySymbol map[string]Pair
	mu       sync.RWMutex
}

// NewMapping creates an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{
		bySymbol: make(map[string]Pair),
	}
}

// Register adds a symbol. Returns an error if the pair is incomplete or the
// symbol is already registered; keys are unique.
func (m *Mapping) Register(symbol string, pair Pair) error {
	if symbol == "" {
		return fmt.Errorf("asset: empty quote symbol")
	}
	if !pair.Valid() {
		return fmt.Errorf("asset: incomplete pair %q for symbol %s", pair.String(), symbol)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySymbol[symbol]; exists {
		return fmt.Errorf("asset: symbol %s already registered", symbol)
	}
	m.bySymbol[symbol] = pair
	return nil
}

// MustRegister is Register that panics; meant for tests and fixtures.
func (m *Mapping) MustRegister(symbol string, pair Pair) {
	if err := m.Register(symbol, pair); err != nil {
		panic(err)
	}
}

// Lookup resolves a quote symbol.
func (m *Mapping) Lookup(symbol string) (Pair, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.bySymbol[symbol]
	return p, ok
}

// Symbols returns all registered quote symbols, sorted.
func (m *Mapping) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.bySymbol))
	for s := range m.bySymbol {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Assets returns the distinct assets referenced by the mapping, sorted.
func (m *Mapping) Assets() []Symbol {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[Symbol]struct{})
	for _, p := range m.bySymbol {
		seen[p.Base] = struct{}{}
		seen[p.Other] = struct{}{}
	}

	result := make([]Symbol, 0, len(seen))
	for s := range seen {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Count returns the number of registered symbols.
func (m *Mapping) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bySymbol)
}
