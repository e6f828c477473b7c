// Package domain contains the core domain types for the market context.
package domain

import (
	"time"

	"github.com/fd1az/arbgraph/internal/asset"
)

// Quote is a raw ticker record: how many units of the pair's other asset one
// unit of its base asset buys. Price stays a string; parsing and validation
// belong to the graph builder so one bad record never fails a whole load.
type Quote struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Snapshot is everything the graph builder needs, captured at one instant.
type Snapshot struct {
	Mapping   *asset.Mapping
	Quotes    []Quote
	Source    string
	FetchedAt time.Time
}

// NewSnapshot creates a Snapshot stamped with the current time.
func NewSnapshot(source string, mapping *asset.Mapping, quotes []Quote) *Snapshot {
	return &Snapshot{
		Mapping:   mapping,
		Quotes:    quotes,
		Source:    source,
		FetchedAt: time.Now(),
	}
}

// MappedQuotes counts quotes whose symbol resolves in the mapping.
func (s *Snapshot) MappedQuotes() int {
	if s.Mapping == nil {
		return 0
	}
	n := 0
	for _, q := range s.Quotes {
		if _, ok := s.Mapping.Lookup(q.Symbol); ok {
			n++
		}
	}
	return n
}
