// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/fd1az/arbgraph/business/market/domain"
)

// QuoteSource provides a symbol mapping and a batch of quotes.
type QuoteSource interface {
	// Name identifies the source in logs and snapshots.
	Name() string

	// Load fetches the mapping and the quotes together.
	Load(ctx context.Context) (*domain.Snapshot, error)
}
