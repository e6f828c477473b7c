// Package file loads market snapshots from JSON files on disk.
package file

import (
	"context"
	"encoding/json"
	"os"

	"github.com/fd1az/arbgraph/business/market/domain"
	"github.com/fd1az/arbgraph/internal/apperror"
	"github.com/fd1az/arbgraph/internal/asset"
	"github.com/fd1az/arbgraph/internal/logger"
)

// SourceConfig holds the file locations.
type SourceConfig struct {
	MappingPath string // {"ETHBTC": {"base": "ETH", "other": "BTC"}, ...}
	QuotesPath  string // [{"symbol": "ETHBTC", "price": "0.05"}, ...]
}

// Source reads the symbol mapping and the quote list from two JSON files.
type Source struct {
	config SourceConfig
	logger logger.LoggerInterface
}

// NewSource creates a new file Source.
func NewSource(cfg SourceConfig, log logger.LoggerInterface) *Source {
	return &Source{config: cfg, logger: log}
}

// Name implements app.QuoteSource.
func (s *Source) Name() string {
	return "file"
}

// Load implements app.QuoteSource. Both files must exist and parse as JSON of
// the right shape; individual malformed entries are skipped or blanked.
func (s *Source) Load(ctx context.Context) (*domain.Snapshot, error) {
	mapping, skipped, err := s.loadMapping()
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		s.logger.Warn(ctx, "skipped incomplete mapping entries",
			"path", s.config.MappingPath,
			"skipped", skipped)
	}

	quotes, err := s.loadQuotes()
	if err != nil {
		return nil, err
	}

	return domain.NewSnapshot(s.Name(), mapping, quotes), nil
}

// mappingEntry uses pointers so a missing field differs from an empty one.
type mappingEntry struct {
	Base  *string `json:"base"`
	Other *string `json:"other"`
}

func (s *Source) loadMapping() (*asset.Mapping, int, error) {
	data, err := os.ReadFile(s.config.MappingPath)
	if err != nil {
		return nil, 0, apperror.External(apperror.CodeMappingLoadFailed, s.config.MappingPath, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, apperror.External(apperror.CodeMappingLoadFailed, s.config.MappingPath, err)
	}

	mapping := asset.NewMapping()
	skipped := 0
	for symbol, msg := range raw {
		var e mappingEntry
		if err := json.Unmarshal(msg, &e); err != nil || e.Base == nil || e.Other == nil {
			skipped++
			continue
		}
		if err := mapping.Register(symbol, asset.NewPair(asset.Symbol(*e.Base), asset.Symbol(*e.Other))); err != nil {
			skipped++
		}
	}
	return mapping, skipped, nil
}

// quoteEntry keeps raw fields: a price that is not a JSON string becomes ""
// and is rejected later by the graph builder, like any unparsable price.
type quoteEntry struct {
	Symbol json.RawMessage `json:"symbol"`
	Price  json.RawMessage `json:"price"`
}

func (s *Source) loadQuotes() ([]domain.Quote, error) {
	data, err := os.ReadFile(s.config.QuotesPath)
	if err != nil {
		return nil, apperror.External(apperror.CodeQuotesLoadFailed, s.config.QuotesPath, err)
	}

	var raw []quoteEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperror.External(apperror.CodeQuotesLoadFailed, s.config.QuotesPath, err)
	}

	quotes := make([]domain.Quote, 0, len(raw))
	for _, e := range raw {
		quotes = append(quotes, domain.Quote{
			Symbol: jsonString(e.Symbol),
			Price:  jsonString(e.Price),
		})
	}
	return quotes, nil
}

func jsonString(msg json.RawMessage) string {
	var s string
	if len(msg) == 0 || json.Unmarshal(msg, &s) != nil {
		return ""
	}
	return s
}
