// Package services – MarketDataService
//
// Read-only market-data lookups relayed to the upstream data host. Symbol
// normalization happens here so handlers stay transport-thin.
package services

import (
	"context"
	"strings"

	"github.com/nandhd/coinage-backend/internal/broker"
)

// MarketDataService relays quote lookups to the upstream client.
type MarketDataService struct {
	Client broker.Client
}

// LatestQuotes fetches the latest quotes for the given symbols. Symbols are
// trimmed, uppercased, and de-duplicated; an effectively empty list returns
// ErrNoSymbols without an upstream call.
func (s *MarketDataService) LatestQuotes(ctx context.Context, symbols []string) (any, error) {
	cleaned := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		cleaned = append(cleaned, sym)
	}
	if len(cleaned) == 0 {
		return nil, ErrNoSymbols
	}
	return s.Client.LatestQuotes(ctx, cleaned)
}
