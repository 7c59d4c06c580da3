// Package exchange provides a unified client interface over the supported
// centralized exchanges' REST APIs.
package exchange

import (
	"context"
)

// Credentials holds one account's plaintext API credentials.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// Client is the per-exchange capability surface the aggregator needs.
// A Client is owned by a single aggregation task and must be released with
// Close on every exit path.
type Client interface {
	// Name returns the exchange identifier, e.g. "binance".
	Name() string

	// FetchBalance returns all strictly positive spot balances keyed by
	// asset symbol. Zero and negative entries are filtered out.
	FetchBalance(ctx context.Context) (map[string]float64, error)

	// FetchLastPrices returns last-traded prices for the given base symbols
	// against quote, best effort: symbols without a resolvable pair are
	// simply absent from the result. One batched tickers call per
	// invocation.
	FetchLastPrices(ctx context.Context, symbols []string, quote string) (map[string]float64, error)

	// Close releases the underlying connections.
	Close()
}

// APIError is an exchange-side rejection (auth failure, bad request, rate
// limit) as opposed to a transport failure.
type APIError struct {
	Exchange string
	Code     string
	Message  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return e.Exchange + ": " + e.Code + " " + e.Message
	}
	return e.Exchange + ": " + e.Message
}

// fallbackQuote is tried when the primary quote pair is not listed.
const fallbackQuote = "USDC"

// pickPrices maps each base symbol to the first resolvable quoted pair in
// raw. Keys in raw are native pair identifiers produced by join. The primary
// quote is tried first, then the stable fallback; unresolved symbols are
// left out so the caller degrades them to a zero valuation.
func pickPrices(raw map[string]float64, symbols []string, quote string, join func(base, quote string) string) map[string]float64 {
	out := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		for _, q := range []string{quote, fallbackQuote} {
			if price, ok := raw[join(sym, q)]; ok && price > 0 {
				out[sym] = price
				break
			}
		}
	}
	return out
}
