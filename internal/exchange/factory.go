package exchange

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Supported lists the exchange identifiers the factory accepts.
var Supported = []string{
	"binance",
	"bybit",
	"okx",
	"kucoin",
	"bitget",
}

// IsSupported reports whether the identifier names a known exchange.
func IsSupported(name string) bool {
	name = strings.ToLower(name)
	for _, s := range Supported {
		if name == s {
			return true
		}
	}
	return false
}

// Factory builds a fresh, exclusively owned client for one account. An
// unknown identifier is a configuration error, reported at construction
// rather than on first use.
type Factory interface {
	New(name string, creds Credentials, demo bool) (Client, error)
}

type factory struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewFactory returns the production factory. timeout bounds every single
// HTTP call issued by the clients it builds.
func NewFactory(timeout time.Duration, logger *zap.Logger) Factory {
	return &factory{timeout: timeout, logger: logger.Named("exchange")}
}

func (f *factory) New(name string, creds Credentials, demo bool) (Client, error) {
	switch strings.ToLower(name) {
	case "binance":
		return newBinance(creds, demo, f.timeout, f.logger), nil
	case "bybit":
		return newBybit(creds, demo, f.timeout, f.logger), nil
	case "okx":
		return newOKX(creds, demo, f.timeout, f.logger), nil
	case "kucoin":
		return newKucoin(creds, demo, f.timeout, f.logger), nil
	case "bitget":
		return newBitget(creds, demo, f.timeout, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported exchange: %s", name)
	}
}
