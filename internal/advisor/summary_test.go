package advisor

import (
	"strings"
	"testing"

	"cryptovision/internal/domain/entity"
)

func TestSummarizeEmpty(t *testing.T) {
	if got := Summarize(entity.NewPortfolio()); got != "The portfolio is empty." {
		t.Errorf("unexpected empty summary: %q", got)
	}
	if got := Summarize(nil); got != "The portfolio is empty." {
		t.Errorf("unexpected nil summary: %q", got)
	}
}

func TestSummarizeFormat(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["BINANCE (Real)"] = map[string]entity.PricedAsset{
		"BTC":  {Amount: 0.5, ValueUSD: 30000},
		"USDT": {Amount: 100, ValueUSD: 100},
	}

	got := Summarize(p)
	want := "[BINANCE (Real): BTC: 0.5000 ($30000.00), USDT: 100.0000 ($100.00)]"
	if got != want {
		t.Errorf("summary = %q, want %q", got, want)
	}
}

func TestSummarizeDeterministicOrder(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["OKX (Demo)"] = map[string]entity.PricedAsset{"ETH": {Amount: 1, ValueUSD: 2500}}
	p.Accounts["BINANCE (Real)"] = map[string]entity.PricedAsset{"BTC": {Amount: 1, ValueUSD: 60000}}

	got := Summarize(p)
	if !strings.HasPrefix(got, "[BINANCE (Real):") {
		t.Errorf("accounts not sorted: %q", got)
	}
	if !strings.Contains(got, "; [OKX (Demo):") {
		t.Errorf("missing second account: %q", got)
	}
}

func TestSummarizeIncludesErrors(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["BYBIT (Real)"] = map[string]entity.PricedAsset{"BTC": {Amount: 1, ValueUSD: 60000}}
	p.Errors = append(p.Errors, "KUCOIN (Real): timeout")

	got := Summarize(p)
	if !strings.Contains(got, "unavailable: KUCOIN (Real): timeout") {
		t.Errorf("errors not included: %q", got)
	}
}
