package entity

import "testing"

func TestAccountLabel(t *testing.T) {
	cases := []struct {
		acc  Account
		want string
	}{
		{Account{Exchange: "binance", Demo: false}, "BINANCE (Real)"},
		{Account{Exchange: "bybit", Demo: true}, "BYBIT (Demo)"},
		{Account{Exchange: "OKX", Demo: false}, "OKX (Real)"},
	}
	for _, tc := range cases {
		if got := tc.acc.Label(); got != tc.want {
			t.Errorf("Label() = %q, want %q", got, tc.want)
		}
	}
}

func TestPortfolioTotals(t *testing.T) {
	p := NewPortfolio()
	p.Accounts["A"] = map[string]PricedAsset{
		"BTC":  {Amount: 1, ValueUSD: 60000},
		"USDT": {Amount: 100, ValueUSD: 100},
	}
	p.Accounts["B"] = map[string]PricedAsset{
		"ETH": {Amount: 2, ValueUSD: 5000},
	}

	if got := p.SubtotalUSD("A"); got != 60100 {
		t.Errorf("SubtotalUSD(A) = %v", got)
	}
	if got := p.SubtotalUSD("missing"); got != 0 {
		t.Errorf("SubtotalUSD(missing) = %v", got)
	}
	if got := p.TotalUSD(); got != 65100 {
		t.Errorf("TotalUSD() = %v", got)
	}
}

func TestPortfolioEmpty(t *testing.T) {
	p := NewPortfolio()
	if !p.Empty() {
		t.Error("fresh portfolio must be empty")
	}
	p.Errors = append(p.Errors, "BINANCE (Real): timeout")
	if p.Empty() {
		t.Error("a portfolio with errors is not empty")
	}
}

func TestAccountResultFailed(t *testing.T) {
	if (AccountResult{}).Failed() {
		t.Error("zero result is not failed")
	}
	if !(AccountResult{Err: "boom"}).Failed() {
		t.Error("result with error text must be failed")
	}
}
