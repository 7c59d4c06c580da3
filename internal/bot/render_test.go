package bot

import (
	"strings"
	"testing"

	"cryptovision/internal/domain/entity"
)

func TestMaskKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abcdefghijkl", "abcd...ijkl"},
		{"short", "***"},
		{"12345678", "***"},
		{"", "***"},
	}
	for _, tc := range cases {
		if got := MaskKey(tc.in); got != tc.want {
			t.Errorf("MaskKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	got := RenderReport(entity.NewPortfolio())
	if !strings.Contains(got, "empty") {
		t.Errorf("empty report should say so, got %q", got)
	}
}

func TestRenderReportOrdersByValueDescending(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["BINANCE (Real)"] = map[string]entity.PricedAsset{
		"DOGE": {Amount: 1000, ValueUSD: 80},
		"BTC":  {Amount: 0.5, ValueUSD: 30000},
		"ETH":  {Amount: 2, ValueUSD: 5000},
	}

	got := RenderReport(p)
	btc := strings.Index(got, "BTC")
	eth := strings.Index(got, "ETH")
	doge := strings.Index(got, "DOGE")
	if btc == -1 || eth == -1 || doge == -1 {
		t.Fatalf("missing assets in report: %q", got)
	}
	if !(btc < eth && eth < doge) {
		t.Errorf("assets not sorted by descending value: %q", got)
	}
}

func TestRenderReportTotals(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["BINANCE (Real)"] = map[string]entity.PricedAsset{
		"BTC": {Amount: 1, ValueUSD: 60000},
	}
	p.Accounts["BYBIT (Demo)"] = map[string]entity.PricedAsset{
		"USDT": {Amount: 150.5, ValueUSD: 150.5},
	}

	got := RenderReport(p)
	if !strings.Contains(got, "Subtotal: `$60000.00`") {
		t.Errorf("missing binance subtotal: %q", got)
	}
	if !strings.Contains(got, "Subtotal: `$150.50`") {
		t.Errorf("missing bybit subtotal: %q", got)
	}
	if !strings.Contains(got, "TOTAL: `$60150.50`") {
		t.Errorf("missing grand total: %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	p := entity.NewPortfolio()
	if got := RenderErrors(p); got != "" {
		t.Errorf("no errors should render empty, got %q", got)
	}
	p.Errors = append(p.Errors, "OKX (Real): timeout")
	if got := RenderErrors(p); !strings.Contains(got, "OKX (Real): timeout") {
		t.Errorf("error line missing: %q", got)
	}
}

func TestRenderProfileMasksKeys(t *testing.T) {
	accounts := []entity.Account{
		{ID: 1, Exchange: "binance", APIKey: "abcdefghijkl", Demo: false},
		{ID: 2, Exchange: "okx", APIKey: "secretsecret", Demo: true},
	}
	got := RenderProfile(accounts)
	if strings.Contains(got, "abcdefghijkl") || strings.Contains(got, "secretsecret") {
		t.Errorf("profile leaks full keys: %q", got)
	}
	if !strings.Contains(got, "BINANCE `[abcd...ijkl]` (✅ Real)") {
		t.Errorf("missing binance line: %q", got)
	}
	if !strings.Contains(got, "OKX `[secr...cret]` (🧪 Demo)") {
		t.Errorf("missing okx line: %q", got)
	}
}
