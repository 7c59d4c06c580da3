package entity

// PricedAsset is one asset position valued in the quote currency.
type PricedAsset struct {
	Amount   float64 `json:"amount"`
	ValueUSD float64 `json:"usd_val"`
}

// AccountResult is the outcome of one account's balance fetch: either a
// priced asset mapping or an error message, never both.
type AccountResult struct {
	Account Account
	Assets  map[string]PricedAsset
	Err     string
}

// Failed reports whether the result carries an error instead of assets.
func (r AccountResult) Failed() bool {
	return r.Err != ""
}

// Portfolio is the consolidated view over all of a user's accounts, built
// fresh per request. Accounts is keyed by account label; Errors holds one
// formatted line per failed account.
type Portfolio struct {
	Accounts map[string]map[string]PricedAsset `json:"accounts"`
	Errors   []string                          `json:"errors,omitempty"`
}

// NewPortfolio returns an empty portfolio ready for aggregation.
func NewPortfolio() *Portfolio {
	return &Portfolio{Accounts: make(map[string]map[string]PricedAsset)}
}

// SubtotalUSD sums the quote value of every asset under one account label.
func (p *Portfolio) SubtotalUSD(label string) float64 {
	var total float64
	for _, asset := range p.Accounts[label] {
		total += asset.ValueUSD
	}
	return total
}

// TotalUSD sums every account's subtotal.
func (p *Portfolio) TotalUSD() float64 {
	var total float64
	for label := range p.Accounts {
		total += p.SubtotalUSD(label)
	}
	return total
}

// Empty reports whether the portfolio carries neither assets nor errors.
func (p *Portfolio) Empty() bool {
	return len(p.Accounts) == 0 && len(p.Errors) == 0
}
