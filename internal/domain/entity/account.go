package entity

import "strings"

// Account is one user's credential set for one exchange, in one mode
// (real or demo). Credentials are plaintext here: decryption happens at
// the repository boundary, and an Account never outlives one aggregation run.
type Account struct {
	ID         int64
	OwnerID    int64
	Exchange   string
	APIKey     string
	APISecret  string
	Passphrase string
	Demo       bool
}

// Label returns the display key identifying this account within a portfolio,
// encoding both the exchange and the real/demo mode, e.g. "BINANCE (Real)".
func (a Account) Label() string {
	mode := "Real"
	if a.Demo {
		mode = "Demo"
	}
	return strings.ToUpper(a.Exchange) + " (" + mode + ")"
}
