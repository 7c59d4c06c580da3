package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	bybitBaseURL    = "https://api.bybit.com"
	bybitDemoURL    = "https://api-demo.bybit.com"
	bybitRecvWindow = "5000"
)

type bybit struct {
	creds   Credentials
	baseURL string
	tr      *transport
}

func newBybit(creds Credentials, demo bool, timeout time.Duration, logger *zap.Logger) *bybit {
	base := bybitBaseURL
	if demo {
		base = bybitDemoURL
	}
	return &bybit{
		creds:   creds,
		baseURL: base,
		tr:      newTransport(timeout, logger.Named("bybit")),
	}
}

func (b *bybit) Name() string { return "bybit" }

// sign builds the Bybit v5 signature over timestamp+apiKey+recvWindow+query.
func (b *bybit) sign(timestamp, query string) string {
	mac := hmac.New(sha256.New, []byte(b.creds.APISecret))
	mac.Write([]byte(timestamp + b.creds.APIKey + bybitRecvWindow + query))
	return hex.EncodeToString(mac.Sum(nil))
}

func (b *bybit) signedGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := params.Encode()
	reqURL := b.baseURL + endpoint
	if query != "" {
		reqURL += "?" + query
	}
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	headers := map[string]string{
		"X-BAPI-API-KEY":     b.creds.APIKey,
		"X-BAPI-SIGN":        b.sign(timestamp, query),
		"X-BAPI-TIMESTAMP":   timestamp,
		"X-BAPI-RECV-WINDOW": bybitRecvWindow,
	}
	_, body, err := b.tr.get(ctx, reqURL, headers)
	if err != nil {
		return nil, err
	}
	return bybitEnvelope(body)
}

// bybitEnvelope validates the retCode wrapper every v5 response carries.
func bybitEnvelope(body []byte) ([]byte, error) {
	var base struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
	}
	if err := json.Unmarshal(body, &base); err != nil {
		return nil, fmt.Errorf("bybit: decoding response: %w", err)
	}
	if base.RetCode != 0 {
		return nil, &APIError{Exchange: "bybit", Code: strconv.Itoa(base.RetCode), Message: base.RetMsg}
	}
	return body, nil
}

func (b *bybit) FetchBalance(ctx context.Context) (map[string]float64, error) {
	params := url.Values{}
	params.Set("accountType", "UNIFIED")
	body, err := b.signedGet(ctx, "/v5/account/wallet-balance", params)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Coin []struct {
					Coin          string `json:"coin"`
					WalletBalance string `json:"walletBalance"`
				} `json:"coin"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bybit: decoding wallet balance: %w", err)
	}

	balances := make(map[string]float64)
	for _, acct := range resp.Result.List {
		for _, coin := range acct.Coin {
			if amount, err := strconv.ParseFloat(coin.WalletBalance, 64); err == nil && amount > 0 {
				balances[coin.Coin] += amount
			}
		}
	}
	return balances, nil
}

func (b *bybit) FetchLastPrices(ctx context.Context, symbols []string, quote string) (map[string]float64, error) {
	_, body, err := b.tr.get(ctx, b.baseURL+"/v5/market/tickers?category=spot", nil)
	if err != nil {
		return nil, err
	}
	if body, err = bybitEnvelope(body); err != nil {
		return nil, err
	}

	var resp struct {
		Result struct {
			List []struct {
				Symbol    string `json:"symbol"`
				LastPrice string `json:"lastPrice"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bybit: decoding tickers: %w", err)
	}

	raw := make(map[string]float64, len(resp.Result.List))
	for _, t := range resp.Result.List {
		if price, err := strconv.ParseFloat(t.LastPrice, 64); err == nil {
			raw[t.Symbol] = price
		}
	}
	return pickPrices(raw, symbols, quote, func(base, quote string) string { return base + quote }), nil
}

func (b *bybit) Close() { b.tr.close() }
