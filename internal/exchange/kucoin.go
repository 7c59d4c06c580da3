package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

const (
	kucoinBaseURL    = "https://api.kucoin.com"
	kucoinSandboxURL = "https://openapi-sandbox.kucoin.com"
)

type kucoin struct {
	creds   Credentials
	baseURL string
	tr      *transport
}

func newKucoin(creds Credentials, demo bool, timeout time.Duration, logger *zap.Logger) *kucoin {
	base := kucoinBaseURL
	if demo {
		base = kucoinSandboxURL
	}
	return &kucoin{
		creds:   creds,
		baseURL: base,
		tr:      newTransport(timeout, logger.Named("kucoin")),
	}
}

func (k *kucoin) Name() string { return "kucoin" }

func (k *kucoin) hmacB64(payload string) string {
	mac := hmac.New(sha256.New, []byte(k.creds.APISecret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (k *kucoin) signedGet(ctx context.Context, path string) ([]byte, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	headers := map[string]string{
		"KC-API-KEY":         k.creds.APIKey,
		"KC-API-SIGN":        k.hmacB64(timestamp + "GET" + path),
		"KC-API-TIMESTAMP":   timestamp,
		"KC-API-PASSPHRASE":  k.hmacB64(k.creds.Passphrase), // v2 keys sign the passphrase too
		"KC-API-KEY-VERSION": "2",
	}
	_, body, err := k.tr.get(ctx, k.baseURL+path, headers)
	if err != nil {
		return nil, err
	}
	return kucoinEnvelope(body)
}

func kucoinEnvelope(body []byte) ([]byte, error) {
	var base struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &base); err != nil {
		return nil, fmt.Errorf("kucoin: decoding response: %w", err)
	}
	if base.Code != "200000" {
		return nil, &APIError{Exchange: "kucoin", Code: base.Code, Message: base.Msg}
	}
	return body, nil
}

func (k *kucoin) FetchBalance(ctx context.Context) (map[string]float64, error) {
	body, err := k.signedGet(ctx, "/api/v1/accounts")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Currency string `json:"currency"`
			Balance  string `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kucoin: decoding accounts: %w", err)
	}

	// A currency can appear once per account type (main, trade, margin).
	balances := make(map[string]float64)
	for _, acct := range resp.Data {
		if amount, err := strconv.ParseFloat(acct.Balance, 64); err == nil && amount > 0 {
			balances[acct.Currency] += amount
		}
	}
	return balances, nil
}

func (k *kucoin) FetchLastPrices(ctx context.Context, symbols []string, quote string) (map[string]float64, error) {
	_, body, err := k.tr.get(ctx, k.baseURL+"/api/v1/market/allTickers", nil)
	if err != nil {
		return nil, err
	}
	if body, err = kucoinEnvelope(body); err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			Ticker []struct {
				Symbol string `json:"symbol"`
				Last   string `json:"last"`
			} `json:"ticker"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("kucoin: decoding tickers: %w", err)
	}

	raw := make(map[string]float64, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		if price, err := strconv.ParseFloat(t.Last, 64); err == nil {
			raw[t.Symbol] = price
		}
	}
	return pickPrices(raw, symbols, quote, func(base, quote string) string { return base + "-" + quote }), nil
}

func (k *kucoin) Close() { k.tr.close() }
