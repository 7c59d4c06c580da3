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

const bitgetBaseURL = "https://api.bitget.com"

type bitget struct {
	creds Credentials
	demo  bool
	tr    *transport
}

func newBitget(creds Credentials, demo bool, timeout time.Duration, logger *zap.Logger) *bitget {
	return &bitget{
		creds: creds,
		demo:  demo,
		tr:    newTransport(timeout, logger.Named("bitget")),
	}
}

func (b *bitget) Name() string { return "bitget" }

func (b *bitget) sign(timestamp, method, path, body string) string {
	mac := hmac.New(sha256.New, []byte(b.creds.APISecret))
	mac.Write([]byte(timestamp + method + path + body))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (b *bitget) signedGet(ctx context.Context, path string) ([]byte, error) {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	headers := map[string]string{
		"ACCESS-KEY":        b.creds.APIKey,
		"ACCESS-SIGN":       b.sign(timestamp, "GET", path, ""),
		"ACCESS-TIMESTAMP":  timestamp,
		"ACCESS-PASSPHRASE": b.creds.Passphrase,
	}
	// Bitget demo trading is flagged per request, same host.
	if b.demo {
		headers["paptrading"] = "1"
	}
	_, body, err := b.tr.get(ctx, bitgetBaseURL+path, headers)
	if err != nil {
		return nil, err
	}
	return bitgetEnvelope(body)
}

func bitgetEnvelope(body []byte) ([]byte, error) {
	var base struct {
		Code string `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &base); err != nil {
		return nil, fmt.Errorf("bitget: decoding response: %w", err)
	}
	if base.Code != "00000" {
		return nil, &APIError{Exchange: "bitget", Code: base.Code, Message: base.Msg}
	}
	return body, nil
}

func (b *bitget) FetchBalance(ctx context.Context) (map[string]float64, error) {
	body, err := b.signedGet(ctx, "/api/v2/spot/account/assets")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Coin      string `json:"coin"`
			Available string `json:"available"`
			Frozen    string `json:"frozen"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bitget: decoding assets: %w", err)
	}

	balances := make(map[string]float64)
	for _, asset := range resp.Data {
		available, _ := strconv.ParseFloat(asset.Available, 64)
		frozen, _ := strconv.ParseFloat(asset.Frozen, 64)
		if total := available + frozen; total > 0 {
			balances[asset.Coin] = total
		}
	}
	return balances, nil
}

func (b *bitget) FetchLastPrices(ctx context.Context, symbols []string, quote string) (map[string]float64, error) {
	_, body, err := b.tr.get(ctx, bitgetBaseURL+"/api/v2/spot/market/tickers", nil)
	if err != nil {
		return nil, err
	}
	if body, err = bitgetEnvelope(body); err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			Symbol string `json:"symbol"`
			LastPr string `json:"lastPr"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("bitget: decoding tickers: %w", err)
	}

	raw := make(map[string]float64, len(resp.Data))
	for _, t := range resp.Data {
		if price, err := strconv.ParseFloat(t.LastPr, 64); err == nil {
			raw[t.Symbol] = price
		}
	}
	return pickPrices(raw, symbols, quote, func(base, quote string) string { return base + quote }), nil
}

func (b *bitget) Close() { b.tr.close() }
