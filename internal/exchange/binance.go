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
	binanceBaseURL    = "https://api.binance.com"
	binanceTestnetURL = "https://testnet.binance.vision"
	binanceRecvWindow = "5000"
)

type binance struct {
	creds   Credentials
	baseURL string
	tr      *transport
}

func newBinance(creds Credentials, demo bool, timeout time.Duration, logger *zap.Logger) *binance {
	base := binanceBaseURL
	if demo {
		base = binanceTestnetURL
	}
	return &binance{
		creds:   creds,
		baseURL: base,
		tr:      newTransport(timeout, logger.Named("binance")),
	}
}

func (b *binance) Name() string { return "binance" }

// sign appends timestamp, recvWindow and the HMAC-SHA256 signature to the
// query string, per Binance's SIGNED endpoint scheme.
func (b *binance) sign(query url.Values) string {
	query.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	query.Set("recvWindow", binanceRecvWindow)
	encoded := query.Encode()
	mac := hmac.New(sha256.New, []byte(b.creds.APISecret))
	mac.Write([]byte(encoded))
	return encoded + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (b *binance) FetchBalance(ctx context.Context) (map[string]float64, error) {
	reqURL := b.baseURL + "/api/v3/account?" + b.sign(url.Values{})
	status, body, err := b.tr.get(ctx, reqURL, map[string]string{"X-MBX-APIKEY": b.creds.APIKey})
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, binanceError(status, body)
	}

	var resp struct {
		Balances []struct {
			Asset  string `json:"asset"`
			Free   string `json:"free"`
			Locked string `json:"locked"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("binance: decoding account response: %w", err)
	}

	balances := make(map[string]float64)
	for _, bal := range resp.Balances {
		free, _ := strconv.ParseFloat(bal.Free, 64)
		locked, _ := strconv.ParseFloat(bal.Locked, 64)
		if total := free + locked; total > 0 {
			balances[bal.Asset] = total
		}
	}
	return balances, nil
}

func (b *binance) FetchLastPrices(ctx context.Context, symbols []string, quote string) (map[string]float64, error) {
	status, body, err := b.tr.get(ctx, b.baseURL+"/api/v3/ticker/price", nil)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, binanceError(status, body)
	}

	var tickers []struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &tickers); err != nil {
		return nil, fmt.Errorf("binance: decoding tickers response: %w", err)
	}

	raw := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		if price, err := strconv.ParseFloat(t.Price, 64); err == nil {
			raw[t.Symbol] = price
		}
	}
	return pickPrices(raw, symbols, quote, func(base, quote string) string { return base + quote }), nil
}

func (b *binance) Close() { b.tr.close() }

func binanceError(status int, body []byte) error {
	var apiErr struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Msg != "" {
		return &APIError{Exchange: "binance", Code: strconv.Itoa(apiErr.Code), Message: apiErr.Msg}
	}
	return &APIError{Exchange: "binance", Code: strconv.Itoa(status), Message: "unexpected response"}
}
