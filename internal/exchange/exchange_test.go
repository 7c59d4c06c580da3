package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func concat(base, quote string) string { return base + quote }
func dashed(base, quote string) string { return base + "-" + quote }

func TestPickPricesPrefersPrimaryQuote(t *testing.T) {
	raw := map[string]float64{
		"BTCUSDT": 60000,
		"BTCUSDC": 59900,
	}
	got := pickPrices(raw, []string{"BTC"}, "USDT", concat)
	assert.Equal(t, map[string]float64{"BTC": 60000}, got)
}

func TestPickPricesFallsBackToUSDC(t *testing.T) {
	raw := map[string]float64{
		"RAREUSDC": 1.23,
	}
	got := pickPrices(raw, []string{"RARE"}, "USDT", concat)
	assert.Equal(t, map[string]float64{"RARE": 1.23}, got)
}

func TestPickPricesOmitsUnresolvable(t *testing.T) {
	raw := map[string]float64{
		"BTC-USDT":  60000,
		"DUST-USDT": 0, // non-positive prices never resolve
	}
	got := pickPrices(raw, []string{"BTC", "DUST", "UNLISTED"}, "USDT", dashed)
	assert.Equal(t, map[string]float64{"BTC": 60000}, got)
}

func TestAPIErrorFormat(t *testing.T) {
	err := &APIError{Exchange: "okx", Code: "50119", Message: "API key doesn't exist"}
	assert.Equal(t, "okx: 50119 API key doesn't exist", err.Error())

	err = &APIError{Exchange: "binance", Message: "unexpected response"}
	assert.Equal(t, "binance: unexpected response", err.Error())
}

func TestFactoryBuildsEverySupportedExchange(t *testing.T) {
	f := NewFactory(time.Second, zap.NewNop())
	creds := Credentials{APIKey: "k", APISecret: "s", Passphrase: "p"}

	for _, name := range Supported {
		client, err := f.New(name, creds, false)
		require.NoError(t, err, name)
		assert.Equal(t, name, client.Name())
		client.Close()
	}
}

func TestFactoryIsCaseInsensitive(t *testing.T) {
	f := NewFactory(time.Second, zap.NewNop())
	client, err := f.New("Binance", Credentials{}, true)
	require.NoError(t, err)
	assert.Equal(t, "binance", client.Name())
	client.Close()
}

func TestFactoryRejectsUnknownExchange(t *testing.T) {
	f := NewFactory(time.Second, zap.NewNop())
	_, err := f.New("mtgox", Credentials{}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exchange")
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("binance"))
	assert.True(t, IsSupported("KuCoin"))
	assert.False(t, IsSupported("mtgox"))
	assert.False(t, IsSupported(""))
}

// The signed query must carry timestamp, recvWindow and a signature that
// verifies over the rest of the query.
func TestBinanceSign(t *testing.T) {
	b := &binance{creds: Credentials{APISecret: "test-secret"}}
	signed := b.sign(url.Values{"foo": {"bar"}})

	parsed, err := url.ParseQuery(signed)
	require.NoError(t, err)
	assert.Equal(t, "bar", parsed.Get("foo"))
	assert.Equal(t, binanceRecvWindow, parsed.Get("recvWindow"))
	assert.NotEmpty(t, parsed.Get("timestamp"))

	signature := parsed.Get("signature")
	require.NotEmpty(t, signature)
	parsed.Del("signature")

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(parsed.Encode()))
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), signature)
}

func TestEnvelopeRejections(t *testing.T) {
	cases := []struct {
		name     string
		envelope func([]byte) ([]byte, error)
		body     string
		wantCode string
	}{
		{"okx", okxEnvelope, `{"code":"50119","msg":"API key doesn't exist"}`, "50119"},
		{"bybit", bybitEnvelope, `{"retCode":10003,"retMsg":"API key is invalid"}`, "10003"},
		{"kucoin", kucoinEnvelope, `{"code":"400003","msg":"KC-API-KEY not exists"}`, "400003"},
		{"bitget", bitgetEnvelope, `{"code":"40037","msg":"Apikey does not exist"}`, "40037"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.envelope([]byte(tc.body))
			require.Error(t, err)
			apiErr, ok := err.(*APIError)
			require.True(t, ok, "want *APIError, got %T", err)
			assert.Equal(t, tc.name, apiErr.Exchange)
			assert.Equal(t, tc.wantCode, apiErr.Code)
		})
	}
}

func TestEnvelopePassesSuccessThrough(t *testing.T) {
	body := []byte(`{"code":"0","msg":"","data":[]}`)
	out, err := okxEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, body, out)

	body = []byte(`{"retCode":0,"retMsg":"OK","result":{}}`)
	out, err = bybitEnvelope(body)
	require.NoError(t, err)
	assert.Equal(t, body, out)
}
