package exchange

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// transport is the shared outbound HTTP layer for all exchange clients:
// fasthttp for the wire, a token-bucket limiter so a burst of balance and
// ticker calls stays inside the exchange's public rate limits, and a hard
// per-request deadline.
type transport struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *zap.Logger
}

func newTransport(timeout time.Duration, logger *zap.Logger) *transport {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &transport{
		client: &fasthttp.Client{
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
		},
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 5),
		timeout: timeout,
		logger:  logger,
	}
}

// do executes a request and returns the status code and body. The context
// deadline wins over the transport default when it is sooner.
func (t *transport) do(ctx context.Context, method, url string, headers map[string]string, body []byte) (int, []byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return 0, nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(method)
	req.Header.SetContentType("application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if len(body) > 0 {
		req.SetBody(body)
	}

	deadline := time.Now().Add(t.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := t.client.DoDeadline(req, resp, deadline); err != nil {
		t.logger.Debug("exchange request failed", zap.String("url", url), zap.Error(err))
		return 0, nil, fmt.Errorf("request %s: %w", url, err)
	}

	// fasthttp reuses response buffers after release.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return resp.StatusCode(), out, nil
}

func (t *transport) get(ctx context.Context, url string, headers map[string]string) (int, []byte, error) {
	return t.do(ctx, fasthttp.MethodGet, url, headers, nil)
}

func (t *transport) close() {
	t.client.CloseIdleConnections()
}
