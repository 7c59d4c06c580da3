package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cryptovision/internal/domain/entity"
)

type stubPortfolioService struct {
	portfolio *entity.Portfolio
	err       error
}

func (s *stubPortfolioService) Aggregate(context.Context, int64) (*entity.Portfolio, error) {
	return s.portfolio, s.err
}

func newTestRouter(svc *stubPortfolioService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(NewHandler(svc, zap.NewNop()))
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubPortfolioService{portfolio: entity.NewPortfolio()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
}

func TestGetPortfolioBadUserID(t *testing.T) {
	router := newTestRouter(&stubPortfolioService{portfolio: entity.NewPortfolio()})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/portfolios/abc", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetPortfolioAggregationError(t *testing.T) {
	router := newTestRouter(&stubPortfolioService{err: errors.New("db down")})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/portfolios/42", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestGetPortfolioSuccess(t *testing.T) {
	p := entity.NewPortfolio()
	p.Accounts["BINANCE (Real)"] = map[string]entity.PricedAsset{
		"BTC": {Amount: 1, ValueUSD: 60000},
	}
	router := newTestRouter(&stubPortfolioService{portfolio: p})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/portfolios/42", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp PortfolioResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.StatusMessage != "Portfolio retrieved successfully." {
		t.Errorf("status message = %q", resp.StatusMessage)
	}
	if got := resp.Data.Portfolio.Accounts["BINANCE (Real)"]["BTC"].ValueUSD; got != 60000 {
		t.Errorf("BTC value = %v", got)
	}
}
