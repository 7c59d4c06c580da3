package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptovision/internal/app/port"
	"cryptovision/internal/config"
	"cryptovision/internal/domain/entity"
	"cryptovision/internal/exchange"
	"cryptovision/pkg/metrics"
)

// PortfolioServiceImpl implements port.PortfolioService: it fans one balance
// fetch out per account, prices each snapshot in the quote currency, and
// folds everything into a single Portfolio.
type PortfolioServiceImpl struct {
	repo    port.AccountRepository
	factory exchange.Factory
	cfg     config.PortfolioConfig
	logger  *zap.Logger
}

// NewPortfolioService creates a new instance of PortfolioServiceImpl.
func NewPortfolioService(
	repo port.AccountRepository,
	factory exchange.Factory,
	cfg config.PortfolioConfig,
	logger *zap.Logger,
) *PortfolioServiceImpl {
	return &PortfolioServiceImpl{
		repo:    repo,
		factory: factory,
		cfg:     cfg,
		logger:  logger.Named("PortfolioService"),
	}
}

// Aggregate loads the user's accounts from the credential store and runs one
// aggregation wave over them. A store failure is the only condition that
// surfaces as an error; everything per-account becomes portfolio data.
func (s *PortfolioServiceImpl) Aggregate(ctx context.Context, userID int64) (*entity.Portfolio, error) {
	accounts, err := s.repo.ListAccounts(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list accounts", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return s.AggregateAccounts(ctx, accounts), nil
}

// AggregateAccounts fetches every account concurrently and merges the
// results. Each goroutine writes only its own indexed slot, so results stay
// attributed to their originating account regardless of completion order.
func (s *PortfolioServiceImpl) AggregateAccounts(ctx context.Context, accounts []entity.Account) *entity.Portfolio {
	portfolio := entity.NewPortfolio()
	if len(accounts) == 0 {
		return portfolio
	}

	start := time.Now()
	results := make([]entity.AccountResult, len(accounts))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, acc := range accounts {
		i, acc := i, acc
		eg.Go(func() error {
			results[i] = s.fetchAccount(egCtx, acc)
			return nil
		})
	}
	// Goroutines never return an error: failures are data in their slot.
	_ = eg.Wait()

	seen := make(map[string]int, len(accounts))
	for _, res := range results {
		label := res.Account.Label()
		seen[label]++
		if n := seen[label]; n > 1 {
			// Duplicate accounts on the same exchange+mode get a sequence
			// suffix instead of silently overwriting each other.
			label = fmt.Sprintf("%s #%d", label, n)
		}
		if res.Failed() {
			portfolio.Errors = append(portfolio.Errors, label+": "+res.Err)
			continue
		}
		portfolio.Accounts[label] = res.Assets
	}

	metrics.AggregationDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("aggregation complete",
		zap.Int("accounts", len(accounts)),
		zap.Int("succeeded", len(portfolio.Accounts)),
		zap.Int("failed", len(portfolio.Errors)),
		zap.Duration("elapsed", time.Since(start)))
	return portfolio
}

// fetchAccount resolves one account to its result. When the first attempt
// fails with an error whose text matches a known mode-mismatch signature and
// mode retry is enabled, one attempt in the opposite mode is made; the
// second failure wins. This is a best-effort policy, not a classification
// guarantee.
func (s *PortfolioServiceImpl) fetchAccount(ctx context.Context, acc entity.Account) entity.AccountResult {
	assets, err := s.fetchOnce(ctx, acc, acc.Demo)
	if err != nil && s.cfg.ModeRetry && looksLikeModeMismatch(err) {
		s.logger.Warn("balance fetch failed with a mode-mismatch signature, retrying in opposite mode",
			zap.String("exchange", acc.Exchange), zap.Bool("demo", acc.Demo), zap.Error(err))
		if retried, retryErr := s.fetchOnce(ctx, acc, !acc.Demo); retryErr == nil {
			assets, err = retried, nil
		} else {
			err = retryErr
		}
	}

	if err != nil {
		metrics.ExchangeFetches.WithLabelValues(acc.Exchange, "error").Inc()
		s.logger.Warn("balance fetch failed",
			zap.String("exchange", acc.Exchange), zap.Int64("account_id", acc.ID), zap.Error(err))
		return entity.AccountResult{Account: acc, Err: err.Error()}
	}
	metrics.ExchangeFetches.WithLabelValues(acc.Exchange, "success").Inc()
	return entity.AccountResult{Account: acc, Assets: assets}
}

// fetchOnce runs one bounded balance-plus-pricing round trip against a fresh
// client. The client is released on every exit path.
func (s *PortfolioServiceImpl) fetchOnce(ctx context.Context, acc entity.Account, demo bool) (map[string]entity.PricedAsset, error) {
	client, err := s.factory.New(acc.Exchange, exchange.Credentials{
		APIKey:     acc.APIKey,
		APISecret:  acc.APISecret,
		Passphrase: acc.Passphrase,
	}, demo)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
	defer cancel()

	snapshot, err := client.FetchBalance(fetchCtx)
	if err != nil {
		return nil, err
	}
	return s.priceSnapshot(fetchCtx, client, snapshot), nil
}

// priceSnapshot values a snapshot in the quote currency. Quote-currency
// holdings (and USD, treated at par) are priced at exactly 1.0 without a
// lookup; a failed or partial ticker fetch degrades the affected assets to a
// zero valuation, never to an account failure.
func (s *PortfolioServiceImpl) priceSnapshot(ctx context.Context, client exchange.Client, snapshot map[string]float64) map[string]entity.PricedAsset {
	quote := s.cfg.QuoteCurrency

	var toPrice []string
	for sym, amount := range snapshot {
		if amount <= 0 {
			continue
		}
		if !isQuote(sym, quote) {
			toPrice = append(toPrice, sym)
		}
	}

	prices := map[string]float64{}
	if len(toPrice) > 0 {
		fetched, err := client.FetchLastPrices(ctx, toPrice, quote)
		if err != nil {
			s.logger.Warn("ticker fetch failed, unresolved assets valued at zero",
				zap.String("exchange", client.Name()), zap.Error(err))
		} else {
			prices = fetched
		}
	}

	assets := make(map[string]entity.PricedAsset, len(snapshot))
	for sym, amount := range snapshot {
		if amount <= 0 {
			continue
		}
		price := prices[sym]
		if isQuote(sym, quote) {
			price = 1.0
		}
		assets[sym] = entity.PricedAsset{Amount: amount, ValueUSD: amount * price}
	}
	return assets
}

func (s *PortfolioServiceImpl) fetchTimeout() time.Duration {
	if s.cfg.FetchTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(s.cfg.FetchTimeoutSeconds) * time.Second
}

func isQuote(symbol, quote string) bool {
	return symbol == quote || symbol == "USD"
}

// modeMismatchSignatures are provider error fragments that in practice mean
// "valid key, wrong real/demo mode": okx 50119 (APIKey does not exist),
// bybit 10003 (invalid api key), bitget 40037, kucoin 400003, plus the
// generic phrasings several exchanges use.
var modeMismatchSignatures = []string{
	"50119",
	"10003",
	"40037",
	"400003",
	"invalid api key",
	"api key is invalid",
	"apikey does not exist",
	"api-key format invalid",
}

func looksLikeModeMismatch(err error) bool {
	text := strings.ToLower(err.Error())
	for _, sig := range modeMismatchSignatures {
		if strings.Contains(text, sig) {
			return true
		}
	}
	return false
}
