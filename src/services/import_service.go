package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/berkes/beancount-degiro/src/accounts"
	"github.com/berkes/beancount-degiro/src/config"
	"github.com/berkes/beancount-degiro/src/database"
	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/parsers"
	"github.com/berkes/beancount-degiro/src/processors"
	"github.com/berkes/beancount-degiro/src/render"
	"github.com/berkes/beancount-degiro/src/rules"
)

const (
	ckLatestImportResult = "latest_import_result"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type importServiceImpl struct {
	parser      *parsers.DegiroParser
	engine      *processors.Engine
	renderer    *render.Renderer
	language    string
	resultCache *cache.Cache
}

// NewImportService wires the full pipeline from the loaded configuration.
func NewImportService(tickers accounts.TickerResolver, resultCache *cache.Cache) (ImportService, error) {
	cfg := config.Cfg
	rs, err := rules.Get(cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("loading rule set: %w", err)
	}

	resolver := accounts.NewResolver(tickers)
	templates := accounts.Templates{
		Liquidity:     cfg.LiquidityAccount,
		Stocks:        cfg.StocksAccount,
		Splits:        cfg.SplitsAccount,
		Fees:          cfg.FeesAccount,
		Interest:      cfg.InterestAccount,
		PnL:           cfg.PnLAccount,
		DivIncome:     cfg.DivIncomeAccount,
		Wht:           cfg.WhtAccount,
		RoundingError: cfg.RoundingErrorAccount,
		Deposit:       cfg.DepositAccount,
	}
	engine := processors.NewEngine(rs, resolver, processors.Options{
		HomeCurrency:            cfg.HomeCurrency,
		FXMatchTolerancePercent: cfg.FXMatchTolerancePercent,
		Templates:               templates,
	})

	return &importServiceImpl{
		parser:      parsers.NewDegiroParser(rs, cfg.FileEncoding),
		engine:      engine,
		renderer:    render.NewRenderer(),
		language:    cfg.Language,
		resultCache: resultCache,
	}, nil
}

func (s *importServiceImpl) ProcessImport(fileReader io.Reader, filename string) (*ImportResult, error) {
	start := time.Now()
	logger.L.Info("ProcessImport START", "filename", filename, "language", s.language)

	rows, err := s.parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	engineResult := s.engine.Run(rows)

	var sb strings.Builder
	if err := s.renderer.Render(&sb, engineResult.Transactions, engineResult.Balances); err != nil {
		return nil, fmt.Errorf("rendering beancount output: %w", err)
	}

	result := &ImportResult{
		Beancount:        sb.String(),
		TransactionCount: len(engineResult.Transactions),
		BalanceCount:     len(engineResult.Balances),
		Diagnostics:      engineResult.Diagnostics,
		DurationMs:       time.Since(start).Milliseconds(),
	}

	s.recordImport(filename, result)
	if s.resultCache != nil {
		s.resultCache.Set(ckLatestImportResult, result, DefaultCacheExpiration)
	}

	logger.L.Info("ProcessImport END",
		"filename", filename,
		"transactions", result.TransactionCount,
		"balances", result.BalanceCount,
		"diagnostics", len(result.Diagnostics),
		"duration", time.Since(start))
	return result, nil
}

func (s *importServiceImpl) LatestResult() (*ImportResult, bool) {
	if s.resultCache == nil {
		return nil, false
	}
	if cached, found := s.resultCache.Get(ckLatestImportResult); found {
		return cached.(*ImportResult), true
	}
	return nil, false
}

// recordImport persists a history row; failures are logged, not fatal.
func (s *importServiceImpl) recordImport(filename string, result *ImportResult) {
	if database.DB == nil {
		return
	}
	_, err := database.DB.Exec(
		`INSERT INTO imports (filename, language, transaction_count, balance_count, diagnostic_count, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		filename, s.language, result.TransactionCount, result.BalanceCount, len(result.Diagnostics), result.DurationMs,
	)
	if err != nil {
		logger.L.Warn("Failed to record import history", "filename", filename, "error", err)
	}
}
