package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/patrickmn/go-cache"

	"github.com/berkes/beancount-degiro/src/database"
	"github.com/berkes/beancount-degiro/src/logger"
)

// TickerService resolves ISINs to trading symbols through an in-memory
// cache backed by the sqlite ticker_cache table. It implements
// accounts.TickerResolver; a miss is not an error, account templates fall
// back to the ISIN.
type TickerService struct {
	memCache *cache.Cache
}

func NewTickerService(memCache *cache.Cache) *TickerService {
	return &TickerService{memCache: memCache}
}

func (s *TickerService) Ticker(isin string) (string, bool) {
	if isin == "" {
		return "", false
	}
	if cached, found := s.memCache.Get(tickerCacheKey(isin)); found {
		ticker := cached.(string)
		return ticker, ticker != ""
	}

	ticker, err := s.lookupDB(isin)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.L.Warn("Ticker lookup failed", "isin", isin, "error", err)
		}
		// Negative-cache misses so repeated template resolution stays cheap.
		s.memCache.Set(tickerCacheKey(isin), "", DefaultCacheExpiration)
		return "", false
	}
	s.memCache.Set(tickerCacheKey(isin), ticker, cache.NoExpiration)
	return ticker, true
}

// SetTicker stores a mapping in both layers.
func (s *TickerService) SetTicker(isin, ticker string) error {
	if database.DB != nil {
		_, err := database.DB.Exec(
			`INSERT INTO ticker_cache (isin, ticker) VALUES (?, ?)
			 ON CONFLICT(isin) DO UPDATE SET ticker = excluded.ticker, updated_at = CURRENT_TIMESTAMP`,
			isin, ticker,
		)
		if err != nil {
			return fmt.Errorf("storing ticker for %s: %w", isin, err)
		}
	}
	s.memCache.Set(tickerCacheKey(isin), ticker, cache.NoExpiration)
	return nil
}

func (s *TickerService) lookupDB(isin string) (string, error) {
	if database.DB == nil {
		return "", sql.ErrNoRows
	}
	var ticker string
	err := database.DB.QueryRow(`SELECT ticker FROM ticker_cache WHERE isin = ?`, isin).Scan(&ticker)
	if err != nil {
		return "", err
	}
	return ticker, nil
}

func tickerCacheKey(isin string) string {
	return "ticker_" + isin
}
