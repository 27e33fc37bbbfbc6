// Package accounts resolves account-name templates into concrete ledger
// account strings.
package accounts

import "strings"

// TickerResolver maps an ISIN to a trading symbol. Implementations may be
// backed by a persistent cache; resolution failures are tolerated.
type TickerResolver interface {
	Ticker(isin string) (string, bool)
}

// Templates holds the configured account-name templates. Supported tokens:
// {currency}, {isin}, {ticker}.
type Templates struct {
	Liquidity     string
	Stocks        string
	Splits        string
	Fees          string
	Interest      string
	PnL           string
	DivIncome     string
	Wht           string
	RoundingError string
	Deposit       string // empty disables deposit bookings
}

// Vars are the token values available for one resolution.
type Vars struct {
	Currency string
	ISIN     string
}

// Resolver expands templates. When a template uses {ticker} and no ticker
// is known for the ISIN, the ISIN itself is substituted so the account
// stays unique.
type Resolver struct {
	tickers TickerResolver
}

func NewResolver(tickers TickerResolver) *Resolver {
	return &Resolver{tickers: tickers}
}

func (r *Resolver) Resolve(template string, v Vars) string {
	ticker := v.ISIN
	if r.tickers != nil && strings.Contains(template, "{ticker}") {
		if t, ok := r.tickers.Ticker(v.ISIN); ok {
			ticker = t
		}
	}
	return strings.NewReplacer(
		"{currency}", v.Currency,
		"{isin}", v.ISIN,
		"{ticker}", ticker,
	).Replace(template)
}
