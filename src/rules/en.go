package rules

import (
	"regexp"

	"github.com/berkes/beancount-degiro/src/models"
)

// English is the rule set for DEGIRO statements exported in English.
func English() *Set {
	return NewSet(Definition{
		Language: "en",
		Fields: []string{
			"Date",
			"Time",
			"Value date",
			"Product",
			"ISIN",
			"Description",
			"FX",
			"Change", // currency of change
			"",       // amount of change
			"Balance", // currency of balance
			"",        // amount of balance
			"Order Id",
		},
		ThousandsSep:   ",",
		DecimalSep:     ".",
		DatetimeLayout: "02-01-2006 15:04",
		Matchers: map[models.Kind]Matcher{
			models.KindLiquidityFund: PatternMatcher{regexp.MustCompile(`^Money Market fund (Price Change|Conversion)`)},
			models.KindFee:           PatternMatcher{regexp.MustCompile(`^(DEGIRO )?(Transaction and/or third party fees)|(Exchange Connection Fee)|(Real Time Prices Fee)`)},
			models.KindDeposit:       PatternMatcher{regexp.MustCompile(`^(((SOFORT|iDEAL|flatex) )?Deposit)|(Withdrawal)`)},
			models.KindBuy: TradeMatcher{
				Pattern:       regexp.MustCompile(`^(STOCK SPLIT: )?Buy ([\d,]+) @ ([\d.]+) (\w+)`),
				SplitGroup:    1,
				QuantityGroup: 2,
				PriceGroup:    3,
				CurrencyGroup: 4,
			},
			models.KindSell: TradeMatcher{
				Pattern:       regexp.MustCompile(`^(((STOCK SPLIT)|(CERTIFICATE PAYOUT)): )?Sell ([\d,]+) @ ([\d.]+) (\w+)`),
				SplitGroup:    3,
				QuantityGroup: 5,
				PriceGroup:    6,
				CurrencyGroup: 7,
			},
			models.KindInterest:         PatternMatcher{regexp.MustCompile(`^Flatex Interest`)},
			models.KindDividend:         PatternMatcher{regexp.MustCompile(`^(Dividend|(Distribution.*))$`)},
			models.KindDividendTax:      PatternMatcher{regexp.MustCompile(`^Dividend [Tt]ax`)},
			models.KindCurrencyExchange: PatternMatcher{regexp.MustCompile(`^Currency [Ee]xchange (\(Debit\)|\(Credit\))`)},
		},
		CashSweep: regexp.MustCompile(`^(flatex|Degiro) Cash Sweep Transfer`),
		Split:     regexp.MustCompile(`^STOCK SPLIT:`),
		Payout:    regexp.MustCompile(`^CERTIFICATE PAYOUT`),
	})
}
