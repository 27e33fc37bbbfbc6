package rules

import (
	"regexp"

	"github.com/berkes/beancount-degiro/src/models"
)

// German is the rule set for DEGIRO statements exported in German
// (flatex-backed accounts).
func German() *Set {
	return NewSet(Definition{
		Language: "de",
		Fields: []string{
			"Datum",
			"Uhrze", // prefix of "Uhrzeit"
			"Valutadatum",
			"Produkt",
			"ISIN",
			"Beschreibung",
			"FX",
			"Änderung", // currency of change
			"",         // amount of change
			"Saldo",    // currency of balance
			"",         // amount of balance
			"Order-ID",
		},
		ThousandsSep:   ".",
		DecimalSep:     ",",
		DatetimeLayout: "02-01-2006 15:04",
		Matchers: map[models.Kind]Matcher{
			models.KindLiquidityFund: PatternMatcher{regexp.MustCompile(`^Geldmarktfonds (Preisänderung|Umwandlung)`)},
			models.KindFee:           PatternMatcher{regexp.MustCompile(`^(Transaktionsgebühr)|(Gebühr für Realtimekurse)|(Einrichtung von Handelsmodalitäten)`)},
			models.KindDeposit:       PatternMatcher{regexp.MustCompile(`^(((SOFORT|flatex) )?Einzahlung)|(Auszahlung)`)},
			models.KindBuy: TradeMatcher{
				Pattern:       regexp.MustCompile(`^(AKTIENSPLIT: )?Kauf ([\d.]+) zu je ([\d,]+) (\w+)`),
				SplitGroup:    1,
				QuantityGroup: 2,
				PriceGroup:    3,
				CurrencyGroup: 4,
			},
			models.KindSell: TradeMatcher{
				Pattern:       regexp.MustCompile(`^(((AKTIENSPLIT)|(AUSZAHLUNG ZERTIFIKAT)): )?Verkauf ([\d.]+) zu je ([\d,]+) (\w+)`),
				SplitGroup:    3,
				QuantityGroup: 5,
				PriceGroup:    6,
				CurrencyGroup: 7,
			},
			models.KindInterest:         PatternMatcher{regexp.MustCompile(`^Flatex Interest`)},
			models.KindDividend:         PatternMatcher{regexp.MustCompile(`^(Dividende|(Ausschüttung.*))$`)},
			models.KindDividendTax:      PatternMatcher{regexp.MustCompile(`^Dividendensteuer`)},
			models.KindCurrencyExchange: PatternMatcher{regexp.MustCompile(`^Währungswechsel (\(Ausbuchung\)|\(Einbuchung\))`)},
		},
		CashSweep: regexp.MustCompile(`^(flatex|Degiro) Cash Sweep Transfer`),
		Split:     regexp.MustCompile(`^AKTIENSPLIT:`),
		Payout:    regexp.MustCompile(`^AUSZAHLUNG ZERTIFIKAT`),
	})
}
