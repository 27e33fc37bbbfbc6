package processors

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/berkes/beancount-degiro/src/models"
	"github.com/berkes/beancount-degiro/src/rules"
)

// Correlator assigns a grouping key to every row that can be correlated.
// Rows carrying a broker order id keep it unconditionally; the remaining
// rows go through four heuristic passes plus a single-row fallback.
type Correlator struct {
	rules            rules.RuleSet
	homeCurrency     string
	tolerancePercent decimal.Decimal
}

func NewCorrelator(rs rules.RuleSet, homeCurrency string, tolerancePercent float64) *Correlator {
	return &Correlator{
		rules:            rs,
		homeCurrency:     homeCurrency,
		tolerancePercent: decimal.NewFromFloat(tolerancePercent),
	}
}

// oneCent is the threshold above which an FX residual gets its own
// correction posting.
var oneCent = decimal.New(1, -2)

// Correlate runs all passes in order and returns the surviving rows.
// Exchange-transfer pairs cancel out and are removed entirely; every other
// row is retained even when no key could be found.
func (c *Correlator) Correlate(rows []models.RawRow, rep *Report) []models.RawRow {
	for i := range rows {
		rows[i].GroupKey = rows[i].OrderID
	}

	c.pairConversions(rows, rep)

	// The remaining passes only consider rows that had no key when the
	// grouped passes started.
	ungrouped := make([]bool, len(rows))
	for i := range rows {
		ungrouped[i] = rows[i].GroupKey == ""
	}

	c.pairDividends(rows, ungrouped, rep)
	c.pairSplits(rows, ungrouped)
	removed := c.pairTransfers(rows, ungrouped, rep)
	c.assignSingletons(rows, removed)

	out := rows[:0]
	for i := range rows {
		if removed[i] {
			continue
		}
		if rows[i].GroupKey == "" {
			rep.Addf(models.DiagCorrelationAmbiguity, rows[i].Line,
				"row has no grouping key, treating as standalone: %q", rows[i].Description)
		}
		out = append(out, rows[i])
	}
	return out
}

// pairConversions walks the currency-exchange rows in original order and
// pairs every two consecutive legs. The first leg is assumed to be the
// base (home currency) leg; roles swap when the assumption fails. On any
// check failing, the base leg is discarded from pairing and the foreign
// leg restarts the scan as the new base.
func (c *Correlator) pairConversions(rows []models.RawRow, rep *Report) {
	base := -1
	for i := range rows {
		if _, ok := c.rules.Match(models.KindCurrencyExchange, rows[i].Description); !ok {
			continue
		}
		if base < 0 {
			base = i
			continue
		}

		bi, fi := base, i
		if rows[bi].ChangeCurrency != c.homeCurrency {
			bi, fi = fi, bi
		}
		b, f := &rows[bi], &rows[fi]

		if f.FX == nil {
			rep.Addf(models.DiagCorrelationAmbiguity, f.Line, "no FX rate for foreign conversion leg")
			base = i
			continue
		}
		if !sameInstant(b.Timestamp, f.Timestamp) {
			rep.Addf(models.DiagCorrelationAmbiguity, b.Line, "conversion date mismatch with line %d", f.Line)
			base = i
			continue
		}

		// One of calculated and actual is negative; their sum should be 0.
		calculated := b.Change.Mul(*f.FX)
		fxError := calculated.Add(*f.Change)
		errorPercent := fxError.Div(*b.Change).Abs().Mul(decimal.NewFromInt(100))
		if errorPercent.GreaterThan(c.tolerancePercent) {
			rep.Addf(models.DiagCorrelationAmbiguity, b.Line,
				"currency exchange match failed with line %d: %s %s * %s %s/%s != %s %s (error %s%%, tolerance %s%%)",
				f.Line, b.Change.Abs(), b.ChangeCurrency, f.FX, f.ChangeCurrency, b.ChangeCurrency,
				f.Change.Abs(), f.ChangeCurrency, errorPercent.Round(2), c.tolerancePercent)
			base = i
			continue
		}
		if (b.GroupKey == "") != (f.GroupKey == "") || (f.GroupKey != "" && f.GroupKey != b.GroupKey) {
			rep.Addf(models.DiagCorrelationAmbiguity, b.Line, "conversion order id mismatch with line %d", f.Line)
			base = i
			continue
		}

		if b.GroupKey == "" {
			key := uuid.NewString()
			b.GroupKey = key
			f.GroupKey = key
		}
		price := models.NewAmount(*f.FX, f.ChangeCurrency)
		b.FXPrice = &price
		if fxError.Abs().GreaterThanOrEqual(oneCent) {
			// The residual is at least one cent: post a correction leg so
			// the pair still balances.
			corr := fxError.Neg()
			f.FXCorrection = &corr
		}
		base = -1
	}
	if base >= 0 {
		rep.Addf(models.DiagCorrelationAmbiguity, rows[base].Line, "unmatched currency conversion leg")
	}
}

// pairDividends binds each dividend row to the withholding-tax rows of the
// same ISIN booked between 31 days before and 5 days after the dividend.
// A row that already received a synthesized key is overwritten (last write
// wins) with an ambiguity diagnostic; see DESIGN.md.
func (c *Correlator) pairDividends(rows []models.RawRow, ungrouped []bool, rep *Report) {
	for i := range rows {
		if !ungrouped[i] {
			continue
		}
		if _, ok := c.rules.Match(models.KindDividend, rows[i].Description); !ok {
			continue
		}
		key := uuid.NewString()
		lower := rows[i].Timestamp.Add(-31 * 24 * time.Hour)
		upper := rows[i].Timestamp.Add(5 * 24 * time.Hour)
		for j := range rows {
			if !ungrouped[j] || rows[j].ISIN != rows[i].ISIN {
				continue
			}
			if !rows[j].Timestamp.After(lower) || !rows[j].Timestamp.Before(upper) {
				continue
			}
			if _, ok := c.rules.Match(models.KindDividendTax, rows[j].Description); !ok {
				continue
			}
			c.assign(&rows[j], key, rep)
		}
		c.assign(&rows[i], key, rep)
	}
}

func (c *Correlator) assign(row *models.RawRow, key string, rep *Report) {
	if row.GroupKey != "" && row.GroupKey != key {
		rep.Addf(models.DiagCorrelationAmbiguity, row.Line, "ambiguous generated grouping key, overwriting")
	}
	row.GroupKey = key
}

// pairSplits gives all simultaneous legs of a stock split one shared key;
// split bookings never carry an order id.
func (c *Correlator) pairSplits(rows []models.RawRow, ungrouped []bool) {
	for i := range rows {
		if !ungrouped[i] || rows[i].GroupKey != "" {
			continue
		}
		if !c.rules.MatchSplit(rows[i].Description) {
			continue
		}
		key := uuid.NewString()
		for j := range rows {
			if !ungrouped[j] || rows[j].ISIN != rows[i].ISIN {
				continue
			}
			if !sameInstant(rows[j].Timestamp, rows[i].Timestamp) {
				continue
			}
			rows[j].GroupKey = key
		}
	}
}

// pairTransfers cancels out venue transfers: a keyless buy with exactly one
// equal-and-opposite counterpart at the same timestamp, ISIN and currency.
// Both rows are removed; they have no net economic effect. Any other match
// count leaves the buy row unresolved.
func (c *Correlator) pairTransfers(rows []models.RawRow, ungrouped []bool, rep *Report) []bool {
	removed := make([]bool, len(rows))
	for i := range rows {
		if !ungrouped[i] || rows[i].GroupKey != "" || removed[i] {
			continue
		}
		if _, ok := c.rules.Match(models.KindBuy, rows[i].Description); !ok {
			continue
		}
		var matches []int
		for j := range rows {
			if j == i || !ungrouped[j] || rows[j].GroupKey != "" || removed[j] {
				continue
			}
			if rows[j].ISIN != rows[i].ISIN || rows[j].ChangeCurrency != rows[i].ChangeCurrency {
				continue
			}
			if !sameInstant(rows[j].Timestamp, rows[i].Timestamp) {
				continue
			}
			if !rows[j].Change.Equal(rows[i].Change.Neg()) {
				continue
			}
			matches = append(matches, j)
		}
		if len(matches) != 1 {
			rep.Addf(models.DiagCorrelationAmbiguity, rows[i].Line,
				"erroneous exchange transfer match: %d counterparts", len(matches))
			continue
		}
		removed[i] = true
		removed[matches[0]] = true
	}
	return removed
}

// assignSingletons keys the inherently single-leg kinds: liquidity fund
// revaluations, fees, certificate payouts, interest and deposits.
func (c *Correlator) assignSingletons(rows []models.RawRow, removed []bool) {
	for i := range rows {
		if rows[i].GroupKey != "" || removed[i] {
			continue
		}
		d := rows[i].Description
		_, lf := c.rules.Match(models.KindLiquidityFund, d)
		_, fee := c.rules.Match(models.KindFee, d)
		_, interest := c.rules.Match(models.KindInterest, d)
		_, deposit := c.rules.Match(models.KindDeposit, d)
		if lf || fee || interest || deposit || c.rules.MatchPayout(d) {
			rows[i].GroupKey = uuid.NewString()
		}
	}
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
