package rules

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkes/beancount-degiro/src/models"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestGet(t *testing.T) {
	de, err := Get("de")
	require.NoError(t, err)
	assert.Equal(t, "de", de.Language())

	en, err := Get("EN")
	require.NoError(t, err)
	assert.Equal(t, "en", en.Language())

	_, err = Get("fr")
	assert.Error(t, err)
}

func TestParseDecimalGermanLocale(t *testing.T) {
	rs := German()

	d, err := rs.ParseDecimal("1.234,56")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimalFromString(t, "1234.56")))

	d, err = rs.ParseDecimal(" -2,50 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimalFromString(t, "-2.5")))

	_, err = rs.ParseDecimal("")
	assert.Error(t, err)

	_, err = rs.ParseDecimal("abc")
	assert.Error(t, err)
}

func TestParseDecimalEnglishLocale(t *testing.T) {
	rs := English()

	d, err := rs.ParseDecimal("1,234.56")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimalFromString(t, "1234.56")))
}

func TestParseDateTime(t *testing.T) {
	rs := German()

	got, err := rs.ParseDateTime("01-03-2023", "10:30")
	require.NoError(t, err)
	assert.Equal(t, "2023-03-01 10:30", got.Format("2006-01-02 15:04"))

	_, err = rs.ParseDateTime("", "10:30")
	assert.Error(t, err)

	_, err = rs.ParseDateTime("2023-03-01", "10:30")
	assert.Error(t, err, "layout is day-month-year")
}

func TestDividendPatternIsAnchored(t *testing.T) {
	t.Run("de", func(t *testing.T) {
		rs := German()
		_, ok := rs.Match(models.KindDividend, "Dividende")
		assert.True(t, ok)
		_, ok = rs.Match(models.KindDividend, "Dividendensteuer")
		assert.False(t, ok, "tax rows must not classify as dividends")
		_, ok = rs.Match(models.KindDividendTax, "Dividendensteuer")
		assert.True(t, ok)
	})

	t.Run("en", func(t *testing.T) {
		rs := English()
		_, ok := rs.Match(models.KindDividend, "Dividend")
		assert.True(t, ok)
		_, ok = rs.Match(models.KindDividend, "Dividend Tax")
		assert.False(t, ok)
		_, ok = rs.Match(models.KindDividendTax, "Dividend Tax")
		assert.True(t, ok)
		_, ok = rs.Match(models.KindDividend, "Distribution iShares Core MSCI World")
		assert.True(t, ok)
	})
}

func TestEnglishTradeExtraction(t *testing.T) {
	rs := English()

	vals, ok := rs.Match(models.KindBuy, "Buy 1,000 @ 12.34 USD")
	require.True(t, ok)
	require.NotNil(t, vals)
	assert.True(t, vals.Quantity.Equal(decimalFromString(t, "1000")))
	assert.True(t, vals.Price.Equal(decimalFromString(t, "12.34")))
	assert.Equal(t, "USD", vals.Currency)
	assert.False(t, vals.Split)

	vals, ok = rs.Match(models.KindSell, "STOCK SPLIT: Sell 10 @ 150.00 USD")
	require.True(t, ok)
	require.NotNil(t, vals)
	assert.True(t, vals.Split)

	vals, ok = rs.Match(models.KindSell, "CERTIFICATE PAYOUT: Sell 5 @ 20.00 EUR")
	require.True(t, ok)
	require.NotNil(t, vals)
	assert.False(t, vals.Split)
}

func TestAuxiliaryPatterns(t *testing.T) {
	rs := English()
	assert.True(t, rs.MatchCashSweep("flatex Cash Sweep Transfer"))
	assert.True(t, rs.MatchCashSweep("Degiro Cash Sweep Transfer"))
	assert.False(t, rs.MatchCashSweep("Deposit"))
	assert.True(t, rs.MatchSplit("STOCK SPLIT: Buy 40 @ 37.50 USD"))
	assert.False(t, rs.MatchSplit("Buy 40 @ 37.50 USD"))
	assert.True(t, rs.MatchPayout("CERTIFICATE PAYOUT: Sell 5 @ 20.00 EUR"))
}
