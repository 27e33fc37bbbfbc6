package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkes/beancount-degiro/src/models"
)

func TestEngineDividendWithTax(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-01-10 12:00", isin: "DE000BASF111", desc: "Dividende", cur: "EUR", change: "10.00", balCur: "EUR", balance: "110.00"},
		rowSpec{line: 3, when: "2023-01-12 12:00", isin: "DE000BASF111", desc: "Dividendensteuer", cur: "EUR", change: "-1.50", balCur: "EUR", balance: "108.50"},
	))

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, "DE000BASF111", tx.Payee)
	assert.Equal(t, "Dividend DE000BASF111", tx.Narration)
	assert.NotEmpty(t, tx.Metadata["uuid"])

	require.Len(t, tx.Postings, 4)
	assert.Equal(t, "Assets:Degiro:EUR", tx.Postings[0].Account)
	assert.True(t, tx.Postings[0].Amount.Number.Equal(dec("10.00")))
	assert.Equal(t, "Income:Dividends", tx.Postings[1].Account)
	assert.True(t, tx.Postings[1].Amount.Number.Equal(dec("-10.00")))
	assert.Equal(t, "Assets:Degiro:EUR", tx.Postings[2].Account)
	assert.True(t, tx.Postings[2].Amount.Number.Equal(dec("-1.50")))
	assert.Equal(t, "Expenses:WithholdingTax", tx.Postings[3].Account)
	assert.True(t, tx.Postings[3].Amount.Number.Equal(dec("1.50")))

	// Legs net to the cash movement of 8.50 EUR against income/expense.
	net := dec("0")
	for _, p := range tx.Postings {
		net = net.Add(p.Amount.Number)
	}
	assert.True(t, net.IsZero())

	require.Len(t, result.Balances, 1)
	assert.Equal(t, "2023-01-13", result.Balances[0].Date.Format("2006-01-02"))
	assert.True(t, result.Balances[0].Amount.Number.Equal(dec("108.50")))
	assert.Empty(t, result.Diagnostics)
}

func TestEngineBuyWithFee(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-03-01 10:00", isin: "US0378331005", desc: "Kauf 10 zu je 150,00 USD", cur: "USD", change: "-1500.00", balCur: "USD", balance: "-1500.00", orderID: "ord-1"},
		rowSpec{line: 3, when: "2023-03-01 10:00", isin: "US0378331005", desc: "Transaktionsgebühr", cur: "EUR", change: "-2.00", balCur: "EUR", balance: "98.00", orderID: "ord-1"},
	))

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]

	// The trade outranks the fee for payee and narration.
	assert.Equal(t, "US0378331005", tx.Payee)
	assert.Equal(t, "BUY 10 US0378331005 @ 150 USD", tx.Narration)
	assert.Equal(t, "ord-1", tx.Metadata["uuid"])

	require.Len(t, tx.Postings, 4)
	stock := tx.Postings[1]
	assert.Equal(t, "Assets:Stocks:US0378331005", stock.Account)
	assert.True(t, stock.Amount.Number.Equal(dec("10")))
	assert.Equal(t, "US0378331005", stock.Amount.Currency)
	require.NotNil(t, stock.Cost)
	require.NotNil(t, stock.Cost.PerUnit)
	assert.True(t, stock.Cost.PerUnit.Equal(dec("150.00")))
	assert.Equal(t, "USD", stock.Cost.Currency)
	require.NotNil(t, stock.Cost.Date)
	assert.Equal(t, "2023-03-01", stock.Cost.Date.Format("2006-01-02"))

	fee := tx.Postings[3]
	assert.Equal(t, "Expenses:Fees:EUR", fee.Account)
	assert.True(t, fee.Amount.Number.Equal(dec("2.00")))

	// Currencies surface in first-observed order.
	require.Len(t, result.Balances, 2)
	assert.Equal(t, "USD", result.Balances[0].Amount.Currency)
	assert.Equal(t, "EUR", result.Balances[1].Amount.Currency)
}

func TestEngineSell(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-03-10 11:00", isin: "US0378331005", desc: "Verkauf 10 zu je 160,00 USD", cur: "USD", change: "1600.00", orderID: "ord-2"},
	))

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, "SELL -10 US0378331005 @ 160 USD", tx.Narration)

	require.Len(t, tx.Postings, 3)
	stock := tx.Postings[1]
	assert.True(t, stock.Amount.Number.Equal(dec("-10")))
	require.NotNil(t, stock.Cost, "empty cost spec selects the existing lot")
	assert.Nil(t, stock.Cost.PerUnit)
	require.NotNil(t, stock.Price)
	assert.True(t, stock.Price.Number.Equal(dec("160.00")))
	assert.Equal(t, "USD", stock.Price.Currency)

	pnl := tx.Postings[2]
	assert.Equal(t, "Income:PnL", pnl.Account)
	assert.Nil(t, pnl.Amount, "amount left for the ledger to infer")
}

func TestEngineCurrencyExchange(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-02-01 09:00", desc: "Währungswechsel (Ausbuchung)", cur: "EUR", change: "-100.00", balCur: "EUR", balance: "0.00"},
		rowSpec{line: 3, when: "2023-02-01 09:00", desc: "Währungswechsel (Einbuchung)", fx: "1.1", cur: "USD", change: "109.80", balCur: "USD", balance: "109.80"},
	))

	require.Len(t, result.Transactions, 1)
	tx := result.Transactions[0]
	assert.Equal(t, "Degiro", tx.Payee)
	assert.Equal(t, "Currency exchange", tx.Narration)

	require.Len(t, tx.Postings, 3)
	base := tx.Postings[0]
	assert.True(t, base.Amount.Number.Equal(dec("-100.00")))
	require.NotNil(t, base.Price)
	assert.True(t, base.Price.Number.Equal(dec("1.1")))
	assert.Equal(t, "USD", base.Price.Currency)

	foreign := tx.Postings[1]
	assert.True(t, foreign.Amount.Number.Equal(dec("109.80")))

	correction := tx.Postings[2]
	assert.Equal(t, "Expenses:RoundingError", correction.Account)
	assert.True(t, correction.Amount.Number.Equal(dec("0.20")))
	assert.Equal(t, "USD", correction.Amount.Currency)
	assert.Empty(t, result.Diagnostics)
}

func TestEngineDepositHandling(t *testing.T) {
	deposit := makeRows(
		rowSpec{line: 2, when: "2023-01-02 09:00", desc: "Einzahlung", cur: "EUR", change: "500.00", balCur: "EUR", balance: "500.00"},
	)

	t.Run("skipped without a deposit account", func(t *testing.T) {
		result := testEngine(testTemplates()).Run(deposit)

		assert.Empty(t, result.Transactions)
		// The balance still counts even though the row produced nothing.
		require.Len(t, result.Balances, 1)
		assert.True(t, result.Balances[0].Amount.Number.Equal(dec("500.00")))
	})

	t.Run("posted against the configured account", func(t *testing.T) {
		templates := testTemplates()
		templates.Deposit = "Assets:Bank:Checking"
		result := testEngine(templates).Run(deposit)

		require.Len(t, result.Transactions, 1)
		tx := result.Transactions[0]
		assert.Equal(t, "You", tx.Payee)
		assert.Equal(t, "Deposit/Withdrawal", tx.Narration)
		require.Len(t, tx.Postings, 2)
		assert.Equal(t, "Assets:Bank:Checking", tx.Postings[1].Account)
		assert.True(t, tx.Postings[1].Amount.Number.Equal(dec("-500.00")))
	})
}

func TestEngineBalanceLastObservationWins(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-01-02 09:00", desc: "Flatex Interest", cur: "EUR", change: "-0.10", balCur: "EUR", balance: "99.90"},
		rowSpec{line: 3, when: "2023-01-15 09:00", desc: "Transaktionsgebühr", cur: "EUR", change: "-2.00", balCur: "EUR", balance: "97.90"},
	))

	require.Len(t, result.Balances, 1)
	b := result.Balances[0]
	assert.True(t, b.Amount.Number.Equal(dec("97.90")))
	assert.Equal(t, "2023-01-16", b.Date.Format("2006-01-02"))
	assert.Equal(t, "Assets:Degiro:EUR", b.Account)
}

func TestEngineSeparatesKeylessRows(t *testing.T) {
	engine := testEngine(testTemplates())
	result := engine.Run(makeRows(
		rowSpec{line: 2, when: "2023-01-02 09:00", desc: "Unbekannte Buchung A", cur: "EUR", change: "-1.00"},
		rowSpec{line: 3, when: "2023-01-02 10:00", desc: "Unbekannte Buchung B", cur: "EUR", change: "-2.00"},
	))

	// Each keyless row stands alone, flagged but still rendered.
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, noPayee, result.Transactions[0].Payee)
	assert.Equal(t, noDescription, result.Transactions[0].Narration)
	assert.Empty(t, result.Transactions[0].Metadata)

	var kinds []models.DiagnosticKind
	for _, d := range result.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	assert.Contains(t, kinds, models.DiagCorrelationAmbiguity)
	assert.Contains(t, kinds, models.DiagUnclassifiedRow)
}

func TestEngineIsDeterministic(t *testing.T) {
	rows := func() []models.RawRow {
		return makeRows(
			rowSpec{line: 2, when: "2023-01-10 12:00", isin: "DE000BASF111", desc: "Dividende", cur: "EUR", change: "10.00", balCur: "EUR", balance: "110.00"},
			rowSpec{line: 3, when: "2023-01-12 12:00", isin: "DE000BASF111", desc: "Dividendensteuer", cur: "EUR", change: "-1.50", balCur: "EUR", balance: "108.50"},
			rowSpec{line: 4, when: "2023-02-01 09:00", desc: "Währungswechsel (Ausbuchung)", cur: "EUR", change: "-100.00"},
			rowSpec{line: 5, when: "2023-02-01 09:00", desc: "Währungswechsel (Einbuchung)", fx: "1.1", cur: "USD", change: "110.00"},
		)
	}
	a := testEngine(testTemplates()).Run(rows())
	b := testEngine(testTemplates()).Run(rows())

	require.Len(t, b.Transactions, len(a.Transactions))
	for i := range a.Transactions {
		assert.Equal(t, a.Transactions[i].Narration, b.Transactions[i].Narration)
		assert.Len(t, b.Transactions[i].Postings, len(a.Transactions[i].Postings))
	}
	assert.Equal(t, a.Balances, b.Balances)
	assert.Len(t, b.Diagnostics, len(a.Diagnostics))
}
