package render

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/berkes/beancount-degiro/src/models"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func amt(number, currency string) *models.Amount {
	a := models.NewAmount(d(number), currency)
	return &a
}

func TestRender(t *testing.T) {
	buyDate := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	sellDate := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	perUnit := d("150")

	transactions := []models.Transaction{
		{
			Date:      buyDate,
			Payee:     "US0378331005",
			Narration: "BUY 10 US0378331005 @ 150 USD",
			Metadata:  map[string]string{"uuid": "ord-1"},
			Postings: []models.Posting{
				{Account: "Assets:Degiro:USD", Amount: amt("-1500", "USD")},
				{
					Account: "Assets:Stocks:US0378331005",
					Amount:  amt("10", "US0378331005"),
					Cost:    &models.CostSpec{PerUnit: &perUnit, Currency: "USD", Date: &buyDate},
				},
			},
		},
		{
			Date:      sellDate,
			Payee:     "US0378331005",
			Narration: "SELL -10 US0378331005 @ 160 USD",
			Postings: []models.Posting{
				{Account: "Assets:Degiro:USD", Amount: amt("1600", "USD")},
				{
					Account: "Assets:Stocks:US0378331005",
					Amount:  amt("-10", "US0378331005"),
					Cost:    &models.CostSpec{},
					Price:   amt("160", "USD"),
				},
				{Account: "Income:PnL"},
			},
		},
	}
	balances := []models.BalanceAssertion{
		{
			Date:    time.Date(2023, 3, 11, 0, 0, 0, 0, time.UTC),
			Account: "Assets:Degiro:USD",
			Amount:  models.NewAmount(d("100"), "USD"),
		},
	}

	var sb strings.Builder
	require.NoError(t, NewRenderer().Render(&sb, transactions, balances))

	want := `2023-03-01 * "US0378331005" "BUY 10 US0378331005 @ 150 USD"
  uuid: "ord-1"
  Assets:Degiro:USD  -1500 USD
  Assets:Stocks:US0378331005  10 US0378331005 {150 USD, 2023-03-01}

2023-03-10 * "US0378331005" "SELL -10 US0378331005 @ 160 USD"
  Assets:Degiro:USD  1600 USD
  Assets:Stocks:US0378331005  -10 US0378331005 {} @ 160 USD
  Income:PnL

2023-03-11 balance Assets:Degiro:USD  100 USD
`
	assert.Equal(t, want, sb.String())
}

func TestRenderEscapesQuotes(t *testing.T) {
	transactions := []models.Transaction{
		{
			Date:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
			Payee:     `say "hi"`,
			Narration: `back\slash`,
			Postings: []models.Posting{
				{Account: "Assets:Degiro:EUR", Amount: amt("1", "EUR")},
			},
		},
	}

	var sb strings.Builder
	require.NoError(t, NewRenderer().Render(&sb, transactions, nil))
	assert.Contains(t, sb.String(), `"say \"hi\"" "back\\slash"`)
}

func TestRenderPriceAnnotation(t *testing.T) {
	transactions := []models.Transaction{
		{
			Date:      time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
			Payee:     "Degiro",
			Narration: "Currency exchange",
			Metadata:  map[string]string{"uuid": "k"},
			Postings: []models.Posting{
				{Account: "Assets:Degiro:EUR", Amount: amt("-100", "EUR"), Price: amt("1.1", "USD")},
				{Account: "Assets:Degiro:USD", Amount: amt("109.8", "USD")},
				{Account: "Expenses:RoundingError", Amount: amt("0.2", "USD")},
			},
		},
	}

	var sb strings.Builder
	require.NoError(t, NewRenderer().Render(&sb, transactions, nil))
	assert.Contains(t, sb.String(), "  Assets:Degiro:EUR  -100 EUR @ 1.1 USD\n")
}
