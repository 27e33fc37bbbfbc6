package processors

import (
	"fmt"

	"github.com/berkes/beancount-degiro/src/accounts"
	"github.com/berkes/beancount-degiro/src/models"
)

// Transaction description priorities. The lowest priority number seen in a
// group decides the transaction's payee and narration; trade and dividend
// rows outrank fee-like rows.
const (
	prioTrade = 1
	prioAux   = 2
	prioLast  = 99
)

// PostingBuilder maps one classified row to its ledger legs. The liquidity
// leg common to every row is handled by the assembler; Build produces only
// the classification-specific legs.
type PostingBuilder struct {
	resolver  *accounts.Resolver
	templates accounts.Templates
}

func NewPostingBuilder(resolver *accounts.Resolver, templates accounts.Templates) *PostingBuilder {
	return &PostingBuilder{resolver: resolver, templates: templates}
}

// Build returns the extra legs for a row plus the priority, payee and
// narration its classification contributes to the enclosing transaction.
func (b *PostingBuilder) Build(row *models.RawRow, class models.Classification) (int, string, string, []models.Posting) {
	amount := models.NewAmount(*row.Change, row.ChangeCurrency)
	vars := accounts.Vars{Currency: row.ChangeCurrency, ISIN: row.ISIN}

	switch class.Kind {
	case models.KindFee:
		return prioAux, "Degiro", fmt.Sprintf("Fee: %s", row.Description), []models.Posting{
			{Account: b.resolver.Resolve(b.templates.Fees, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindLiquidityFund:
		return prioAux, "Degiro", "Liquidity fund price change", []models.Posting{
			{Account: b.resolver.Resolve(b.templates.Interest, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindInterest:
		return prioAux, "Degiro", fmt.Sprintf("Interest: %s", row.Description), []models.Posting{
			{Account: b.resolver.Resolve(b.templates.Interest, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindDeposit:
		if b.templates.Deposit == "" {
			// Shall not happen: the assembler skips deposit rows entirely
			// when no deposit account is configured.
			return prioLast, "", "", nil
		}
		return prioAux, "You", "Deposit/Withdrawal", []models.Posting{
			{Account: b.resolver.Resolve(b.templates.Deposit, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindDividend:
		return prioTrade, row.ISIN, fmt.Sprintf("Dividend %s", row.ISIN), []models.Posting{
			{Account: b.resolver.Resolve(b.templates.DivIncome, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindDividendTax:
		return prioAux, row.ISIN, fmt.Sprintf("Dividend tax %s", row.ISIN), []models.Posting{
			{Account: b.resolver.Resolve(b.templates.Wht, vars), Amount: amountPtr(amount.Neg())},
		}
	case models.KindCurrencyExchange:
		// Both legs already exist as liquidity postings on the paired
		// rows; only contribute a readable description.
		return prioAux, "Degiro", "Currency exchange", nil
	case models.KindBuy:
		return b.buildBuy(row, class.Values)
	case models.KindSell:
		return b.buildSell(row, class.Values)
	default:
		return prioLast, "", "", nil
	}
}

func (b *PostingBuilder) buildBuy(row *models.RawRow, vals *models.ExtractedValues) (int, string, string, []models.Posting) {
	date := row.Date()
	cost := &models.CostSpec{
		PerUnit:  &vals.Price,
		Currency: vals.Currency,
		Date:     &date,
	}
	stock := models.NewAmount(vals.Quantity, row.ISIN)
	narration := fmt.Sprintf("BUY %s %s @ %s %s", stock.Number, row.ISIN, vals.Price, vals.Currency)
	return prioTrade, row.ISIN, narration, []models.Posting{
		{Account: b.securityAccount(row, vals), Amount: &stock, Cost: cost},
	}
}

func (b *PostingBuilder) buildSell(row *models.RawRow, vals *models.ExtractedValues) (int, string, string, []models.Posting) {
	stock := models.NewAmount(vals.Quantity.Neg(), row.ISIN)
	sellPrice := models.NewAmount(vals.Price, vals.Currency)
	narration := fmt.Sprintf("SELL %s %s @ %s %s", stock.Number, row.ISIN, vals.Price, vals.Currency)
	return prioTrade, row.ISIN, narration, []models.Posting{
		// Empty cost spec: match against any existing lot.
		{Account: b.securityAccount(row, vals), Amount: &stock, Cost: &models.CostSpec{}, Price: &sellPrice},
		// The P&L amount is inferred by the ledger's own balancing.
		{Account: b.resolver.Resolve(b.templates.PnL, accounts.Vars{Currency: row.ChangeCurrency, ISIN: row.ISIN})},
	}
}

// securityAccount picks the stocks account, or the splits account for the
// split-flagged trade variants so both halves of a split book to one place.
func (b *PostingBuilder) securityAccount(row *models.RawRow, vals *models.ExtractedValues) string {
	template := b.templates.Stocks
	if vals.Split && b.templates.Splits != "" {
		template = b.templates.Splits
	}
	return b.resolver.Resolve(template, accounts.Vars{Currency: row.ChangeCurrency, ISIN: row.ISIN})
}

func amountPtr(a models.Amount) *models.Amount { return &a }
