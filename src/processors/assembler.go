package processors

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/berkes/beancount-degiro/src/accounts"
	"github.com/berkes/beancount-degiro/src/models"
)

const (
	noDescription = "<no description>"
	noPayee       = "<no payee>"
)

// Assembler walks the correlated rows in original order and accumulates
// consecutive rows sharing a grouping key into one transaction. It also
// tracks the running balance per balance currency and emits one assertion
// per currency stream after the last transaction.
type Assembler struct {
	builder   *PostingBuilder
	resolver  *accounts.Resolver
	templates accounts.Templates
}

func NewAssembler(builder *PostingBuilder, resolver *accounts.Resolver, templates accounts.Templates) *Assembler {
	return &Assembler{builder: builder, resolver: resolver, templates: templates}
}

type balanceCheckpoint struct {
	amount decimal.Decimal
	date   time.Time
	line   int
}

// Assemble produces the transaction list and the balance assertions.
// classes must be parallel to rows.
func (a *Assembler) Assemble(rows []models.RawRow, classes []models.Classification, rep *Report) ([]models.Transaction, []models.BalanceAssertion) {
	var transactions []models.Transaction

	var open []models.Posting
	prio := prioLast
	payee := noPayee
	narration := noDescription
	var prev *models.RawRow

	checkpoints := map[string]*balanceCheckpoint{}
	var currencyOrder []string

	flush := func() {
		if len(open) == 0 {
			return
		}
		metadata := map[string]string{}
		if prev.GroupKey != "" {
			metadata["uuid"] = prev.GroupKey
		}
		transactions = append(transactions, models.Transaction{
			Date:      prev.Date(),
			Payee:     payee,
			Narration: narration,
			Postings:  open,
			Line:      prev.Line,
			Metadata:  metadata,
		})
		open = nil
		prio = prioLast
		payee = noPayee
		narration = noDescription
	}

	for i := range rows {
		row := &rows[i]
		class := classes[i]

		// Balance tracking is independent of grouping; last observation
		// per currency wins, and even skipped deposit rows contribute.
		if row.Balance != nil && row.BalanceCurrency != "" {
			cp, ok := checkpoints[row.BalanceCurrency]
			if !ok {
				cp = &balanceCheckpoint{}
				checkpoints[row.BalanceCurrency] = cp
				currencyOrder = append(currencyOrder, row.BalanceCurrency)
			}
			cp.amount = *row.Balance
			cp.date = row.Date()
			cp.line = row.Line
		}

		// A key change (or an absent key on either side) closes the open
		// transaction: rows are never regrouped across a run boundary.
		if prev != nil && (prev.GroupKey == "" || row.GroupKey != prev.GroupKey) {
			flush()
		}
		prev = row

		if class.Kind == models.KindDeposit && a.templates.Deposit == "" {
			continue
		}

		liquidity := models.Posting{
			Account: a.resolver.Resolve(a.templates.Liquidity, accounts.Vars{Currency: row.ChangeCurrency, ISIN: row.ISIN}),
			Amount:  amountPtr(models.NewAmount(*row.Change, row.ChangeCurrency)),
			Price:   row.FXPrice,
		}
		open = append(open, liquidity)

		if row.FXCorrection != nil {
			open = append(open, models.Posting{
				Account: a.resolver.Resolve(a.templates.RoundingError, accounts.Vars{Currency: row.ChangeCurrency, ISIN: row.ISIN}),
				Amount:  amountPtr(models.NewAmount(*row.FXCorrection, row.ChangeCurrency)),
			})
		}

		p, pay, desc, legs := a.builder.Build(row, class)
		open = append(open, legs...)
		if p < prio {
			prio = p
			payee = pay
			narration = desc
		}

		if class.Kind == models.KindUnclassified && row.GroupKey == "" {
			rep.Addf(models.DiagUnclassifiedRow, row.Line, "unexpected description: %q", row.Description)
		}
	}
	flush()

	var balances []models.BalanceAssertion
	for _, currency := range currencyOrder {
		cp := checkpoints[currency]
		balances = append(balances, models.BalanceAssertion{
			Date:    cp.date.AddDate(0, 0, 1),
			Account: a.resolver.Resolve(a.templates.Liquidity, accounts.Vars{Currency: currency}),
			Amount:  models.NewAmount(cp.amount, currency),
			Line:    cp.line,
		})
	}
	return transactions, balances
}
