package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a quantity of some currency or instrument.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

func NewAmount(number decimal.Decimal, currency string) Amount {
	return Amount{Number: number, Currency: currency}
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// CostSpec is the cost basis attached to a lot-tracked securities posting.
// An all-nil spec is meaningful: it tells the ledger to match against any
// existing lot (the sell side).
type CostSpec struct {
	PerUnit  *decimal.Decimal
	Currency string
	Date     *time.Time
}

// Posting is one leg of a transaction.
type Posting struct {
	Account string
	Amount  *Amount // nil lets the ledger infer the amount (P&L legs)
	Cost    *CostSpec
	Price   *Amount // FX or sell-price annotation
}

// Transaction is one balanced double-entry record assembled from a
// contiguous run of rows sharing a grouping key.
type Transaction struct {
	Date      time.Time
	Payee     string
	Narration string
	Postings  []Posting
	Line      int               // line of the last constituent row
	Metadata  map[string]string // carries the grouping key under "uuid"
}

// BalanceAssertion is a checkpoint on the running balance of one liquidity
// currency stream, dated the day after the last observation.
type BalanceAssertion struct {
	Date    time.Time
	Account string
	Amount  Amount
	Line    int
}
