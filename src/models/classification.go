package models

import "github.com/shopspring/decimal"

// Kind labels the transaction type derived from a row's description text.
type Kind string

const (
	KindLiquidityFund    Kind = "LIQUIDITY_FUND"
	KindFee              Kind = "FEE"
	KindDeposit          Kind = "DEPOSIT"
	KindBuy              Kind = "BUY"
	KindSell             Kind = "SELL"
	KindInterest         Kind = "INTEREST"
	KindDividend         Kind = "DIVIDEND"
	KindDividendTax      Kind = "DIVIDEND_TAX"
	KindCurrencyExchange Kind = "CURRENCY_EXCHANGE"
	KindUnclassified     Kind = "UNCLASSIFIED"
)

// ExtractedValues carries the typed values a trade description encodes.
// Only buy/sell rules populate these.
type ExtractedValues struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Currency string
	Split    bool // set for the stock-split variants of buy/sell
}

// Classification is the result of matching a row against the ordered rule
// table: the kind plus whatever values the winning rule extracted.
type Classification struct {
	Kind   Kind
	Values *ExtractedValues
}
