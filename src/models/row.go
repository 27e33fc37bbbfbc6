package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one sanitized line of a DEGIRO account statement. Numeric and
// date fields that could not be parsed are nil; the sanitizer drops rows
// that stay incomplete.
type RawRow struct {
	Line            int        // line number in the source file (header is line 1)
	Timestamp       *time.Time // booking date and time; nil marks a continuation fragment
	ValueDate       string
	Product         string
	ISIN            string
	Description     string
	FX              *decimal.Decimal // exchange rate, set on foreign conversion legs only
	ChangeCurrency  string
	Change          *decimal.Decimal
	BalanceCurrency string
	Balance         *decimal.Decimal
	OrderID         string

	// Fields below are derived during correlation.

	// GroupKey binds the row to its logical transaction. Seeded from
	// OrderID, synthesized by the correlator when the statement omits one.
	GroupKey string

	// FXPrice is the price annotation attached to the base leg of an
	// accepted currency-conversion pair.
	FXPrice *Amount

	// FXCorrection is the rounding-error amount (in ChangeCurrency) to be
	// posted as an extra leg on the foreign leg of a conversion pair.
	FXCorrection *decimal.Decimal
}

// Date returns the booking timestamp truncated to a civil date.
func (r *RawRow) Date() time.Time {
	if r.Timestamp == nil {
		return time.Time{}
	}
	t := *r.Timestamp
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
