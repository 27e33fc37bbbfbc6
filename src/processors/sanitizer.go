package processors

import (
	"github.com/berkes/beancount-degiro/src/logger"
	"github.com/berkes/beancount-degiro/src/models"
	"github.com/berkes/beancount-degiro/src/rules"
)

// Sanitizer repairs rows the export artificially wrapped and drops rows
// that carry no booking information.
type Sanitizer struct {
	rules rules.RuleSet
}

func NewSanitizer(rs rules.RuleSet) *Sanitizer {
	return &Sanitizer{rules: rs}
}

// Sanitize merges continuation fragments into the preceding retained row,
// then filters no-op rows. Invariant afterwards: every row has a timestamp
// and a non-zero change amount.
func (s *Sanitizer) Sanitize(rows []models.RawRow, rep *Report) []models.RawRow {
	merged := s.mergeContinuations(rows)

	out := merged[:0]
	for _, row := range merged {
		if row.Change == nil {
			rep.Addf(models.DiagUnparseableField, row.Line, "row has no parseable change amount: %q", row.Description)
			continue
		}
		if row.Change.IsZero() {
			continue
		}
		if s.rules.MatchCashSweep(row.Description) {
			// Transfers between the external cash account and the broker;
			// they never touch the tracked balance.
			if logger.L != nil {
				logger.L.Debug("Dropping cash sweep transfer", "line", row.Line)
			}
			continue
		}
		out = append(out, row)
	}
	return out
}

// mergeContinuations folds rows without a timestamp into the immediately
// preceding retained row: text fields are space-joined, the order id is
// concatenated. A fragment with no preceding row is dropped outright.
func (s *Sanitizer) mergeContinuations(rows []models.RawRow) []models.RawRow {
	var out []models.RawRow
	for _, row := range rows {
		if row.Timestamp != nil {
			out = append(out, row)
			continue
		}
		if len(out) == 0 {
			if logger.L != nil {
				logger.L.Debug("Dropping leading continuation fragment", "line", row.Line)
			}
			continue
		}
		prev := &out[len(out)-1]
		if row.Product != "" {
			prev.Product += " " + row.Product
		}
		if row.Description != "" {
			prev.Description += " " + row.Description
		}
		if row.OrderID != "" {
			prev.OrderID += row.OrderID
		}
	}
	return out
}
